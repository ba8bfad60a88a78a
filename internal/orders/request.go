package orders

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb/geojson"
)

// ZipDelivery returns a delivery spec packing all results into one zip archive.
func ZipDelivery() *Delivery {
	return &Delivery{
		SingleArchive: true,
		ArchiveType:   "zip",
	}
}

// Clip returns a tool that crops imagery to the given area of interest.
func Clip(aoi *geojson.Geometry) Tool {
	return Tool{Clip: &ClipTool{AOI: aoi}}
}

// Composite returns a tool that merges a product's items into one image.
func Composite() Tool {
	return Tool{Composite: &CompositeTool{}}
}

// NDVI returns a bandmath tool computing a normalized difference vegetation
// index from red (b3) and near-infrared (b4) bands. The arithmetic runs
// server-side; this only assembles the request.
func NDVI() Tool {
	return Tool{BandMath: &BandMathTool{
		B1:        "(b4 - b3) / (b4 + b3)",
		PixelType: "32R",
	}}
}

// DailyComposites builds one composite order request per date group, in
// ascending date order. groups maps YYYY-MM-DD to item IDs, as produced by
// planet.GroupByDate. Each order is named "<prefix>_<date>", clipped to aoi
// when one is given, composited, and delivered as a single zip archive.
func DailyComposites(prefix, itemType, bundle string, groups map[string][]string, aoi *geojson.Geometry) []Request {
	// Lexicographic order is chronological for YYYY-MM-DD keys.
	dates := make([]string, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	requests := make([]Request, 0, len(dates))
	for _, date := range dates {
		var tools []Tool
		if aoi != nil {
			tools = append(tools, Clip(aoi))
		}
		tools = append(tools, Composite())

		requests = append(requests, Request{
			Name: fmt.Sprintf("%s_%s", prefix, date),
			Products: []Product{{
				ItemIDs:       groups[date],
				ItemType:      itemType,
				ProductBundle: bundle,
			}},
			Tools:    tools,
			Delivery: ZipDelivery(),
		})
	}

	return requests
}
