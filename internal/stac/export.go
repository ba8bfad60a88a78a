// Package stac converts catalog search results into STAC Items, wrapping
// planetlabs/go-stac for the core types.
package stac

import (
	"fmt"
	"strings"
	"time"

	gostac "github.com/planetlabs/go-stac"

	"github.com/robert-malhotra/planet-orders/internal/planet"
)

// Version is the STAC spec version stamped on exported items.
const Version = "1.0.0"

// ItemCollection represents a STAC ItemCollection (GeoJSON FeatureCollection).
type ItemCollection struct {
	Type           string         `json:"type"` // "FeatureCollection"
	Features       []*gostac.Item `json:"features"`
	NumberReturned int            `json:"numberReturned"`
}

// FromFeatures converts search results to a STAC ItemCollection.
func FromFeatures(features []planet.Feature) (*ItemCollection, error) {
	items := make([]*gostac.Item, 0, len(features))
	for i := range features {
		item, err := FromFeature(&features[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert item %s: %w", features[i].ID, err)
		}
		items = append(items, item)
	}

	return &ItemCollection{
		Type:           "FeatureCollection",
		Features:       items,
		NumberReturned: len(items),
	}, nil
}

// FromFeature converts a single catalog item to a STAC Item.
func FromFeature(f *planet.Feature) (*gostac.Item, error) {
	if f == nil {
		return nil, fmt.Errorf("feature is nil")
	}
	if f.ID == "" {
		return nil, fmt.Errorf("feature has no id")
	}

	props := f.Properties

	item := &gostac.Item{
		Version:    Version,
		Id:         f.ID,
		Collection: props.ItemType,
		Properties: make(map[string]any),
		Assets:     make(map[string]*gostac.Asset),
		Links:      make([]*gostac.Link, 0),
	}

	// Geometry and bbox
	if f.Geometry != nil {
		item.Geometry = f.Geometry

		b := f.Geometry.Geometry().Bound()
		item.Bbox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}

	// Temporal properties
	if !props.Acquired.IsZero() {
		item.Properties["datetime"] = props.Acquired.UTC().Format(time.RFC3339)
	}
	if !props.Published.IsZero() {
		item.Properties["published"] = props.Published.UTC().Format(time.RFC3339)
	}
	if !props.Updated.IsZero() {
		item.Properties["updated"] = props.Updated.UTC().Format(time.RFC3339)
	}

	// Platform properties
	if props.SatelliteID != "" {
		item.Properties["platform"] = strings.ToLower(props.SatelliteID)
	}
	if props.Instrument != "" {
		item.Properties["instruments"] = []string{strings.ToLower(props.Instrument)}
	}
	if constellation := getConstellation(props.ItemType); constellation != "" {
		item.Properties["constellation"] = constellation
	}
	if props.GSD > 0 {
		item.Properties["gsd"] = props.GSD
	}

	// EO extension (https://stac-extensions.github.io/eo/v1.0.0/schema.json)
	// cloud_cover arrives as a fraction and STAC wants a percentage.
	item.Properties["eo:cloud_cover"] = props.CloudCover * 100

	// View extension
	if props.SunAzimuth != 0 {
		item.Properties["view:sun_azimuth"] = props.SunAzimuth
	}
	if props.SunElevation != 0 {
		item.Properties["view:sun_elevation"] = props.SunElevation
	}
	if props.ViewAngle != 0 {
		item.Properties["view:off_nadir"] = props.ViewAngle
	}

	if props.QualityCategory != "" {
		item.Properties["quality_category"] = props.QualityCategory
	}

	// Assets
	if f.Links.Thumbnail != "" {
		item.Assets["thumbnail"] = &gostac.Asset{
			Href:  f.Links.Thumbnail,
			Title: "Thumbnail Image",
			Type:  "image/png",
			Roles: []string{"thumbnail"},
		}
	}

	// Links
	if f.Links.Self != "" {
		item.Links = append(item.Links, &gostac.Link{
			Rel:  "via",
			Href: f.Links.Self,
			Type: "application/json",
		})
	}
	if f.Links.Assets != "" {
		item.Links = append(item.Links, &gostac.Link{
			Rel:  "assets",
			Href: f.Links.Assets,
			Type: "application/json",
		})
	}

	return item, nil
}

// getConstellation maps an item type to its constellation name.
func getConstellation(itemType string) string {
	switch {
	case strings.HasPrefix(itemType, "PS"):
		return "planetscope"
	case strings.HasPrefix(itemType, "SkySat"):
		return "skysat"
	case strings.HasPrefix(itemType, "RE"):
		return "rapideye"
	case strings.HasPrefix(itemType, "Landsat"):
		return "landsat"
	case strings.HasPrefix(itemType, "Sentinel"):
		return "sentinel"
	default:
		return ""
	}
}
