package planet

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// SearchResponse represents a Data API search response page.
// Results are a GeoJSON FeatureCollection with paging links.
type SearchResponse struct {
	Type     string      `json:"type"` // "FeatureCollection"
	Features []Feature   `json:"features"`
	Links    SearchLinks `json:"_links"`
}

// SearchLinks contains paging links for a search response.
type SearchLinks struct {
	Self  string `json:"_self,omitempty"`
	First string `json:"_first,omitempty"`
	Next  string `json:"_next,omitempty"`
}

// Feature represents a single catalog item returned by search.
type Feature struct {
	Type        string            `json:"type"` // "Feature"
	ID          string            `json:"id"`
	Geometry    *geojson.Geometry `json:"geometry"`
	Properties  Properties        `json:"properties"`
	Links       FeatureLinks      `json:"_links"`
	Permissions []string          `json:"_permissions,omitempty"`
}

// FeatureLinks contains navigation links for an item.
type FeatureLinks struct {
	Self      string `json:"_self,omitempty"`
	Assets    string `json:"assets,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Properties contains item metadata.
type Properties struct {
	// Temporal information
	Acquired  time.Time `json:"acquired"`
	Published time.Time `json:"published,omitempty"`
	Updated   time.Time `json:"updated,omitempty"`

	// Classification
	ItemType        string `json:"item_type,omitempty"`
	SatelliteID     string `json:"satellite_id,omitempty"`
	Provider        string `json:"provider,omitempty"`
	Instrument      string `json:"instrument,omitempty"`
	QualityCategory string `json:"quality_category,omitempty"`

	// Quality metrics (fractions in [0, 1] except the percent fields)
	CloudCover     float64 `json:"cloud_cover"`
	ClearPercent   int     `json:"clear_percent,omitempty"`
	VisiblePercent int     `json:"visible_percent,omitempty"`
	CloudPercent   int     `json:"cloud_percent,omitempty"`

	// Imaging geometry
	GSD             float64 `json:"gsd,omitempty"`
	PixelResolution float64 `json:"pixel_resolution,omitempty"`
	SunAzimuth      float64 `json:"sun_azimuth,omitempty"`
	SunElevation    float64 `json:"sun_elevation,omitempty"`
	ViewAngle       float64 `json:"view_angle,omitempty"`
}

// AcquiredDate returns the date portion (YYYY-MM-DD, UTC) of the item's
// acquisition timestamp.
func (f *Feature) AcquiredDate() string {
	return f.Properties.Acquired.UTC().Format("2006-01-02")
}

// Asset represents one downloadable product of an item.
type Asset struct {
	Type   string `json:"type,omitempty"`
	Status string `json:"status"` // "inactive", "activating" or "active"

	// Location is the signed download URL, present once the asset is active.
	Location string `json:"location,omitempty"`

	Links       AssetLinks `json:"_links"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Permissions []string   `json:"_permissions,omitempty"`
}

// AssetLinks contains the activation and self links for an asset.
type AssetLinks struct {
	Self     string `json:"_self,omitempty"`
	Activate string `json:"activate,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Asset status values.
const (
	AssetInactive   = "inactive"
	AssetActivating = "activating"
	AssetActive     = "active"
)

// Active reports whether the asset is ready for download.
func (a *Asset) Active() bool {
	return a.Status == AssetActive
}
