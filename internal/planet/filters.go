package planet

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// SearchRequest represents a Data API quick-search request body.
type SearchRequest struct {
	Name      string   `json:"name,omitempty"`
	ItemTypes []string `json:"item_types"`
	Filter    any      `json:"filter"`
}

// AndFilter combines filters so that all of them must match.
type AndFilter struct {
	Type   string `json:"type"`
	Config []any  `json:"config"`
}

// And builds an AndFilter over the given filters.
func And(filters ...any) AndFilter {
	return AndFilter{Type: "AndFilter", Config: filters}
}

// OrFilter combines filters so that at least one must match.
type OrFilter struct {
	Type   string `json:"type"`
	Config []any  `json:"config"`
}

// Or builds an OrFilter over the given filters.
func Or(filters ...any) OrFilter {
	return OrFilter{Type: "OrFilter", Config: filters}
}

// NotFilter inverts a single filter.
type NotFilter struct {
	Type   string `json:"type"`
	Config []any  `json:"config"`
}

// Not builds a NotFilter around the given filter.
func Not(filter any) NotFilter {
	return NotFilter{Type: "NotFilter", Config: []any{filter}}
}

// DateRange bounds a datetime field. Zero bounds are omitted.
type DateRange struct {
	GTE *time.Time `json:"gte,omitempty"`
	LTE *time.Time `json:"lte,omitempty"`
}

// DateRangeFilter matches items whose datetime field falls in a range.
type DateRangeFilter struct {
	Type      string    `json:"type"`
	FieldName string    `json:"field_name"`
	Config    DateRange `json:"config"`
}

// AcquiredBetween matches items acquired in [start, end].
func AcquiredBetween(start, end time.Time) DateRangeFilter {
	return DateRangeFilter{
		Type:      "DateRangeFilter",
		FieldName: "acquired",
		Config:    DateRange{GTE: &start, LTE: &end},
	}
}

// GeometryFilter matches items whose footprint intersects a geometry.
type GeometryFilter struct {
	Type      string            `json:"type"`
	FieldName string            `json:"field_name"`
	Config    *geojson.Geometry `json:"config"`
}

// Intersects matches items intersecting the given GeoJSON geometry.
func Intersects(geom *geojson.Geometry) GeometryFilter {
	return GeometryFilter{
		Type:      "GeometryFilter",
		FieldName: "geometry",
		Config:    geom,
	}
}

// RangeBounds bounds a numeric field. Nil bounds are omitted.
type RangeBounds struct {
	GTE *float64 `json:"gte,omitempty"`
	GT  *float64 `json:"gt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
}

// RangeFilter matches items whose numeric field falls in a range.
type RangeFilter struct {
	Type      string      `json:"type"`
	FieldName string      `json:"field_name"`
	Config    RangeBounds `json:"config"`
}

// CloudCoverBelow matches items with cloud_cover <= max (a fraction in [0, 1]).
func CloudCoverBelow(max float64) RangeFilter {
	return RangeFilter{
		Type:      "RangeFilter",
		FieldName: "cloud_cover",
		Config:    RangeBounds{LTE: &max},
	}
}

// StringInFilter matches items whose string field takes one of the given values.
type StringInFilter struct {
	Type      string   `json:"type"`
	FieldName string   `json:"field_name"`
	Config    []string `json:"config"`
}

// StringIn builds a StringInFilter for the given field and values.
func StringIn(field string, values ...string) StringInFilter {
	return StringInFilter{
		Type:      "StringInFilter",
		FieldName: field,
		Config:    values,
	}
}

// PermissionFilter matches items the caller is allowed to download.
type PermissionFilter struct {
	Type   string   `json:"type"`
	Config []string `json:"config"`
}

// Downloadable matches items whose assets may be downloaded.
func Downloadable() PermissionFilter {
	return PermissionFilter{
		Type:   "PermissionFilter",
		Config: []string{"assets:download"},
	}
}
