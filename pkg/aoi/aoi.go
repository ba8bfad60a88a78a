// Package aoi loads area-of-interest geometries from GeoJSON files.
package aoi

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Load reads a GeoJSON file and returns its geometry. The file may contain
// a bare geometry, a Feature, or a FeatureCollection; for a collection the
// first feature's geometry is used.
func Load(path string) (*geojson.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read AOI file: %w", err)
	}

	geom, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid AOI file %s: %w", path, err)
	}

	return geom, nil
}

// Parse extracts a geometry from raw GeoJSON bytes.
func Parse(data []byte) (*geojson.Geometry, error) {
	// Try a FeatureCollection first, then a Feature, then a bare geometry.
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		if len(fc.Features) == 0 {
			return nil, fmt.Errorf("feature collection is empty")
		}
		return geojson.NewGeometry(fc.Features[0].Geometry), nil
	}

	if f, err := geojson.UnmarshalFeature(data); err == nil {
		return geojson.NewGeometry(f.Geometry), nil
	}

	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("not a GeoJSON geometry, feature or feature collection: %w", err)
	}
	return geom, nil
}

// BBox returns the [west, south, east, north] bounding box of a geometry.
func BBox(geom *geojson.Geometry) [4]float64 {
	b := geom.Geometry().Bound()
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Center returns the [lon, lat] center of a geometry's bounding box.
func Center(geom *geojson.Geometry) orb.Point {
	return geom.Geometry().Bound().Center()
}
