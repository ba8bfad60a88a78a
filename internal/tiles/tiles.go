// Package tiles provides XYZ map tile addressing and a client for
// fetching tiles from the imagery tile server.
package tiles

import (
	"fmt"
	"math"
)

// MaxZoom is the deepest zoom level the tile server provides.
const MaxZoom = 15

// Tile addresses one fixed-size map image in the XYZ scheme.
type Tile struct {
	Z int
	X int
	Y int
}

// Path returns the tile's "z/x/y.png" path segment.
func (t Tile) Path() string {
	return fmt.Sprintf("%d/%d/%d.png", t.Z, t.X, t.Y)
}

// Valid reports whether the tile coordinates exist at the tile's zoom level.
func (t Tile) Valid() bool {
	if t.Z < 0 || t.Z > MaxZoom {
		return false
	}
	n := 1 << t.Z
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// At returns the tile containing the given lon/lat at a zoom level, using
// the spherical-mercator tiling scheme.
func At(lon, lat float64, zoom int) Tile {
	n := float64(int(1) << zoom)

	x := int((lon + 180.0) / 360.0 * n)

	latRad := lat * math.Pi / 180.0
	y := int((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n)

	// Clamp edge coordinates (lon=180, lat at the projection limit).
	max := int(n) - 1
	if x > max {
		x = max
	}
	if x < 0 {
		x = 0
	}
	if y > max {
		y = max
	}
	if y < 0 {
		y = 0
	}

	return Tile{Z: zoom, X: x, Y: y}
}

// Covering returns the tiles covering a [west, south, east, north]
// bounding box at a zoom level, rows north to south.
func Covering(bbox [4]float64, zoom int) []Tile {
	nw := At(bbox[0], bbox[3], zoom)
	se := At(bbox[2], bbox[1], zoom)

	var out []Tile
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			out = append(out, Tile{Z: zoom, X: x, Y: y})
		}
	}
	return out
}

// Bound returns the [west, south, east, north] geographic bounds of a tile.
func (t Tile) Bound() [4]float64 {
	n := float64(int(1) << t.Z)

	west := float64(t.X)/n*360.0 - 180.0
	east := float64(t.X+1)/n*360.0 - 180.0

	north := tileLat(float64(t.Y), n)
	south := tileLat(float64(t.Y+1), n)

	return [4]float64{west, south, east, north}
}

func tileLat(y, n float64) float64 {
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/n)))
	return latRad * 180.0 / math.Pi
}
