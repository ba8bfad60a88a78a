package tiles

import (
	"math"
	"testing"
)

func TestAt(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		zoom     int
		want     Tile
	}{
		{"origin at zoom 0", 0, 0, 0, Tile{0, 0, 0}},
		{"origin at zoom 1", 0.1, -0.1, 1, Tile{1, 1, 1}},
		{"san francisco at zoom 12", -122.4194, 37.7749, 12, Tile{12, 655, 1583}},
		{"date line clamps to last column", 180, 0, 2, Tile{2, 3, 2}},
		{"north clamp", 0, 89.9, 1, Tile{1, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := At(tt.lon, tt.lat, tt.zoom)
			if got != tt.want {
				t.Errorf("At(%v, %v, %d) = %+v, want %+v", tt.lon, tt.lat, tt.zoom, got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("At must always return a valid tile, got %+v", got)
			}
		})
	}
}

func TestTile_Path(t *testing.T) {
	tile := Tile{Z: 12, X: 655, Y: 1583}
	if got := tile.Path(); got != "12/655/1583.png" {
		t.Errorf("Path() = %s, want 12/655/1583.png", got)
	}
}

func TestTile_Valid(t *testing.T) {
	tests := []struct {
		tile Tile
		want bool
	}{
		{Tile{0, 0, 0}, true},
		{Tile{2, 3, 3}, true},
		{Tile{2, 4, 0}, false},
		{Tile{2, 0, -1}, false},
		{Tile{-1, 0, 0}, false},
		{Tile{MaxZoom + 1, 0, 0}, false},
	}

	for _, tt := range tests {
		if got := tt.tile.Valid(); got != tt.want {
			t.Errorf("Valid() for %+v = %v, want %v", tt.tile, got, tt.want)
		}
	}
}

func TestCovering(t *testing.T) {
	// A box straddling the origin at zoom 1 touches all four tiles.
	cover := Covering([4]float64{-10, -10, 10, 10}, 1)
	if len(cover) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(cover))
	}

	// Rows north to south, columns west to east.
	want := []Tile{{1, 0, 0}, {1, 1, 0}, {1, 0, 1}, {1, 1, 1}}
	for i, tile := range cover {
		if tile != want[i] {
			t.Errorf("cover[%d] = %+v, want %+v", i, tile, want[i])
		}
	}
}

func TestCovering_SinglePoint(t *testing.T) {
	cover := Covering([4]float64{-122.42, 37.77, -122.42, 37.77}, 12)
	if len(cover) != 1 {
		t.Fatalf("expected 1 tile for a point bbox, got %d", len(cover))
	}
	if cover[0] != (Tile{12, 655, 1583}) {
		t.Errorf("unexpected tile %+v", cover[0])
	}
}

func TestTile_Bound_RoundTrip(t *testing.T) {
	tile := Tile{Z: 12, X: 655, Y: 1583}
	b := tile.Bound()

	if b[0] >= b[2] || b[1] >= b[3] {
		t.Fatalf("degenerate bound %v", b)
	}

	// The tile's own center must map back to the same tile.
	lon := (b[0] + b[2]) / 2
	lat := (b[1] + b[3]) / 2
	if got := At(lon, lat, tile.Z); got != tile {
		t.Errorf("center of %+v maps to %+v", tile, got)
	}
}

func TestTile_Bound_Zoom0(t *testing.T) {
	b := Tile{0, 0, 0}.Bound()

	if b[0] != -180 || b[2] != 180 {
		t.Errorf("zoom 0 tile must span the full longitude range, got %v", b)
	}
	// Web-mercator latitude limit.
	if math.Abs(b[3]-85.0511) > 0.001 || math.Abs(b[1]+85.0511) > 0.001 {
		t.Errorf("zoom 0 tile must span the mercator latitude limits, got %v", b)
	}
}
