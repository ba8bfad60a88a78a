package orders

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// Order states reported by the service. Transitions are entirely
// server-driven and observed only by polling.
const (
	StateQueued    = "queued"
	StateRunning   = "running"
	StateSuccess   = "success"
	StatePartial   = "partial"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// Request represents an order submission body: which items to process,
// which tools to run on them, and how results are delivered.
type Request struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
	Tools    []Tool    `json:"tools,omitempty"`
	Delivery *Delivery `json:"delivery,omitempty"`
}

// Product selects catalog items and the product bundle to order for them.
type Product struct {
	ItemIDs       []string `json:"item_ids"`
	ItemType      string   `json:"item_type"`
	ProductBundle string   `json:"product_bundle"`
}

// Tool is one step of the server-side processing pipeline. Exactly one
// field should be set; the field name selects the operation.
type Tool struct {
	Clip      *ClipTool      `json:"clip,omitempty"`
	Composite *CompositeTool `json:"composite,omitempty"`
	BandMath  *BandMathTool  `json:"bandmath,omitempty"`
	Reproject *ReprojectTool `json:"reproject,omitempty"`
}

// ClipTool crops imagery to an area of interest.
type ClipTool struct {
	AOI *geojson.Geometry `json:"aoi"`
}

// CompositeTool merges the items of a product into a single image.
type CompositeTool struct{}

// BandMathTool computes output bands from per-pixel expressions.
type BandMathTool struct {
	B1        string `json:"b1,omitempty"`
	B2        string `json:"b2,omitempty"`
	B3        string `json:"b3,omitempty"`
	B4        string `json:"b4,omitempty"`
	B5        string `json:"b5,omitempty"`
	PixelType string `json:"pixel_type,omitempty"`
}

// ReprojectTool warps imagery into another projection.
type ReprojectTool struct {
	Projection string  `json:"projection"`
	Resolution float64 `json:"resolution,omitempty"`
	Kernel     string  `json:"kernel,omitempty"`
}

// Delivery configures how order results are packaged.
type Delivery struct {
	SingleArchive   bool   `json:"single_archive,omitempty"`
	ArchiveType     string `json:"archive_type,omitempty"`
	ArchiveFilename string `json:"archive_filename,omitempty"`
}

// Order represents a server-side processing job and its observed state.
type Order struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	State        string     `json:"state"`
	CreatedOn    *time.Time `json:"created_on,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Products     []Product  `json:"products,omitempty"`
	ErrorHints   []string   `json:"error_hints,omitempty"`
	Links        OrderLinks `json:"_links"`
}

// OrderLinks carries the self link and, once the order completes,
// the delivered result files.
type OrderLinks struct {
	Self    string   `json:"_self,omitempty"`
	Results []Result `json:"results,omitempty"`
}

// Result is one delivered file of a completed order.
type Result struct {
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	Delivery  string     `json:"delivery,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	switch o.State {
	case StateSuccess, StatePartial, StateFailed, StateCancelled:
		return true
	}
	return false
}

// listResponse is a page of the order listing endpoint.
type listResponse struct {
	Orders []Order   `json:"orders"`
	Links  pageLinks `json:"_links"`
}

type pageLinks struct {
	Self string `json:"_self,omitempty"`
	Next string `json:"next,omitempty"`
}
