package orders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/planet-orders/pkg/aoi"
)

// Template is an order request described in a YAML file, for
// `order create -f`. Tool AOIs are referenced by file path and resolved
// when the template is turned into a request.
type Template struct {
	Name     string            `yaml:"name"`
	Products []TemplateProduct `yaml:"products"`
	Tools    TemplateTools     `yaml:"tools"`
	Delivery *TemplateDelivery `yaml:"delivery"`
}

// TemplateProduct mirrors Product in YAML form.
type TemplateProduct struct {
	ItemIDs       []string `yaml:"item_ids"`
	ItemType      string   `yaml:"item_type"`
	ProductBundle string   `yaml:"product_bundle"`
}

// TemplateTools selects processing tools. ClipAOI is a path to a GeoJSON file.
type TemplateTools struct {
	ClipAOI   string             `yaml:"clip_aoi"`
	Composite bool               `yaml:"composite"`
	NDVI      bool               `yaml:"ndvi"`
	Reproject *TemplateReproject `yaml:"reproject"`
}

// TemplateReproject mirrors ReprojectTool in YAML form.
type TemplateReproject struct {
	Projection string  `yaml:"projection"`
	Resolution float64 `yaml:"resolution"`
	Kernel     string  `yaml:"kernel"`
}

// TemplateDelivery mirrors Delivery in YAML form.
type TemplateDelivery struct {
	SingleArchive   bool   `yaml:"single_archive"`
	ArchiveType     string `yaml:"archive_type"`
	ArchiveFilename string `yaml:"archive_filename"`
}

// LoadTemplate reads and parses an order template from a YAML file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order template: %w", err)
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse order template %s: %w", path, err)
	}

	return &tmpl, nil
}

// Request resolves the template into a submittable order request.
// Relative AOI paths are resolved against the current working directory.
func (t *Template) Request() (Request, error) {
	req := Request{Name: t.Name}

	for _, p := range t.Products {
		req.Products = append(req.Products, Product{
			ItemIDs:       p.ItemIDs,
			ItemType:      p.ItemType,
			ProductBundle: p.ProductBundle,
		})
	}

	if t.Tools.ClipAOI != "" {
		geom, err := aoi.Load(t.Tools.ClipAOI)
		if err != nil {
			return Request{}, fmt.Errorf("failed to load clip AOI: %w", err)
		}
		req.Tools = append(req.Tools, Clip(geom))
	}

	if t.Tools.Composite {
		req.Tools = append(req.Tools, Composite())
	}

	if t.Tools.NDVI {
		req.Tools = append(req.Tools, NDVI())
	}

	if t.Tools.Reproject != nil {
		req.Tools = append(req.Tools, Tool{Reproject: &ReprojectTool{
			Projection: t.Tools.Reproject.Projection,
			Resolution: t.Tools.Reproject.Resolution,
			Kernel:     t.Tools.Reproject.Kernel,
		}})
	}

	if t.Delivery != nil {
		req.Delivery = &Delivery{
			SingleArchive:   t.Delivery.SingleArchive,
			ArchiveType:     t.Delivery.ArchiveType,
			ArchiveFilename: t.Delivery.ArchiveFilename,
		}
	} else {
		req.Delivery = ZipDelivery()
	}

	if err := validateRequest(&req); err != nil {
		return Request{}, err
	}

	return req, nil
}
