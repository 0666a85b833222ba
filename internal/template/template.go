// Package template provides built-in job templates whose material lists are
// derived from per-job parameters via quantity formulas.
package template

import (
	"fmt"
	"math"

	"github.com/Krank3n/QuoteMate-sub000/internal/formula"
	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
)

// MaterialSpec is one template line: the quantity is a formula over the
// job's parameter map, evaluated when the template is applied.
type MaterialSpec struct {
	Name            string     `json:"name"`
	Unit            quote.Unit `json:"unit"`
	QuantityFormula string     `json:"quantityFormula"`
	SearchTerm      string     `json:"searchTerm,omitempty"`
}

// Template is a reusable job outline.
type Template struct {
	Tag          string         `json:"tag"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Params       []string       `json:"params"`
	HoursFormula string         `json:"hoursFormula"`
	Materials    []MaterialSpec `json:"materials"`
}

var builtins = []Template{
	{
		Tag:          "deck",
		Name:         "Timber deck",
		Description:  "Ground-level treated pine deck",
		Params:       []string{"lengthM", "widthM"},
		HoursFormula: "lengthM * widthM * 1.5",
		Materials: []MaterialSpec{
			{Name: "Decking board 90x22 treated pine", Unit: quote.UnitMetre, QuantityFormula: "lengthM * widthM * 11.5", SearchTerm: "treated pine decking 90x22"},
			{Name: "Joist 90x45 H3 treated pine", Unit: quote.UnitMetre, QuantityFormula: "widthM * (lengthM / 0.45 + 1)", SearchTerm: "treated pine 90x45 H3"},
			{Name: "Decking screws 10g box", Unit: quote.UnitBox, QuantityFormula: "lengthM * widthM / 10", SearchTerm: "stainless decking screws 10g"},
			{Name: "Joist hanger 90mm", Unit: quote.UnitEach, QuantityFormula: "(lengthM / 0.45 + 1) * 2", SearchTerm: "joist hanger 90mm"},
		},
	},
	{
		Tag:          "fence",
		Name:         "Paling fence",
		Description:  "1.8m hardwood paling fence",
		Params:       []string{"lengthM"},
		HoursFormula: "lengthM * 0.75",
		Materials: []MaterialSpec{
			{Name: "Fence post 100x100 H4", Unit: quote.UnitEach, QuantityFormula: "lengthM / 2.4 + 1", SearchTerm: "treated pine post 100x100 H4 2.4m"},
			{Name: "Fence rail 75x50", Unit: quote.UnitMetre, QuantityFormula: "lengthM * 3", SearchTerm: "treated pine rail 75x50"},
			{Name: "Hardwood paling 100mm", Unit: quote.UnitEach, QuantityFormula: "lengthM * 11", SearchTerm: "hardwood paling 1.8m 100mm"},
			{Name: "Rapid set concrete 20kg", Unit: quote.UnitEach, QuantityFormula: "(lengthM / 2.4 + 1) * 2", SearchTerm: "rapid set concrete 20kg"},
		},
	},
	{
		Tag:          "paint_room",
		Name:         "Paint a room",
		Description:  "Two coats, walls and ceiling",
		Params:       []string{"wallAreaM2"},
		HoursFormula: "wallAreaM2 / 8",
		Materials: []MaterialSpec{
			{Name: "Interior paint low sheen", Unit: quote.UnitLitre, QuantityFormula: "wallAreaM2 * 2 / 14", SearchTerm: "interior wall paint low sheen"},
			{Name: "Painter's tape roll", Unit: quote.UnitEach, QuantityFormula: "wallAreaM2 / 25 + 1", SearchTerm: "painters masking tape 36mm"},
			{Name: "Drop sheet canvas", Unit: quote.UnitEach, QuantityFormula: "wallAreaM2 / 30 + 1", SearchTerm: "canvas drop sheet"},
		},
	},
}

// All lists the built-in templates.
func All() []Template {
	out := make([]Template, len(builtins))
	copy(out, builtins)
	return out
}

// Find returns the template with the given tag.
func Find(tag string) (Template, bool) {
	for _, t := range builtins {
		if t.Tag == tag {
			return t, true
		}
	}
	return Template{}, false
}

// Expand evaluates the template against a parameter map, returning unpriced
// material lines and the estimated labor hours. Quantities for countable
// units (each, box, pack) are rounded up to whole items.
func (t Template) Expand(params map[string]float64) ([]quote.Material, float64, error) {
	for _, p := range t.Params {
		if _, ok := params[p]; !ok {
			return nil, 0, fmt.Errorf("template %q: missing parameter %q", t.Tag, p)
		}
	}

	materials := make([]quote.Material, 0, len(t.Materials))
	for _, spec := range t.Materials {
		qty, err := formula.Eval(spec.QuantityFormula, params)
		if err != nil {
			return nil, 0, fmt.Errorf("template %q, material %q: %w", t.Tag, spec.Name, err)
		}
		if qty < 0 {
			qty = 0
		}
		switch spec.Unit {
		case quote.UnitEach, quote.UnitBox, quote.UnitPack:
			qty = math.Ceil(qty)
		default:
			qty = math.Round(qty*10) / 10
		}
		m := quote.NewMaterial(spec.Name, qty, spec.Unit, 0)
		m.SearchTerm = spec.SearchTerm
		materials = append(materials, m)
	}

	hours, err := formula.Eval(t.HoursFormula, params)
	if err != nil {
		return nil, 0, fmt.Errorf("template %q: hours formula: %w", t.Tag, err)
	}
	if hours < 0 {
		hours = 0
	}
	hours = math.Round(hours*10) / 10

	return materials, hours, nil
}
