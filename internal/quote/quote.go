// Package quote defines the quote record and its money invariants.
package quote

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Unit enumerates how a material line is measured.
type Unit string

const (
	UnitEach     Unit = "each"
	UnitMetre    Unit = "metre"
	UnitLitre    Unit = "litre"
	UnitKilogram Unit = "kilogram"
	UnitBox      Unit = "box"
	UnitPack     Unit = "pack"
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	switch u {
	case UnitEach, UnitMetre, UnitLitre, UnitKilogram, UnitBox, UnitPack:
		return true
	}
	return false
}

// Status is the workflow state of a quote. Transitions are user-driven and
// unconstrained; new quotes always start as draft.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Round2 rounds a monetary value to cents, half away from zero.
// NaN is coerced to zero; unparsable numeric input is zeroed upstream and
// this keeps the same contract for values that slip through.
func Round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Material is a single priced line item on a quote.
//
// TotalPrice must always equal Round2(Quantity * Price); use SetQuantity and
// SetPrice rather than assigning the fields directly.
type Material struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Quantity            float64 `json:"quantity"`
	Unit                Unit    `json:"unit"`
	Price               float64 `json:"price"`
	TotalPrice          float64 `json:"totalPrice"`
	ManualPriceOverride bool    `json:"manualPriceOverride"`
	CatalogID           string  `json:"catalogId,omitempty"`
	SearchTerm          string  `json:"searchTerm,omitempty"`
}

// NewMaterial builds a material line with its total already derived.
func NewMaterial(name string, quantity float64, unit Unit, price float64) Material {
	m := Material{
		ID:       uuid.NewString(),
		Name:     name,
		Quantity: quantity,
		Unit:     unit,
		Price:    price,
	}
	m.recalc()
	return m
}

// Validate checks the line-item invariants that mutations must preserve.
func (m Material) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("material name is required")
	}
	if !m.Unit.Valid() {
		return fmt.Errorf("unknown unit %q", m.Unit)
	}
	if m.Quantity < 0 {
		return fmt.Errorf("material %q: quantity must be >= 0", m.Name)
	}
	if m.Price < 0 {
		return fmt.Errorf("material %q: price must be >= 0", m.Name)
	}
	return nil
}

// SetQuantity updates the quantity and keeps TotalPrice consistent.
func (m *Material) SetQuantity(quantity float64) {
	m.Quantity = quantity
	m.recalc()
}

// SetPrice records an automatically obtained unit price.
func (m *Material) SetPrice(price float64) {
	m.Price = price
	m.ManualPriceOverride = false
	m.recalc()
}

// OverridePrice records a price set by a human. Overridden prices are
// re-fetched, not skipped, by automated reconciliation.
func (m *Material) OverridePrice(price float64) {
	m.Price = price
	m.ManualPriceOverride = true
	m.recalc()
}

// LookupTerm returns the search term to send to an external pricing source:
// the explicit term when present, otherwise the display name.
func (m Material) LookupTerm() string {
	if m.SearchTerm != "" {
		return m.SearchTerm
	}
	return m.Name
}

func (m *Material) recalc() {
	m.TotalPrice = Round2(m.Quantity * m.Price)
}

// Job describes the work a quote is for.
type Job struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Template       string             `json:"template,omitempty"`
	EstimatedHours float64            `json:"estimatedHours,omitempty"`
	Params         map[string]float64 `json:"params,omitempty"`
}

// Customer identifies who the quote is for. Only the name is required.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Totals holds the six derived monetary fields of a quote. They are a pure
// function of the materials, labor and markup inputs and are never hand-set.
type Totals struct {
	MaterialsSubtotal float64 `json:"materialsSubtotal"`
	LaborTotal        float64 `json:"laborTotal"`
	Subtotal          float64 `json:"subtotal"`
	MarkupAmount      float64 `json:"markupAmount"`
	GST               float64 `json:"gst"`
	Total             float64 `json:"total"`
}

// Quote is the record the whole quoting workflow operates on.
type Quote struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Customer      Customer   `json:"customer"`
	Job           Job        `json:"job"`
	Materials     []Material `json:"materials"`
	LaborRate     float64    `json:"laborRate"`
	LaborHours    float64    `json:"laborHours"`
	MarkupPercent float64    `json:"markupPercent"`
	Status        Status     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	Totals        Totals     `json:"totals"`
}

// New creates a draft quote with empty materials and zero totals.
func New(customer Customer) *Quote {
	now := time.Now().UTC()
	return &Quote{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Customer:  customer,
		Materials: make([]Material, 0),
		Status:    StatusDraft,
	}
}

// AddMaterial appends a line item; insertion order is display order.
func (q *Quote) AddMaterial(m Material) {
	q.Materials = append(q.Materials, m)
}

// SetStatus moves the quote to any of the four workflow states.
func (q *Quote) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("unknown status %q", s)
	}
	q.Status = s
	return nil
}

// HasUnpricedMaterials reports whether automated reconciliation would still
// attempt a lookup for at least one line.
func (q *Quote) HasUnpricedMaterials() bool {
	for _, m := range q.Materials {
		if m.Price <= 0 || m.ManualPriceOverride {
			return true
		}
	}
	return false
}

// Touch records a mutation for the updated-at timestamp.
func (q *Quote) Touch() {
	q.UpdatedAt = time.Now().UTC()
}
