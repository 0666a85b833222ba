// Package pricing derives the monetary breakdown of a quote.
package pricing

import (
	"math"

	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
)

// GSTRate is the fixed Australian goods and services tax rate, applied to
// the marked-up subtotal. Policy constant, not configurable.
const GSTRate = 0.10

// Calculate computes the six derived monetary fields from a quote's line
// items and rate inputs. It is pure and idempotent: same inputs, same
// output, no validation and no side effects.
//
// Every step rounds to cents (half away from zero) before the next one, so
// stored totals match what a calculator working line by line would print.
// NaN inputs are treated as zero.
func Calculate(materials []quote.Material, laborRate, laborHours, markupPercent float64) quote.Totals {
	laborRate = orZero(laborRate)
	laborHours = orZero(laborHours)
	markupPercent = orZero(markupPercent)

	materialsSubtotal := 0.0
	for _, m := range materials {
		materialsSubtotal += orZero(m.TotalPrice)
	}
	materialsSubtotal = quote.Round2(materialsSubtotal)

	laborTotal := quote.Round2(laborRate * laborHours)
	subtotal := quote.Round2(materialsSubtotal + laborTotal)
	markupAmount := quote.Round2(subtotal * markupPercent / 100)
	subtotalWithMarkup := subtotal + markupAmount
	gst := quote.Round2(subtotalWithMarkup * GSTRate)
	total := quote.Round2(subtotalWithMarkup + gst)

	return quote.Totals{
		MaterialsSubtotal: materialsSubtotal,
		LaborTotal:        laborTotal,
		Subtotal:          subtotal,
		MarkupAmount:      markupAmount,
		GST:               gst,
		Total:             total,
	}
}

// Recalculate re-derives every material line total and the quote totals in
// place. Callers invoke it after any change to materials, labor or markup.
func Recalculate(q *quote.Quote) {
	for i := range q.Materials {
		m := &q.Materials[i]
		m.TotalPrice = quote.Round2(m.Quantity * m.Price)
	}
	q.Totals = Calculate(q.Materials, q.LaborRate, q.LaborHours, q.MarkupPercent)
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
