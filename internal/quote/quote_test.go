package quote

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.004, 1.00},
		{1.006, 1.01},
		{-1.006, -1.01},
		{10.005, 10.01},
		{17.5, 17.5},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewMaterialDerivesTotal(t *testing.T) {
	m := NewMaterial("Decking board", 24, UnitMetre, 7.85)

	if m.ID == "" {
		t.Fatal("expected a generated id")
	}
	if math.Abs(m.TotalPrice-188.40) > 1e-9 {
		t.Fatalf("TotalPrice = %v, want 188.40", m.TotalPrice)
	}
}

func TestMaterialMutationsKeepTotalConsistent(t *testing.T) {
	m := NewMaterial("Paint", 2, UnitLitre, 30)

	m.SetQuantity(3)
	if math.Abs(m.TotalPrice-90) > 1e-9 {
		t.Fatalf("after SetQuantity TotalPrice = %v, want 90", m.TotalPrice)
	}

	m.SetPrice(25.50)
	if math.Abs(m.TotalPrice-76.50) > 1e-9 {
		t.Fatalf("after SetPrice TotalPrice = %v, want 76.50", m.TotalPrice)
	}
	if m.ManualPriceOverride {
		t.Fatal("SetPrice must clear the manual override flag")
	}

	m.OverridePrice(20)
	if !m.ManualPriceOverride {
		t.Fatal("OverridePrice must set the manual override flag")
	}
	if math.Abs(m.TotalPrice-60) > 1e-9 {
		t.Fatalf("after OverridePrice TotalPrice = %v, want 60", m.TotalPrice)
	}
}

func TestMaterialValidate(t *testing.T) {
	valid := NewMaterial("Screws", 2, UnitBox, 19.90)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid material rejected: %v", err)
	}

	negativeQty := NewMaterial("Screws", -1, UnitBox, 19.90)
	if err := negativeQty.Validate(); err == nil {
		t.Fatal("expected error for negative quantity")
	}

	negativePrice := NewMaterial("Screws", 1, UnitBox, -5)
	if err := negativePrice.Validate(); err == nil {
		t.Fatal("expected error for negative price")
	}

	badUnit := NewMaterial("Screws", 1, Unit("bucket"), 5)
	if err := badUnit.Validate(); err == nil {
		t.Fatal("expected error for unknown unit")
	}

	unnamed := NewMaterial("  ", 1, UnitBox, 5)
	if err := unnamed.Validate(); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestLookupTerm(t *testing.T) {
	m := NewMaterial("Deck screws", 1, UnitBox, 0)
	if m.LookupTerm() != "Deck screws" {
		t.Fatalf("LookupTerm = %q, want display name", m.LookupTerm())
	}

	m.SearchTerm = "stainless decking screws 10g"
	if m.LookupTerm() != "stainless decking screws 10g" {
		t.Fatalf("LookupTerm = %q, want explicit search term", m.LookupTerm())
	}
}

func TestNewQuoteStartsAsEmptyDraft(t *testing.T) {
	q := New(Customer{Name: "Sam"})

	if q.Status != StatusDraft {
		t.Fatalf("Status = %q, want draft", q.Status)
	}
	if len(q.Materials) != 0 {
		t.Fatalf("expected empty materials, got %d", len(q.Materials))
	}
	if q.Totals != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", q.Totals)
	}
	if q.ID == "" || q.CreatedAt.IsZero() || q.UpdatedAt.IsZero() {
		t.Fatalf("identity fields not populated: %+v", q)
	}
}

func TestStatusTransitionsAreUnconstrained(t *testing.T) {
	q := New(Customer{Name: "Sam"})

	// Any state may move to any other.
	for _, s := range []Status{StatusSent, StatusDraft, StatusRejected, StatusAccepted, StatusDraft} {
		if err := q.SetStatus(s); err != nil {
			t.Fatalf("SetStatus(%q) returned error: %v", s, err)
		}
		if q.Status != s {
			t.Fatalf("Status = %q, want %q", q.Status, s)
		}
	}

	if err := q.SetStatus(Status("archived")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestHasUnpricedMaterials(t *testing.T) {
	q := New(Customer{Name: "Sam"})
	if q.HasUnpricedMaterials() {
		t.Fatal("empty quote has nothing to price")
	}

	priced := NewMaterial("Paint", 1, UnitLitre, 30)
	q.AddMaterial(priced)
	if q.HasUnpricedMaterials() {
		t.Fatal("auto-priced material should not need a lookup")
	}

	unpriced := NewMaterial("Tape", 1, UnitEach, 0)
	q.AddMaterial(unpriced)
	if !q.HasUnpricedMaterials() {
		t.Fatal("zero-priced material needs a lookup")
	}

	// A manually overridden price is re-fetched, so it still counts.
	q.Materials = q.Materials[:1]
	q.Materials[0].ManualPriceOverride = true
	if !q.HasUnpricedMaterials() {
		t.Fatal("overridden material needs a lookup")
	}
}
