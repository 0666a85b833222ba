package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Krank3n/QuoteMate-sub000/internal/db"
	"github.com/Krank3n/QuoteMate-sub000/internal/migrations"
	"github.com/Krank3n/QuoteMate-sub000/internal/pricing"
	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "store-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return New(database)
}

func sampleQuote(t *testing.T, customer string) *quote.Quote {
	t.Helper()

	q := quote.New(quote.Customer{Name: customer, Email: customer + "@example.com"})
	q.AddMaterial(quote.NewMaterial("Decking board", 24, quote.UnitMetre, 7.85))
	q.AddMaterial(quote.NewMaterial("Screws", 2, quote.UnitBox, 0))
	q.LaborRate = 95
	q.LaborHours = 6
	q.MarkupPercent = 15
	pricing.Recalculate(q)
	return q
}

func TestSaveAndGetQuoteRoundTrip(t *testing.T) {
	st := newTestStore(t)
	q := sampleQuote(t, "Dana")
	q.Job = quote.Job{Name: "Back deck", Template: "deck", Params: map[string]float64{"lengthM": 4, "widthM": 3}}
	q.Notes = "access via side gate"

	if err := st.SaveQuote(q); err != nil {
		t.Fatalf("save quote: %v", err)
	}

	loaded, err := st.GetQuote(q.ID)
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}

	if loaded.Customer != q.Customer {
		t.Fatalf("customer mismatch: %+v vs %+v", loaded.Customer, q.Customer)
	}
	if loaded.Status != quote.StatusDraft || loaded.Notes != q.Notes {
		t.Fatalf("fields mismatch: %+v", loaded)
	}
	if len(loaded.Materials) != 2 || loaded.Materials[0].Name != "Decking board" {
		t.Fatalf("materials mismatch: %+v", loaded.Materials)
	}
	if loaded.Totals != q.Totals {
		t.Fatalf("totals mismatch: %+v vs %+v", loaded.Totals, q.Totals)
	}
	if loaded.Job.Params["widthM"] != 3 {
		t.Fatalf("job params lost: %+v", loaded.Job)
	}
	if !loaded.CreatedAt.Equal(q.CreatedAt.Truncate(time.Second)) {
		t.Fatalf("created_at mismatch: %v vs %v", loaded.CreatedAt, q.CreatedAt)
	}
}

func TestSaveQuoteUpserts(t *testing.T) {
	st := newTestStore(t)
	q := sampleQuote(t, "Dana")

	if err := st.SaveQuote(q); err != nil {
		t.Fatalf("save quote: %v", err)
	}

	q.Notes = "revised"
	_ = q.SetStatus(quote.StatusSent)
	if err := st.SaveQuote(q); err != nil {
		t.Fatalf("re-save quote: %v", err)
	}

	loaded, err := st.GetQuote(q.ID)
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if loaded.Notes != "revised" || loaded.Status != quote.StatusSent {
		t.Fatalf("update not applied: %+v", loaded)
	}

	all, err := st.ListQuotes("")
	if err != nil {
		t.Fatalf("list quotes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 quote after upsert, got %d", len(all))
	}
}

func TestGetQuoteNotFound(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetQuote("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteQuote("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestListQuotesNewestFirstAndFiltered(t *testing.T) {
	st := newTestStore(t)

	older := sampleQuote(t, "Alice")
	older.CreatedAt = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := sampleQuote(t, "Bob")
	newer.CreatedAt = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	newer.Notes = "urgent fence repair"

	for _, q := range []*quote.Quote{older, newer} {
		if err := st.SaveQuote(q); err != nil {
			t.Fatalf("save quote: %v", err)
		}
	}

	all, err := st.ListQuotes("")
	if err != nil {
		t.Fatalf("list quotes: %v", err)
	}
	if len(all) != 2 || all[0].Customer.Name != "Bob" || all[1].Customer.Name != "Alice" {
		t.Fatalf("quotes not sorted newest first: %+v", all)
	}

	byName, err := st.ListQuotes("Ali")
	if err != nil {
		t.Fatalf("list quotes by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Customer.Name != "Alice" {
		t.Fatalf("name filter failed: %+v", byName)
	}

	byNotes, err := st.ListQuotes("fence")
	if err != nil {
		t.Fatalf("list quotes by notes: %v", err)
	}
	if len(byNotes) != 1 || byNotes[0].Customer.Name != "Bob" {
		t.Fatalf("notes filter failed: %+v", byNotes)
	}
}

func TestDeleteQuote(t *testing.T) {
	st := newTestStore(t)
	q := sampleQuote(t, "Dana")

	if err := st.SaveQuote(q); err != nil {
		t.Fatalf("save quote: %v", err)
	}
	if err := st.DeleteQuote(q.ID); err != nil {
		t.Fatalf("delete quote: %v", err)
	}
	if _, err := st.GetQuote(q.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListUnpricedDrafts(t *testing.T) {
	st := newTestStore(t)

	needsPricing := sampleQuote(t, "Alice") // has a zero-priced material
	fullyPriced := quote.New(quote.Customer{Name: "Bob"})
	fullyPriced.AddMaterial(quote.NewMaterial("Paint", 4, quote.UnitLitre, 32))
	sentButUnpriced := sampleQuote(t, "Cara")
	_ = sentButUnpriced.SetStatus(quote.StatusSent)

	for _, q := range []*quote.Quote{needsPricing, fullyPriced, sentButUnpriced} {
		if err := st.SaveQuote(q); err != nil {
			t.Fatalf("save quote: %v", err)
		}
	}

	drafts, err := st.ListUnpricedDrafts()
	if err != nil {
		t.Fatalf("list unpriced drafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Customer.Name != "Alice" {
		t.Fatalf("expected only Alice's draft, got %+v", drafts)
	}
}

func TestSettingsSingleton(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := st.EnsureSettings(); err != nil {
			t.Fatalf("ensure settings (iteration=%d): %v", i, err)
		}
	}

	settings, err := st.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.Currency != "AUD" || settings.DefaultLaborRate != 0 {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	settings.BusinessName = "Smith & Sons Carpentry"
	settings.ABN = "51 824 753 556"
	settings.DefaultLaborRate = 95
	settings.DefaultMarkupPercent = 15
	if err := st.UpdateSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	loaded, err := st.GetSettings()
	if err != nil {
		t.Fatalf("get settings after update: %v", err)
	}
	if loaded != settings {
		t.Fatalf("settings mismatch: %+v vs %+v", loaded, settings)
	}
}

func TestUpdateSettingsRejectsNegatives(t *testing.T) {
	st := newTestStore(t)

	if err := st.UpdateSettings(Settings{DefaultLaborRate: -1}); err == nil {
		t.Fatal("expected error for negative labor rate")
	}
	if err := st.UpdateSettings(Settings{DefaultMarkupPercent: -1}); err == nil {
		t.Fatal("expected error for negative markup")
	}
}
