package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Krank3n/QuoteMate-sub000/internal/pricing"
	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
	"github.com/Krank3n/QuoteMate-sub000/internal/reconcile"
	"github.com/Krank3n/QuoteMate-sub000/internal/store"
	"github.com/Krank3n/QuoteMate-sub000/internal/template"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.store.ListQuotes(query)
	if err != nil {
		s.log.Error("list quotes", "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load quotes")
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

type quoteCreateRequest struct {
	Customer quote.Customer `json:"customer"`
	Notes    string         `json:"notes"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "customer name is required")
		return
	}

	settings, err := s.store.GetSettings()
	if err != nil {
		s.log.Error("load settings", "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load settings")
		return
	}

	q := quote.New(req.Customer)
	q.Notes = req.Notes
	q.LaborRate = settings.DefaultLaborRate
	q.MarkupPercent = settings.DefaultMarkupPercent
	pricing.Recalculate(q)

	if err := s.store.SaveQuote(q); err != nil {
		s.log.Error("save quote", "quote", q.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save quote")
		return
	}

	s.log.Info("quote created", "quote", q.ID, "customer", q.Customer.Name)
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type quoteUpdateRequest struct {
	Customer      quote.Customer   `json:"customer"`
	Job           quote.Job        `json:"job"`
	Materials     []quote.Material `json:"materials"`
	LaborRate     float64          `json:"laborRate"`
	LaborHours    float64          `json:"laborHours"`
	MarkupPercent float64          `json:"markupPercent"`
	Notes         string           `json:"notes"`
}

func (s *server) handleQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	var req quoteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "customer name is required")
		return
	}
	if req.LaborRate < 0 || req.LaborHours < 0 || req.MarkupPercent < 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "labor rate, hours and markup must be >= 0")
		return
	}
	for i := range req.Materials {
		m := &req.Materials[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Unit == "" {
			m.Unit = quote.UnitEach
		}
		if err := m.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
	}

	q.Customer = req.Customer
	q.Job = req.Job
	q.Materials = req.Materials
	q.LaborRate = req.LaborRate
	q.LaborHours = req.LaborHours
	q.MarkupPercent = req.MarkupPercent
	q.Notes = req.Notes
	pricing.Recalculate(q)
	q.Touch()

	if err := s.store.SaveQuote(q); err != nil {
		s.log.Error("save quote", "quote", q.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save quote")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteQuote(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		s.log.Error("delete quote", "quote", id, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to delete quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status quote.Status `json:"status"`
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := q.SetStatus(req.Status); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	q.Touch()

	if err := s.store.SaveQuote(q); err != nil {
		s.log.Error("save quote", "quote", q.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save quote")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type templateRequest struct {
	Template string             `json:"template"`
	Params   map[string]float64 `json:"params"`
}

func (s *server) handleQuoteTemplate(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	tmpl, found := template.Find(req.Template)
	if !found {
		writeError(w, http.StatusNotFound, "unknown_template", req.Template)
		return
	}

	materials, hours, err := tmpl.Expand(req.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, "template_error", err.Error())
		return
	}

	q.Job.Template = tmpl.Tag
	if q.Job.Name == "" {
		q.Job.Name = tmpl.Name
	}
	q.Job.EstimatedHours = hours
	q.Job.Params = req.Params
	q.LaborHours = hours
	q.Materials = append(q.Materials, materials...)
	pricing.Recalculate(q)
	q.Touch()

	if err := s.store.SaveQuote(q); err != nil {
		s.log.Error("save quote", "quote", q.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save quote")
		return
	}

	s.log.Info("template applied", "quote", q.ID, "template", tmpl.Tag, "materials", len(materials))
	writeJSON(w, http.StatusOK, q)
}

type repriceResponse struct {
	reconcile.Summary
	Outcome string       `json:"outcome"`
	Message string       `json:"message"`
	Quote   *quote.Quote `json:"quote"`
	Error   string       `json:"error,omitempty"`
}

func (s *server) handleQuoteReprice(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	rec := reconcile.New(s.lookup, reconcile.WithDelay(s.cfg.LookupDelay))
	summary, runErr := rec.Run(r.Context(), q.Materials)

	// Persist whatever the pass managed to fetch, even when it was cut
	// short; prices already written to the list stay valid.
	pricing.Recalculate(q)
	q.Touch()
	if err := s.store.SaveQuote(q); err != nil {
		s.log.Error("save quote", "quote", q.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save quote")
		return
	}

	resp := repriceResponse{
		Summary: summary,
		Outcome: string(summary.Outcome()),
		Message: summary.Message(),
		Quote:   q,
	}

	if runErr != nil {
		s.log.Warn("reprice stopped", "quote", q.ID, "err", runErr,
			"fetched", summary.Fetched, "skipped", summary.Skipped, "failed", summary.Failed)
		resp.Error = runErr.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	s.log.Info("quote repriced", "quote", q.ID,
		"fetched", summary.Fetched, "skipped", summary.Skipped, "failed", summary.Failed,
		"outcome", resp.Outcome)
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, template.All())
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings()
	if err != nil {
		s.log.Error("load settings", "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := s.store.UpdateSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	// Read back so the response reflects applied defaults (e.g. currency).
	saved, err := s.store.GetSettings()
	if err != nil {
		s.log.Error("load settings", "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (*quote.Quote, bool) {
	id := chi.URLParam(r, "id")
	q, err := s.store.GetQuote(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return nil, false
		}
		s.log.Error("load quote", "quote", id, "err", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load quote")
		return nil, false
	}
	return q, true
}
