package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/Krank3n/QuoteMate-sub000/internal/catalog"
	"github.com/Krank3n/QuoteMate-sub000/internal/config"
	"github.com/Krank3n/QuoteMate-sub000/internal/db"
	"github.com/Krank3n/QuoteMate-sub000/internal/estimate"
	"github.com/Krank3n/QuoteMate-sub000/internal/migrations"
	"github.com/Krank3n/QuoteMate-sub000/internal/reconcile"
	"github.com/Krank3n/QuoteMate-sub000/internal/refresh"
	"github.com/Krank3n/QuoteMate-sub000/internal/store"
)

type server struct {
	store  *store.Store
	lookup reconcile.Lookup
	cfg    config.Config
	log    *slog.Logger
}

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.Up(database, "migrations"); err != nil {
		logger.Error("run database migrations", "err", err)
		os.Exit(1)
	}

	st := store.New(database)
	if err := st.EnsureSettings(); err != nil {
		logger.Error("ensure settings", "err", err)
		os.Exit(1)
	}

	lookup := newLookup(cfg)
	srv := &server{store: st, lookup: lookup, cfg: cfg, log: logger}

	if cfg.RefreshSpec != "" {
		refresher := refresh.New(st, lookup, cfg.LookupDelay, cfg.RefreshSpec, logger)
		if err := refresher.Start(context.Background()); err != nil {
			logger.Error("start refresher", "err", err)
			os.Exit(1)
		}
		defer refresher.Stop()
	}

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "pricing_source", cfg.PricingSource)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/quotes", s.handleQuotesList)
	r.Post("/quotes", s.handleQuoteCreate)
	r.Get("/quotes/{id}", s.handleQuoteGet)
	r.Put("/quotes/{id}", s.handleQuoteUpdate)
	r.Delete("/quotes/{id}", s.handleQuoteDelete)
	r.Post("/quotes/{id}/status", s.handleQuoteStatus)
	r.Post("/quotes/{id}/template", s.handleQuoteTemplate)
	r.Post("/quotes/{id}/reprice", s.handleQuoteReprice)
	r.Get("/templates", s.handleTemplatesList)
	r.Get("/settings", s.handleSettingsGet)
	r.Put("/settings", s.handleSettingsUpdate)
	return r
}

func newLookup(cfg config.Config) reconcile.Lookup {
	if cfg.PricingSource == config.SourceEstimator {
		return estimate.NewClient(cfg.EstimatorBaseURL, cfg.EstimatorAPIKey)
	}
	return catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey)
}
