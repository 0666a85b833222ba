// Package estimate implements material price lookup against an AI
// price-estimation service, the alternative to the store catalog.
package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Krank3n/QuoteMate-sub000/internal/reconcile"
)

// Estimates are slow to produce, so the timeout is generous and there is no
// retry: a second attempt would just double the wait for the same answer.
const httpTimeout = 45 * time.Second

// Client asks the estimation service for a plausible retail price for a
// free-text item description. It implements reconcile.Lookup.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs an estimator client with a shared HTTP client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type estimateRequest struct {
	Item     string `json:"item"`
	Currency string `json:"currency"`
}

type estimateResponse struct {
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

// Price requests an estimate for term. A zero or negative estimate means
// the service could not price the item ("not found"); transport failures
// and server errors wrap reconcile.ErrUnavailable.
func (c *Client) Price(ctx context.Context, term string) (reconcile.Result, error) {
	payload, err := json.Marshal(estimateRequest{Item: term, Currency: "AUD"})
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("marshal estimate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/estimate", bytes.NewReader(payload))
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("build estimate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("estimate %q: %v: %w", term, err, reconcile.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("estimate %q: read body: %v: %w", term, err, reconcile.ErrUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return reconcile.Result{}, fmt.Errorf("estimate %q: status %d: %w", term, resp.StatusCode, reconcile.ErrUnavailable)
	default:
		return reconcile.Result{}, fmt.Errorf("estimate %q: status %d: %s", term, resp.StatusCode, string(body))
	}

	var out estimateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return reconcile.Result{}, fmt.Errorf("estimate %q: json unmarshal: %w", term, err)
	}

	if out.Price <= 0 {
		return reconcile.Result{}, nil
	}
	return reconcile.Result{Found: true, Price: out.Price, Name: out.Name}, nil
}
