// Package catalog implements material price lookup against a hardware-store
// product search API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Krank3n/QuoteMate-sub000/internal/reconcile"
)

// errRejected marks a 4xx response: the request itself was bad, so retrying
// or aborting the batch would both be wrong. It fails the single item.
var errRejected = errors.New("catalog rejected request")

const (
	httpTimeout    = 15 * time.Second
	retryBase      = 200 * time.Millisecond
	maxRetries     = 2
	searchPageSize = 1
)

// Client searches the store catalog for a product matching a free-text term
// and returns its current price. It implements reconcile.Lookup.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a catalog client with a shared HTTP client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// searchResponse mirrors the catalog search endpoint's JSON body.
type searchResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ItemNumber string  `json:"itemNumber"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	InStock    bool    `json:"inStock"`
}

// Price looks up the best catalog match for term.
//
// An empty result set is a normal "not found", never an error. Transport
// failures and server errors are retried with exponential backoff and, once
// retries are exhausted, wrapped in reconcile.ErrUnavailable so a batch
// caller can abort the pass.
func (c *Client) Price(ctx context.Context, term string) (reconcile.Result, error) {
	var resp searchResponse

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.search(ctx, term)
		if err != nil {
			if errors.Is(err, errRejected) {
				return err
			}
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if errors.Is(err, errRejected) {
		return reconcile.Result{}, fmt.Errorf("catalog search %q: %w", term, err)
	}
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("catalog search %q: %v: %w", term, err, reconcile.ErrUnavailable)
	}

	for _, p := range resp.Products {
		if p.Price > 0 {
			return reconcile.Result{
				Found:  true,
				Price:  p.Price,
				Name:   p.Title,
				ItemID: p.ItemNumber,
			}, nil
		}
	}
	return reconcile.Result{}, nil
}

func (c *Client) search(ctx context.Context, term string) (searchResponse, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("pageSize", fmt.Sprint(searchPageSize))

	reqURL := c.baseURL + "/v1/products/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return searchResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return searchResponse{}, fmt.Errorf("read body: %w", err)
	}

	// 404 from the search endpoint means no matching products.
	if resp.StatusCode == http.StatusNotFound {
		return searchResponse{}, nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return searchResponse{}, fmt.Errorf("%w: status %d: %s", errRejected, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return searchResponse{}, fmt.Errorf("catalog returned %d: %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return searchResponse{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return out, nil
}
