// Package store persists quotes and the business-settings singleton in
// SQLite. The job, materials and totals of a quote are stored as JSON
// columns; the fields the list view filters on stay relational.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
)

// ErrNotFound is returned when a quote id has no row.
var ErrNotFound = errors.New("quote not found")

// Store wraps the database handle with quote and settings persistence.
type Store struct {
	db *sql.DB
}

// New builds a Store around an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveQuote inserts or updates a quote by id.
func (s *Store) SaveQuote(q *quote.Quote) error {
	jobJSON, err := json.Marshal(q.Job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	materialsJSON, err := json.Marshal(q.Materials)
	if err != nil {
		return fmt.Errorf("marshal materials: %w", err)
	}
	totalsJSON, err := json.Marshal(q.Totals)
	if err != nil {
		return fmt.Errorf("marshal totals: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO quotes (
			id, created_at, updated_at,
			customer_name, customer_email, customer_phone, customer_address,
			job_json, materials_json,
			labor_rate, labor_hours, markup_percent,
			status, notes, totals_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			customer_name = excluded.customer_name,
			customer_email = excluded.customer_email,
			customer_phone = excluded.customer_phone,
			customer_address = excluded.customer_address,
			job_json = excluded.job_json,
			materials_json = excluded.materials_json,
			labor_rate = excluded.labor_rate,
			labor_hours = excluded.labor_hours,
			markup_percent = excluded.markup_percent,
			status = excluded.status,
			notes = excluded.notes,
			totals_json = excluded.totals_json
	`,
		q.ID,
		q.CreatedAt.UTC().Format(time.RFC3339),
		q.UpdatedAt.UTC().Format(time.RFC3339),
		q.Customer.Name, q.Customer.Email, q.Customer.Phone, q.Customer.Address,
		string(jobJSON), string(materialsJSON),
		q.LaborRate, q.LaborHours, q.MarkupPercent,
		string(q.Status), q.Notes, string(totalsJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert quote: %w", err)
	}
	return nil
}

// GetQuote loads a quote by id.
func (s *Store) GetQuote(id string) (*quote.Quote, error) {
	row := s.db.QueryRow(selectColumns+` FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query quote: %w", err)
	}
	return q, nil
}

// DeleteQuote removes a quote by id.
func (s *Store) DeleteQuote(id string) error {
	result, err := s.db.Exec(`DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListQuotes returns quotes newest first, optionally filtered by a substring
// of the customer name or notes.
func (s *Store) ListQuotes(query string) ([]quote.Quote, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(selectColumns+`
		FROM quotes
		WHERE (? = '' OR customer_name LIKE ? OR notes LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quote.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// ListUnpricedDrafts returns draft quotes that still have materials the
// reconciler would look up.
func (s *Store) ListUnpricedDrafts() ([]quote.Quote, error) {
	drafts, err := s.ListQuotes("")
	if err != nil {
		return nil, err
	}
	out := make([]quote.Quote, 0)
	for _, q := range drafts {
		if q.Status == quote.StatusDraft && q.HasUnpricedMaterials() {
			out = append(out, q)
		}
	}
	return out, nil
}

const selectColumns = `
	SELECT
		id, created_at, updated_at,
		customer_name, customer_email, customer_phone, customer_address,
		job_json, materials_json,
		labor_rate, labor_hours, markup_percent,
		status, notes, totals_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*quote.Quote, error) {
	var q quote.Quote
	var createdAt, updatedAt, jobJSON, materialsJSON, status, totalsJSON string
	if err := row.Scan(
		&q.ID, &createdAt, &updatedAt,
		&q.Customer.Name, &q.Customer.Email, &q.Customer.Phone, &q.Customer.Address,
		&jobJSON, &materialsJSON,
		&q.LaborRate, &q.LaborHours, &q.MarkupPercent,
		&status, &q.Notes, &totalsJSON,
	); err != nil {
		return nil, err
	}

	var err error
	if q.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if q.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(jobJSON), &q.Job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	if err := json.Unmarshal([]byte(materialsJSON), &q.Materials); err != nil {
		return nil, fmt.Errorf("unmarshal materials: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &q.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}
	q.Status = quote.Status(status)
	return &q, nil
}
