package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Settings is the single business-settings row. Defaults feed new quotes;
// they never retroactively change saved ones.
type Settings struct {
	BusinessName         string  `json:"businessName"`
	ABN                  string  `json:"abn"`
	DefaultLaborRate     float64 `json:"defaultLaborRate"`
	DefaultMarkupPercent float64 `json:"defaultMarkupPercent"`
	Currency             string  `json:"currency"`
}

// EnsureSettings inserts the settings singleton if it does not exist yet.
// Safe to call on every startup.
func (s *Store) EnsureSettings() error {
	_, err := s.db.Exec(`
		INSERT INTO settings (
			id, business_name, abn, default_labor_rate, default_markup_percent, currency
		) VALUES (1, '', '', 0, 0, 'AUD')
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	return nil
}

// GetSettings loads the settings singleton, creating it first if needed.
func (s *Store) GetSettings() (Settings, error) {
	if err := s.EnsureSettings(); err != nil {
		return Settings{}, err
	}

	var st Settings
	err := s.db.QueryRow(`
		SELECT business_name, abn, default_labor_rate, default_markup_percent, currency
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.BusinessName,
		&st.ABN,
		&st.DefaultLaborRate,
		&st.DefaultMarkupPercent,
		&st.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("settings singleton not found")
		}
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

// UpdateSettings overwrites the settings singleton.
func (s *Store) UpdateSettings(st Settings) error {
	if st.DefaultLaborRate < 0 {
		return fmt.Errorf("default labor rate must be >= 0")
	}
	if st.DefaultMarkupPercent < 0 {
		return fmt.Errorf("default markup percent must be >= 0")
	}
	if st.Currency == "" {
		st.Currency = "AUD"
	}

	_, err := s.db.Exec(`
		UPDATE settings
		SET
			business_name = ?,
			abn = ?,
			default_labor_rate = ?,
			default_markup_percent = ?,
			currency = ?,
			updated_at = datetime('now')
		WHERE id = 1
	`,
		st.BusinessName,
		st.ABN,
		st.DefaultLaborRate,
		st.DefaultMarkupPercent,
		st.Currency,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
