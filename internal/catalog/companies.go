package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/markup/internal/pricing"
)

// Companies reads company records.
type Companies struct {
	db *sql.DB
}

func NewCompanies(db *sql.DB) *Companies {
	return &Companies{db: db}
}

// GetTaxRegime returns the tax regime of a company.
func (c *Companies) GetTaxRegime(ctx context.Context, companyID int64) (pricing.Regime, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT tax_regime FROM companies WHERE id = ?`, companyID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("company %d: %w", companyID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query company tax regime: %w", err)
	}

	regime, err := pricing.ParseRegime(raw)
	if err != nil {
		return "", fmt.Errorf("company %d: %w", companyID, err)
	}
	return regime, nil
}
