package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/markup/internal/pricing"
)

const channelColumns = `
	id,
	company_id,
	COALESCE(name, ''),
	icms_out_percent,
	pis_out_percent,
	cofins_out_percent,
	ipi_out_percent,
	difal_out_percent,
	ir_csll_percent,
	commission_percent,
	marketing_percent,
	freight_percent,
	default_rate_percent,
	financial_cost_percent,
	fixed_cost_allocation_percent,
	fixed_expenses_rate_percent,
	payroll_rate_percent,
	administrative_cost_percent,
	profit_margin_percent,
	freight_value
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (pricing.SalesChannel, error) {
	var ch pricing.SalesChannel
	err := row.Scan(
		&ch.ID,
		&ch.CompanyID,
		&ch.Name,
		&ch.ICMSOut,
		&ch.PISOut,
		&ch.COFINSOut,
		&ch.IPIOut,
		&ch.DIFALOut,
		&ch.IRCSLL,
		&ch.Commission,
		&ch.Marketing,
		&ch.FreightPercent,
		&ch.DefaultRate,
		&ch.FinancialCost,
		&ch.FixedCostAllocation,
		&ch.FixedExpensesRate,
		&ch.PayrollRate,
		&ch.AdministrativeCost,
		&ch.ProfitMargin,
		&ch.FreightValue,
	)
	return ch, err
}

// Channels reads sales channel configuration.
type Channels struct {
	db *sql.DB
}

func NewChannels(db *sql.DB) *Channels {
	return &Channels{db: db}
}

// Get returns one sales channel.
func (c *Channels) Get(ctx context.Context, channelID int64) (pricing.SalesChannel, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM sales_channels WHERE id = ?`, channelID)

	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.SalesChannel{}, fmt.Errorf("sales channel %d: %w", channelID, ErrNotFound)
	}
	if err != nil {
		return pricing.SalesChannel{}, fmt.Errorf("query sales channel: %w", err)
	}
	return ch, nil
}

// ListForCompany returns the company's channels plus the head office's, one per
// name. A company channel shadows a head office channel of the same name. The
// company's own channels come first, each group ordered by name.
func (c *Channels) ListForCompany(ctx context.Context, companyID int64) ([]pricing.SalesChannel, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+channelColumns+`
		FROM sales_channels
		WHERE company_id = ? OR company_id = ?
		ORDER BY CASE WHEN company_id = ? THEN 0 ELSE 1 END, name, id
	`, companyID, HeadOfficeCompanyID, companyID)
	if err != nil {
		return nil, fmt.Errorf("query sales channels: %w", err)
	}
	defer rows.Close()

	channels := make([]pricing.SalesChannel, 0)
	seen := make(map[string]bool)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales channel: %w", err)
		}
		if seen[ch.Name] {
			continue
		}
		seen[ch.Name] = true
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales channels: %w", err)
	}

	return channels, nil
}
