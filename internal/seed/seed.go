package seed

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	headOfficeName  = "Matriz Industrial"
	demoCompanyName = "Demo Indústria"
	demoProductSKU  = "GAB-001"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type channelSeed struct {
	companyID      int64
	name           string
	icms           float64
	pis            float64
	cofins         float64
	commission     float64
	marketing      float64
	fixedCost      float64
	financialCost  float64
	administrative float64
	profitMargin   float64
	freightValue   float64
}

// Run executes the demo seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	headOfficeID, err := ensureCompany(tx, 1, headOfficeName, "LUCRO_REAL", &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	demoID, err := ensureCompany(tx, 2, demoCompanyName, "SIMPLES", &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	steelID, err := ensureMaterial(tx, demoID, "Chapa de aço 1mm", 100, 80, 10, true, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	hingeID, err := ensureMaterial(tx, demoID, "Dobradiça inox", 7.5, 4.2, 5, false, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	productID, err := ensureProduct(tx, demoID, "Gabinete metálico", demoProductSKU, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureBOMLine(tx, productID, steelID, 2, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureBOMLine(tx, productID, hingeID, 4, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	channels := []channelSeed{
		{companyID: headOfficeID, name: "Marketplace", icms: 18, pis: 1.65, cofins: 7.6, commission: 16, marketing: 3, fixedCost: 5, profitMargin: 12, freightValue: 25},
		{companyID: demoID, name: "Marketplace", icms: 12, commission: 14, marketing: 2, fixedCost: 5, profitMargin: 15, freightValue: 20},
		{companyID: demoID, name: "Atacado", icms: 12, commission: 3, fixedCost: 5, financialCost: 2, administrative: 3, profitMargin: 10},
	}
	for _, ch := range channels {
		if err := ensureChannel(tx, ch, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCompany(tx *sql.Tx, id int64, name, regime string, stats *Stats) (int64, error) {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM companies WHERE id = ?)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check company existence: %w", err)
	}
	if exists {
		return id, nil
	}

	if _, err := tx.Exec(`INSERT INTO companies (id, name, tax_regime) VALUES (?, ?, ?)`, id, name, regime); err != nil {
		return 0, fmt.Errorf("insert company %q: %w", name, err)
	}
	stats.Inserts++
	return id, nil
}

func ensureMaterial(tx *sql.Tx, companyID int64, name string, priceNational, priceImported, ipiPercent float64, isNational bool, stats *Stats) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM materials WHERE company_id = ? AND name = ? LIMIT 1`, companyID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check material existence: %w", err)
	}

	result, err := tx.Exec(`
		INSERT INTO materials (company_id, name, price_national, price_imported, ipi_percent, is_national)
		VALUES (?, ?, ?, ?, ?, ?)
	`, companyID, name, priceNational, priceImported, ipiPercent, isNational)
	if err != nil {
		return 0, fmt.Errorf("insert material %q: %w", name, err)
	}
	stats.Inserts++
	return result.LastInsertId()
}

func ensureProduct(tx *sql.Tx, companyID int64, name, sku string, stats *Stats) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM products WHERE company_id = ? AND sku = ? LIMIT 1`, companyID, sku).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check product existence: %w", err)
	}

	result, err := tx.Exec(`INSERT INTO products (company_id, name, sku) VALUES (?, ?, ?)`, companyID, name, sku)
	if err != nil {
		return 0, fmt.Errorf("insert product %q: %w", name, err)
	}
	stats.Inserts++
	return result.LastInsertId()
}

func ensureBOMLine(tx *sql.Tx, productID, materialID int64, quantity float64, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM product_boms WHERE product_id = ? AND material_id = ? LIMIT 1)
	`, productID, materialID).Scan(&exists); err != nil {
		return fmt.Errorf("check bom line existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO product_boms (product_id, material_id, quantity)
		VALUES (?, ?, ?)
	`, productID, materialID, quantity); err != nil {
		return fmt.Errorf("insert bom line: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureChannel(tx *sql.Tx, ch channelSeed, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM sales_channels WHERE company_id = ? AND name = ? LIMIT 1)
	`, ch.companyID, ch.name).Scan(&exists); err != nil {
		return fmt.Errorf("check sales channel existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO sales_channels (
			company_id,
			name,
			icms_out_percent,
			pis_out_percent,
			cofins_out_percent,
			commission_percent,
			marketing_percent,
			fixed_cost_allocation_percent,
			financial_cost_percent,
			administrative_cost_percent,
			profit_margin_percent,
			freight_value
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ch.companyID,
		ch.name,
		ch.icms,
		ch.pis,
		ch.cofins,
		ch.commission,
		ch.marketing,
		ch.fixedCost,
		ch.financialCost,
		ch.administrative,
		ch.profitMargin,
		ch.freightValue,
	); err != nil {
		return fmt.Errorf("insert sales channel %q: %w", ch.name, err)
	}
	stats.Inserts++
	return nil
}
