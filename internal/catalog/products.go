package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/markup/internal/pricing"
)

// ProductSummary is a product as listed for selection.
type ProductSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// Products reads products and their bills of materials.
type Products struct {
	db *sql.DB
}

func NewProducts(db *sql.DB) *Products {
	return &Products{db: db}
}

// GetWithBOM loads a product with every BOM line resolved against its material.
// Lines whose material row is missing are returned with a nil Material so the
// engine can reject them.
func (p *Products) GetWithBOM(ctx context.Context, productID int64) (pricing.Product, error) {
	var product pricing.Product
	err := p.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, COALESCE(sku, '')
		FROM products
		WHERE id = ?
	`, productID).Scan(&product.ID, &product.CompanyID, &product.Name, &product.SKU)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Product{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return pricing.Product{}, fmt.Errorf("query product: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT
			pb.material_id,
			pb.quantity,
			m.id,
			COALESCE(m.name, ''),
			COALESCE(m.price_national, 0),
			COALESCE(m.price_imported, 0),
			COALESCE(m.ipi_percent, 0),
			COALESCE(m.is_national, 0)
		FROM product_boms pb
		LEFT JOIN materials m ON m.id = pb.material_id
		WHERE pb.product_id = ?
		ORDER BY pb.id
	`, productID)
	if err != nil {
		return pricing.Product{}, fmt.Errorf("query product bom: %w", err)
	}
	defer rows.Close()

	product.Lines = make([]pricing.BOMLine, 0)
	for rows.Next() {
		var (
			line       pricing.BOMLine
			materialID sql.NullInt64
			m          pricing.Material
		)
		if err := rows.Scan(
			&line.MaterialID,
			&line.Quantity,
			&materialID,
			&m.Name,
			&m.PriceNational,
			&m.PriceImported,
			&m.IPIPercent,
			&m.IsNational,
		); err != nil {
			return pricing.Product{}, fmt.Errorf("scan bom line: %w", err)
		}
		if materialID.Valid {
			m.ID = materialID.Int64
			line.Material = &m
		}
		product.Lines = append(product.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return pricing.Product{}, fmt.Errorf("iterate bom lines: %w", err)
	}

	return product, nil
}

// ListByCompany lists a company's products by name.
func (p *Products) ListByCompany(ctx context.Context, companyID int64) ([]ProductSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(sku, '')
		FROM products
		WHERE company_id = ?
		ORDER BY name ASC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]ProductSummary, 0)
	for rows.Next() {
		var ps ProductSummary
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.SKU); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// AddBOMLine appends a material requirement to a product.
func (p *Products) AddBOMLine(ctx context.Context, productID, materialID int64, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("bom quantity must be positive, got %s", quantity)
	}

	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO product_boms (product_id, material_id, quantity)
		VALUES (?, ?, ?)
	`, productID, materialID, quantity.String()); err != nil {
		return fmt.Errorf("insert bom line: %w", err)
	}
	return nil
}
