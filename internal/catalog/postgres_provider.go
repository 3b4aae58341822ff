package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/lib/pq"
)

// PostgresProvider reads the catalog from the catalog_products table.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Fetch(ctx context.Context) ([]product.Product, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, category, brand, price, sale_price, rating, review_count,
		       in_stock, is_new, tags, image_url
		FROM catalog_products
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var (
			prod      product.Product
			salePrice sql.NullInt64
			imageURL  sql.NullString
			tags      pq.StringArray
		)
		if err := rows.Scan(
			&prod.ID, &prod.Name, &prod.Category, &prod.Brand, &prod.Price, &salePrice,
			&prod.Rating, &prod.ReviewCount, &prod.InStock, &prod.IsNew, &tags, &imageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if salePrice.Valid {
			prod.SalePrice = product.PriceOf(int(salePrice.Int64))
		}
		prod.Tags = []string(tags)
		prod.ImageURL = imageURL.String
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return products, nil
}

// Upsert writes products into catalog_products, used to seed a fresh database.
func (p *PostgresProvider) Upsert(ctx context.Context, products []product.Product) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, prod := range products {
		var salePrice sql.NullInt64
		if prod.SalePrice != nil {
			salePrice = sql.NullInt64{Int64: int64(*prod.SalePrice), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_products
				(id, name, category, brand, price, sale_price, rating, review_count, in_stock, is_new, tags, image_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				brand = EXCLUDED.brand,
				price = EXCLUDED.price,
				sale_price = EXCLUDED.sale_price,
				rating = EXCLUDED.rating,
				review_count = EXCLUDED.review_count,
				in_stock = EXCLUDED.in_stock,
				is_new = EXCLUDED.is_new,
				tags = EXCLUDED.tags,
				image_url = EXCLUDED.image_url
		`, prod.ID, prod.Name, prod.Category, prod.Brand, prod.Price, salePrice, prod.Rating,
			prod.ReviewCount, prod.InStock, prod.IsNew, pq.Array(prod.Tags), prod.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", prod.ID, err)
		}
	}
	return tx.Commit()
}
