package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	productColumns = `id, slug, name, description, product_type, variation_attributes, is_active, created_at, updated_at`
	variantColumns = `id, product_id, title, price, compare_price, cost_price, sku, inventory_quantity, variant_options, is_active, created_at, updated_at`
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1 LIMIT 1`, slug)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (*model.Product, error) {
	var product model.Product
	err := r.DB.GetContext(ctx, &product, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) ListActiveVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	// Order matters: the matcher returns the first match.
	query := `
        SELECT ` + variantColumns + `
        FROM product_variants
        WHERE product_id = $1 AND is_active = TRUE
        ORDER BY created_at, id
    `
	variants := []model.ProductVariant{}
	if err := r.DB.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *PGRepository) ListVariantProducts(ctx context.Context) ([]model.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products
        WHERE product_type = $1 AND is_active = TRUE
        ORDER BY created_at, id
    `
	products := []model.Product{}
	if err := r.DB.SelectContext(ctx, &products, query, model.ProductTypeVariable); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) ListActiveVariantsByProducts(ctx context.Context, productIDs []string) (map[string][]model.ProductVariant, error) {
	result := make(map[string][]model.ProductVariant, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
        SELECT `+variantColumns+`
        FROM product_variants
        WHERE product_id IN (?) AND is_active = TRUE
        ORDER BY product_id, created_at, id
    `, productIDs)
	if err != nil {
		return nil, err
	}

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var variants []model.ProductVariant
	if err := r.DB.SelectContext(ctx, &variants, query, args...); err != nil {
		return nil, err
	}

	for _, v := range variants {
		result[v.ProductID] = append(result[v.ProductID], v)
	}
	return result, nil
}
