package product

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)

	// Active variants of one product, oldest first
	ListActiveVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)

	// Audit support
	ListVariantProducts(ctx context.Context) ([]model.Product, error)
	ListActiveVariantsByProducts(ctx context.Context, productIDs []string) (map[string][]model.ProductVariant, error)
}
