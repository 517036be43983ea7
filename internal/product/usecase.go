package product

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("no variant for this combination")
	ErrEmptySelection  = errors.New("selection must name at least one attribute")
)

type UseCase interface {
	// ref is a product id or slug
	GetProduct(ctx context.Context, ref string) (*model.Product, error)
	ResolveVariant(ctx context.Context, ref string, sel variant.Selection) (*model.ProductVariant, error)
	GetPriceMatrix(ctx context.Context, ref string) (variant.PriceMatrix, error)
	GetAttributeCatalog(ctx context.Context, ref string) ([]variant.AttributeValues, error)
	GetVariantView(ctx context.Context, ref string) (*dto.VariantView, error)

	RefreshProduct(ctx context.Context, productID string) error
	AuditDuplicates(ctx context.Context) ([]dto.DuplicateReport, error)
}
