package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// fakeUseCase serves a single product, "oud-noir", with two variants.
type fakeUseCase struct {
	fail     error
	lastSel  variant.Selection
	variants []model.ProductVariant
}

func newFakeUseCase() *fakeUseCase {
	return &fakeUseCase{
		variants: []model.ProductVariant{
			{
				BaseModel:         model.BaseModel{ID: "v10"},
				ProductID:         "p1",
				Title:             "10ml",
				Price:             decimal.RequireFromString("120000"),
				SKU:               "OUD-10",
				InventoryQuantity: 4,
				VariantOptions:    types.JSONText(`{"Size":"10ml","Concentration":"EDP"}`),
				IsActive:          true,
			},
			{
				BaseModel:      model.BaseModel{ID: "v50"},
				ProductID:      "p1",
				Title:          "50ml",
				Price:          decimal.RequireFromString("350000"),
				SKU:            "OUD-50",
				VariantOptions: types.JSONText(`"{\"Size\":\"50ml\",\"Concentration\":\"EDP\"}"`),
				IsActive:       true,
			},
		},
	}
}

func (f *fakeUseCase) product(ref string) (*model.Product, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if ref != "oud-noir" && ref != "p1" {
		return nil, product.ErrProductNotFound
	}
	return &model.Product{
		BaseModel:   model.BaseModel{ID: "p1"},
		Slug:        "oud-noir",
		Name:        "Oud Noir",
		ProductType: model.ProductTypeVariable,
		IsActive:    true,
		Variants:    f.variants,
	}, nil
}

func (f *fakeUseCase) GetProduct(ctx context.Context, ref string) (*model.Product, error) {
	return f.product(ref)
}

func (f *fakeUseCase) ResolveVariant(ctx context.Context, ref string, sel variant.Selection) (*model.ProductVariant, error) {
	f.lastSel = sel
	if len(sel) == 0 {
		return nil, product.ErrEmptySelection
	}
	p, err := f.product(ref)
	if err != nil {
		return nil, err
	}
	v, ok := variant.Match(p.Variants, sel)
	if !ok {
		return nil, product.ErrVariantNotFound
	}
	return v, nil
}

func (f *fakeUseCase) GetPriceMatrix(ctx context.Context, ref string) (variant.PriceMatrix, error) {
	p, err := f.product(ref)
	if err != nil {
		return nil, err
	}
	return variant.BuildMatrix(p.Variants), nil
}

func (f *fakeUseCase) GetAttributeCatalog(ctx context.Context, ref string) ([]variant.AttributeValues, error) {
	p, err := f.product(ref)
	if err != nil {
		return nil, err
	}
	return variant.BuildCatalog(p.Variants), nil
}

func (f *fakeUseCase) GetVariantView(ctx context.Context, ref string) (*dto.VariantView, error) {
	p, err := f.product(ref)
	if err != nil {
		return nil, err
	}
	return &dto.VariantView{
		Product:     p,
		Attributes:  variant.BuildCatalog(p.Variants),
		PriceMatrix: variant.BuildMatrix(p.Variants),
	}, nil
}

func (f *fakeUseCase) RefreshProduct(ctx context.Context, productID string) error {
	return errors.New("not used")
}

func (f *fakeUseCase) AuditDuplicates(ctx context.Context) ([]dto.DuplicateReport, error) {
	return nil, errors.New("not used")
}
