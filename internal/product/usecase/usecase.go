package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/search"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const FacetIndex = "product_variants"

const facetMapping = `{
	"mappings": {
		"properties": {
			"product_id": { "type": "keyword" },
			"slug": { "type": "keyword" },
			"name": { "type": "text" },
			"attributes": {
				"type": "nested",
				"properties": {
					"name": { "type": "keyword" },
					"values": { "type": "keyword" }
				}
			},
			"min_price": { "type": "scaled_float", "scaling_factor": 100 },
			"max_price": { "type": "scaled_float", "scaling_factor": 100 },
			"in_stock": { "type": "boolean" },
			"updated_at": { "type": "date" }
		}
	}
}`

type Config struct {
	// Which variant wins when two share a combination. Applied to both the
	// matcher and the price matrix so the two paths agree.
	DuplicatePolicy variant.DuplicatePolicy
	// Order catalog attributes by the product's declared list instead of first observed.
	DeclaredOrder bool
	CacheTTL      time.Duration
}

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
	cfg    Config
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger, cfg Config) product.UseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
		cfg:    cfg,
	}
}

func viewCacheKey(productID string) string {
	return fmt.Sprintf("variants:view:%s", productID)
}

func (uc *productUseCase) findProduct(ctx context.Context, ref string) (*model.Product, error) {
	var (
		p   *model.Product
		err error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		p, err = uc.repo.FindByID(ctx, ref)
	} else {
		p, err = uc.repo.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", ref, err)
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, ref string) (*model.Product, error) {
	p, err := uc.findProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	variants, err := uc.repo.ListActiveVariants(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list variants of %s: %w", p.ID, err)
	}
	p.Variants = variants
	return p, nil
}

func (uc *productUseCase) ResolveVariant(ctx context.Context, ref string, sel variant.Selection) (*model.ProductVariant, error) {
	if len(sel) == 0 {
		return nil, product.ErrEmptySelection
	}

	p, err := uc.GetProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	candidates := p.Variants
	if uc.cfg.DuplicatePolicy == variant.LastWins {
		// Scan from the end so the matcher agrees with a last-wins matrix.
		candidates = slices.Clone(candidates)
		slices.Reverse(candidates)
	}

	v, ok := variant.Match(candidates, sel)
	if !ok {
		uc.logger.Debug("no variant for selection",
			zap.String("product_id", p.ID),
			zap.String("key", variant.SelectionKey(sel)),
		)
		return nil, product.ErrVariantNotFound
	}
	return v, nil
}

func (uc *productUseCase) GetPriceMatrix(ctx context.Context, ref string) (variant.PriceMatrix, error) {
	view, err := uc.GetVariantView(ctx, ref)
	if err != nil {
		return nil, err
	}
	return view.PriceMatrix, nil
}

func (uc *productUseCase) GetAttributeCatalog(ctx context.Context, ref string) ([]variant.AttributeValues, error) {
	view, err := uc.GetVariantView(ctx, ref)
	if err != nil {
		return nil, err
	}
	return view.Attributes, nil
}

func (uc *productUseCase) GetVariantView(ctx context.Context, ref string) (*dto.VariantView, error) {
	p, err := uc.findProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	key := viewCacheKey(p.ID)
	if uc.cache != nil {
		var cached dto.CachedView
		found, err := uc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			uc.logger.Warn("failed to read variant view cache", zap.String("key", key), zap.Error(err))
		}
		if found {
			return &dto.VariantView{Product: p, Attributes: cached.Attributes, PriceMatrix: cached.PriceMatrix}, nil
		}
	}

	variants, err := uc.repo.ListActiveVariants(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list variants of %s: %w", p.ID, err)
	}

	built := uc.buildView(p, variants)
	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, key, built, uc.cfg.CacheTTL); err != nil {
			uc.logger.Warn("failed to write variant view cache", zap.String("key", key), zap.Error(err))
		}
	}

	return &dto.VariantView{Product: p, Attributes: built.Attributes, PriceMatrix: built.PriceMatrix}, nil
}

func (uc *productUseCase) buildView(p *model.Product, variants []model.ProductVariant) dto.CachedView {
	for _, dup := range variant.FindDuplicates(variants) {
		uc.logger.Warn("duplicate variant combination",
			zap.String("product_id", p.ID),
			zap.String("key", dup.Key),
			zap.Strings("variant_ids", dup.VariantIDs),
			zap.Stringer("policy", uc.cfg.DuplicatePolicy),
		)
	}

	return dto.CachedView{
		Attributes:  variant.BuildCatalog(variants, uc.catalogOptions(p)...),
		PriceMatrix: variant.BuildMatrix(variants, variant.WithDuplicatePolicy(uc.cfg.DuplicatePolicy)),
	}
}

func (uc *productUseCase) catalogOptions(p *model.Product) []variant.CatalogOption {
	if !uc.cfg.DeclaredOrder {
		return nil
	}
	return []variant.CatalogOption{variant.WithDeclaredOrder(variant.DeclaredAttributes(p.VariationAttributes))}
}

// RefreshProduct drops cached views of a product and reindexes its facets.
func (uc *productUseCase) RefreshProduct(ctx context.Context, productID string) error {
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, viewCacheKey(productID)); err != nil {
			return fmt.Errorf("invalidate view cache: %w", err)
		}
	}

	if uc.es == nil {
		return nil
	}

	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || !p.IsActive {
		return uc.es.Delete(ctx, FacetIndex, productID)
	}

	variants, err := uc.repo.ListActiveVariants(ctx, productID)
	if err != nil {
		return err
	}

	_ = uc.es.CreateIndex(ctx, FacetIndex, facetMapping)
	return uc.es.Index(ctx, FacetIndex, p.ID, uc.facetDocument(p, variants))
}

func (uc *productUseCase) facetDocument(p *model.Product, variants []model.ProductVariant) dto.FacetDocument {
	doc := dto.FacetDocument{
		ProductID:  p.ID,
		Slug:       p.Slug,
		Name:       p.Name,
		Attributes: variant.BuildCatalog(variants, uc.catalogOptions(p)...),
		UpdatedAt:  time.Now(),
	}
	if lo, hi, ok := variant.PriceRange(variants); ok {
		doc.MinPrice, doc.MaxPrice = &lo, &hi
	}
	for i := range variants {
		if variants[i].InStock() {
			doc.InStock = true
			break
		}
	}
	return doc
}

func (uc *productUseCase) AuditDuplicates(ctx context.Context) ([]dto.DuplicateReport, error) {
	products, err := uc.repo.ListVariantProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list variant products: %w", err)
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	byProduct, err := uc.repo.ListActiveVariantsByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	reports := []dto.DuplicateReport{}
	for _, p := range products {
		for _, dup := range variant.FindDuplicates(byProduct[p.ID]) {
			reports = append(reports, dto.DuplicateReport{
				ProductID:  p.ID,
				Slug:       p.Slug,
				Key:        dup.Key,
				VariantIDs: dup.VariantIDs,
			})
			uc.logger.Warn("duplicate variant combination",
				zap.String("product_id", p.ID),
				zap.String("slug", p.Slug),
				zap.String("key", dup.Key),
				zap.Strings("variant_ids", dup.VariantIDs),
			)
		}
	}
	return reports, nil
}
