package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc product.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{
		uc:     uc,
		logger: log,
	}
}

type resolveRequest struct {
	Selection map[string]any `json:"selection" binding:"required"`
}

// RegisterRoutes mounts the storefront variant API under r.
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	products := r.Group("/products/:ref/variants")
	{
		products.GET("", h.GetVariantView)
		products.GET("/catalog", h.GetAttributeCatalog)
		products.GET("/matrix", h.GetPriceMatrix)
		products.GET("/resolve", h.ResolveVariantQuery)
		products.POST("/resolve", h.ResolveVariant)
	}
}

func (h *HTTPHandler) GetVariantView(c *gin.Context) {
	view, err := h.uc.GetVariantView(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) GetAttributeCatalog(c *gin.Context) {
	catalog, err := h.uc.GetAttributeCatalog(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributes": catalog})
}

func (h *HTTPHandler) GetPriceMatrix(c *gin.Context) {
	matrix, err := h.uc.GetPriceMatrix(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price_matrix": matrix})
}

// POST /products/:ref/variants/resolve {"selection": {"Size": "10ml"}}
func (h *HTTPHandler) ResolveVariant(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		locale := middleware.GetLocale(c.Request.Context())
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": i18n.T(locale, "InvalidRequest", nil),
		})
		return
	}
	h.resolve(c, variant.NewSelection(req.Selection))
}

// GET /products/:ref/variants/resolve?Size=10ml takes the first value of each parameter.
func (h *HTTPHandler) ResolveVariantQuery(c *gin.Context) {
	sel := make(variant.Selection)
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			sel[name] = values[0]
		}
	}
	h.resolve(c, sel)
}

func (h *HTTPHandler) resolve(c *gin.Context, sel variant.Selection) {
	v, err := h.uc.ResolveVariant(c.Request.Context(), c.Param("ref"), sel)
	if err != nil {
		h.writeError(c, err, sel)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"variant":  variant.EntryOf(*v),
		"options":  variant.OptionsOf(*v),
		"in_stock": v.InStock(),
	})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error, sel variant.Selection) {
	locale := middleware.GetLocale(c.Request.Context())

	switch {
	case errors.Is(err, product.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "product_not_found",
			"message": i18n.T(locale, "ProductNotFound", map[string]any{"Product": c.Param("ref")}),
		})
	case errors.Is(err, product.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "variant_not_found",
			"message":   i18n.T(locale, "VariantNotFound", nil),
			"selection": sel,
		})
	case errors.Is(err, product.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "empty_selection",
			"message": i18n.T(locale, "EmptySelection", nil),
		})
	default:
		h.logger.Error("variant request failed",
			zap.String("path", c.FullPath()),
			zap.String("ref", c.Param("ref")),
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": i18n.T(locale, "InternalError", nil),
		})
	}
}
