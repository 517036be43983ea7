package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	HeaderRequestID      = "x-request-id"
	HeaderAcceptLanguage = "accept-language"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	localeKey    ctxKey = "locale"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey).(string); ok {
		return val
	}
	return ""
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// GetLocale returns the request locale, "en" when none was sent.
func GetLocale(ctx context.Context) string {
	if val, ok := ctx.Value(localeKey).(string); ok && val != "" {
		return val
	}
	return "en"
}

// ParseLocale picks the preferred tag from an Accept-Language value.
func ParseLocale(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

func ensureRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// ContextInterceptor copies request id and locale from gRPC metadata into the context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var requestID, locale string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get(HeaderRequestID); len(val) > 0 {
				requestID = val[0]
			}
			if val := md.Get(HeaderAcceptLanguage); len(val) > 0 {
				locale = ParseLocale(val[0])
			}
		}
		requestID = ensureRequestID(requestID)

		ctx = WithLocale(WithRequestID(ctx, requestID), locale)
		_ = grpc.SetHeader(ctx, metadata.Pairs(HeaderRequestID, requestID))
		return handler(ctx, req)
	}
}

// GinContext does the same for HTTP requests and echoes the request id.
func GinContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c.GetHeader(HeaderRequestID))
		locale := ParseLocale(c.GetHeader(HeaderAcceptLanguage))

		ctx := WithLocale(WithRequestID(c.Request.Context(), requestID), locale)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

func GinLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", GetRequestID(c.Request.Context())),
		}
		if c.Writer.Status() >= 500 {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}
