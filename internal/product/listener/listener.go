package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"go.uber.org/zap"
)

const (
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
	EventVariantCreated = "VariantCreated"
	EventVariantUpdated = "VariantUpdated"
	EventVariantDeleted = "VariantDeleted"
)

// CatalogListener keeps cached variant views and search facets in step with
// catalog changes published by the product service.
type CatalogListener struct {
	consumer broker.Reader
	uc       product.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewCatalogListener(consumer broker.Reader, uc product.UseCase, logger logger.ZapLogger) *CatalogListener {
	return &CatalogListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *CatalogListener) Start(ctx context.Context) {
	l.logger.Info("Starting catalog Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping catalog Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type CatalogEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   CatalogPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type CatalogPayload struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
}

func (l *CatalogListener) processMessage(ctx context.Context, value []byte) {
	var event CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case EventProductUpdated, EventProductDeleted, EventVariantCreated, EventVariantUpdated, EventVariantDeleted:
	default:
		return
	}

	if event.Payload.ProductID == "" {
		l.logger.Warn("Catalog event without product id", zap.String("event_id", event.EventID), zap.String("event_type", event.EventType))
		return
	}

	l.logger.Debug("Processing catalog event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("product_id", event.Payload.ProductID),
	)

	if err := l.uc.RefreshProduct(ctx, event.Payload.ProductID); err != nil {
		l.logger.Error("Failed to refresh product",
			zap.String("event_id", event.EventID),
			zap.String("product_id", event.Payload.ProductID),
			zap.Error(err),
		)
	}
}
