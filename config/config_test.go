package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "first", cfg.Variant.DuplicatePolicy)
	assert.Equal(t, "observed", cfg.Variant.CatalogOrder)
	assert.Equal(t, 5*time.Minute, cfg.Variant.CacheTTL)
	assert.Equal(t, "@every 1h", cfg.Variant.AuditSchedule)
	assert.Equal(t, "catalog.events", cfg.Kafka.Topic)
	assert.Equal(t, "storefront", cfg.Kafka.GroupID)
	assert.True(t, cfg.Elastic.Enabled)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("VARIANT_DUPLICATE_POLICY", "last")
	t.Setenv("VARIANT_CATALOG_ORDER", "declared")
	t.Setenv("VARIANT_CACHE_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ELASTICSEARCH_ENABLED", "false")

	cfg := LoadEnv()

	assert.Equal(t, "last", cfg.Variant.DuplicatePolicy)
	assert.Equal(t, "declared", cfg.Variant.CatalogOrder)
	assert.Equal(t, 90*time.Second, cfg.Variant.CacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Elastic.Enabled)
}

func TestLoadEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("VARIANT_CACHE_TTL", "soon")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "many")

	cfg := LoadEnv()

	assert.Equal(t, 5*time.Minute, cfg.Variant.CacheTTL)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
}
