package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type refreshRecorder struct {
	product.UseCase

	mu        sync.Mutex
	refreshed []string
	err       error
}

func (r *refreshRecorder) RefreshProduct(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshed = append(r.refreshed, productID)
	return r.err
}

func (r *refreshRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.refreshed...)
}

type stubReader struct {
	messages chan kafka.Message
	errs     chan error
}

func newStubReader() *stubReader {
	return &stubReader{messages: make(chan kafka.Message, 8), errs: make(chan error, 8)}
}

func (s *stubReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case err := <-s.errs:
		return kafka.Message{}, err
	case msg := <-s.messages:
		return msg, nil
	}
}

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		refresh []string
	}{
		{"variant updated", `{"event_id":"e1","event_type":"VariantUpdated","payload":{"product_id":"p1","variant_id":"v1"}}`, []string{"p1"}},
		{"product deleted", `{"event_id":"e2","event_type":"ProductDeleted","payload":{"product_id":"p2"}}`, []string{"p2"}},
		{"unrelated event", `{"event_id":"e3","event_type":"OrderCreated","payload":{"product_id":"p1"}}`, nil},
		{"missing product", `{"event_id":"e4","event_type":"VariantCreated","payload":{}}`, nil},
		{"garbage", `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &refreshRecorder{}
			l := NewCatalogListener(newStubReader(), uc, logger.NewNop())
			l.processMessage(context.Background(), []byte(tt.value))
			assert.Equal(t, tt.refresh, uc.ids())
		})
	}
}

func TestProcessMessage_LogsRefreshFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	uc := &refreshRecorder{err: errors.New("es down")}
	l := NewCatalogListener(newStubReader(), uc, logger.New(zap.New(core)))

	l.processMessage(context.Background(), []byte(`{"event_id":"e1","event_type":"VariantDeleted","payload":{"product_id":"p1"}}`))

	entries := logs.FilterMessage("Failed to refresh product").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "p1", entries[0].ContextMap()["product_id"])
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	reader := newStubReader()
	uc := &refreshRecorder{}
	l := NewCatalogListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	reader.errs <- errors.New("broker unavailable")
	reader.messages <- kafka.Message{Value: []byte(`{"event_type":"ProductUpdated","payload":{"product_id":"p1"}}`)}
	reader.messages <- kafka.Message{Value: []byte(`{"event_type":"VariantCreated","payload":{"product_id":"p2"}}`)}

	assert.Eventually(t, func() bool { return len(uc.ids()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, uc.ids())
}
