package audit

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const lockKey = "lock:variants:audit"

// DuplicateAuditTask periodically reports variants that share an option
// combination. With several replicas running, a Redis lock lets only one of
// them audit per tick.
type DuplicateAuditTask struct {
	uc     product.UseCase
	cache  *cache.RedisClient
	logger logger.ZapLogger
	cron   *cron.Cron

	lockTTL time.Duration
	timeout time.Duration
}

func NewDuplicateAuditTask(uc product.UseCase, cache *cache.RedisClient, log logger.ZapLogger) *DuplicateAuditTask {
	return &DuplicateAuditTask{
		uc:      uc,
		cache:   cache,
		logger:  log,
		cron:    cron.New(),
		lockTTL: 10 * time.Minute,
		timeout: 5 * time.Minute,
	}
}

// Start schedules the audit with a standard cron expression or a descriptor such as "@every 1h".
func (t *DuplicateAuditTask) Start(schedule string) error {
	_, err := t.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if _, err := t.Run(ctx); err != nil {
			t.logger.Error("Duplicate variant audit failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	t.logger.Info("Duplicate variant audit scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running audit to finish.
func (t *DuplicateAuditTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

// Run audits once. It returns nil reports without error when another
// instance holds the lock.
func (t *DuplicateAuditTask) Run(ctx context.Context) ([]dto.DuplicateReport, error) {
	if t.cache != nil {
		token := uuid.NewString()
		acquired, err := t.cache.AcquireLock(ctx, lockKey, token, t.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			t.logger.Debug("Duplicate variant audit already running elsewhere")
			return nil, nil
		}
		defer func() {
			if err := t.cache.ReleaseLock(context.Background(), lockKey, token); err != nil {
				t.logger.Warn("Failed to release audit lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	reports, err := t.uc.AuditDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	t.logger.Info("Duplicate variant audit finished",
		zap.Int("duplicates", len(reports)),
		zap.Duration("took", time.Since(start)),
	)
	return reports, nil
}
