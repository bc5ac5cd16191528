package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/defactolounge/lounge-backend/pkg/logger"
	"github.com/defactolounge/lounge-backend/pkg/metrics"
)

const (
	defaultIntentTTL       = 12 * time.Hour
	defaultExpiryBatchSize = 100
)

type intentExpirer interface {
	ExpirePending(ctx context.Context, olderThan time.Time, batchSize int) (int, error)
}

// IntentExpiryJobParams configure the stale payment intent sweep.
type IntentExpiryJobParams struct {
	Logger    *logger.Logger
	Intents   intentExpirer
	TTL       time.Duration
	BatchSize int
	Metrics   *metrics.CronJobMetrics
}

// NewIntentExpiryJob builds the cron job that expires pending payment
// intents the guest abandoned.
func NewIntentExpiryJob(params IntentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Intents == nil {
		return nil, fmt.Errorf("intents service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultIntentTTL
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return &intentExpiryJob{
		logg:      params.Logger,
		intents:   params.Intents,
		ttl:       ttl,
		batchSize: batchSize,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

type intentExpiryJob struct {
	logg      *logger.Logger
	intents   intentExpirer
	ttl       time.Duration
	batchSize int
	metrics   *metrics.CronJobMetrics
	now       func() time.Time
}

func (j *intentExpiryJob) Name() string { return "intent-expiry" }

// Run sweeps batch by batch until a short batch signals the backlog is
// drained. Each batch commits independently, so a failure keeps what
// already expired.
func (j *intentExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)

	var errs []error
	total := 0
	for {
		expired, err := j.intents.ExpirePending(ctx, cutoff, j.batchSize)
		total += expired
		if err != nil {
			errs = append(errs, fmt.Errorf("expire pending intents: %w", err))
			break
		}
		if expired < j.batchSize {
			break
		}
	}

	if j.metrics != nil {
		j.metrics.AddExpired(j.Name(), total)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": total})
	j.logg.Info(logCtx, "intent expiry sweep complete")
	return multierr.Combine(errs...)
}
