package maintenance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/store"
	"github.com/gurizes/gatewarden/pkg/logger"
	"github.com/gurizes/gatewarden/pkg/metrics"
)

const defaultSchedule = "@hourly"

// Reporter periodically reconciles the per-guild pending counters against
// the live request table and refreshes the pending gauge. Lifecycle
// transitions never touch the counters themselves; this job is the one
// writer that keeps total_pending honest.
type Reporter struct {
	store    store.Store
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// Option customises the Reporter.
type Option func(*Reporter)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Reporter) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(r *Reporter) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// NewReporter constructs a Reporter with sensible defaults.
func NewReporter(st store.Store, opts ...Option) *Reporter {
	r := &Reporter{
		store:    st,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return r
}

// Start registers the reconcile job and launches the scheduler.
func (r *Reporter) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.log.Warn("pending counts reconcile failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule job: %w", err)
	}

	if err := r.RunOnce(context.Background()); err != nil {
		r.log.Warn("pending counts reconcile failed", zap.Error(err))
	}

	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running job to complete.
func (r *Reporter) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce performs a single reconcile pass. Guilds holding a counter record
// but no pending requests are reconciled down to zero. Failures for one guild
// do not stop the others; all errors are reported together.
func (r *Reporter) RunOnce(ctx context.Context) error {
	counts, err := r.store.PendingCounts(ctx)
	if err != nil {
		return fmt.Errorf("maintenance: pending counts: %w", err)
	}

	tracked, err := r.store.StatsGuildIDs(ctx)
	if err != nil {
		return fmt.Errorf("maintenance: stats guild ids: %w", err)
	}
	for _, guildID := range tracked {
		if _, ok := counts[guildID]; !ok {
			counts[guildID] = 0
		}
	}

	var errs error
	for guildID, count := range counts {
		metrics.PendingRequests.WithLabelValues(guildID).Set(float64(count))

		pending := strconv.FormatInt(count, 10)
		if _, err := r.store.UpsertStats(ctx, guildID, store.StatsPatch{TotalPending: &pending}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("guild %s: %w", guildID, err))
			continue
		}

		r.log.Debug("pending counter reconciled",
			zap.String("guild_id", guildID),
			zap.Int64("pending", count))
	}
	return errs
}
