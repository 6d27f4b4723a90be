package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/metrics"
)

// Reconciler sweeps all open payment intents once.
type Reconciler interface {
	ReconcileAll(ctx context.Context)
}

// ReconcileSweepJob periodically reconciles open intents against their
// providers so payments are picked up even when the buyer never presses the
// manual check button.
type ReconcileSweepJob struct {
	engine   Reconciler
	metrics  *metrics.PaymentMetrics
	interval time.Duration
	stop     chan struct{}
}

func NewReconcileSweepJob(engine Reconciler, m *metrics.PaymentMetrics, interval time.Duration) *ReconcileSweepJob {
	return &ReconcileSweepJob{
		engine:   engine,
		metrics:  m,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *ReconcileSweepJob) Start(ctx context.Context) {
	logger.Info(ctx, "🕐 Starting payment reconcile sweep",
		zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "⏹️ Reconcile sweep stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "⏹️ Reconcile sweep stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *ReconcileSweepJob) Stop() {
	close(j.stop)
}

func (j *ReconcileSweepJob) sweep(ctx context.Context) {
	start := time.Now()
	j.engine.ReconcileAll(ctx)
	j.metrics.ObserveSweep(time.Since(start))
}
