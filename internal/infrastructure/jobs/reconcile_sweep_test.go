package jobs

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"store-bot.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("development")
	os.Exit(m.Run())
}

type countingReconciler struct {
	calls atomic.Int64
}

func (r *countingReconciler) ReconcileAll(ctx context.Context) {
	r.calls.Add(1)
}

func TestReconcileSweepJob_RunsOnInterval(t *testing.T) {
	r := &countingReconciler{}
	job := NewReconcileSweepJob(r, nil, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return r.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	job.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestReconcileSweepJob_StopsOnContextCancel(t *testing.T) {
	r := &countingReconciler{}
	job := NewReconcileSweepJob(r, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop on context cancel")
	}
}
