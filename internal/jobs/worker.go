// Package jobs runs the long-lived background loop that keeps the
// calendar pool topped up with future daily entries.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cubo/internal/generate"
	"cubo/internal/phrase"
)

type RefillWorker struct {
	Store  *phrase.Store
	Runner *generate.Runner
	Log    *zap.Logger

	Interval  time.Duration
	Threshold int
}

func (w *RefillWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RefillWorker) tick(ctx context.Context) {
	today := time.Now().Format(phrase.DateLayout)
	n, err := w.Store.FutureCalendarCount(ctx, today)
	if err != nil {
		w.Log.Warn("refill check failed", zap.Error(err))
		return
	}
	if n >= int64(w.Threshold) {
		return
	}

	w.Log.Info("calendar buffer low, generating", zap.Int64("future_entries", n))
	total, err := w.Runner.Run(ctx)
	if err != nil {
		w.Log.Error("refill generation failed", zap.Error(err))
		return
	}
	w.Log.Info("refill generation done", zap.Int("phrases", total))
}
