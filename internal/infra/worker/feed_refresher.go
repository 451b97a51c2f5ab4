// Package worker holds periodic background jobs.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type FeedSource interface {
	Refresh(ctx context.Context) error
}

// FeedRefresher keeps the social feed cache warm so visitors never pay for
// the upstream round trip.
type FeedRefresher struct {
	source       FeedSource
	tickInterval time.Duration
	log          *zap.Logger
}

func NewFeedRefresher(source FeedSource, interval time.Duration, log *zap.Logger) *FeedRefresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedRefresher{source: source, tickInterval: interval, log: log}
}

// Start refreshes once immediately, then on every tick until ctx is done.
func (w *FeedRefresher) Start(ctx context.Context) {
	w.log.Info("feed refresher started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("feed refresher stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *FeedRefresher) refresh(ctx context.Context) {
	if err := w.source.Refresh(ctx); err != nil {
		w.log.Warn("feed refresh failed", zap.Error(err))
	}
}
