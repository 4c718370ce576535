// Package refresh keeps a warm snapshot for the default location so the API
// can answer coordinate-less requests without a round of upstream calls.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terascope/go-disaster-intel/internal/aggregator"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/snapshot"
)

// Aggregator is the slice of the aggregator the refresher needs.
type Aggregator interface {
	Aggregate(ctx context.Context, ref models.Coordinate, opts aggregator.Options) (*models.AggregationResult, error)
}

type Refresher struct {
	agg      Aggregator
	store    *snapshot.Store
	ref      models.Coordinate
	interval time.Duration
	opts     aggregator.Options
	wg       sync.WaitGroup
}

func New(agg Aggregator, store *snapshot.Store, ref models.Coordinate, interval time.Duration, opts aggregator.Options) *Refresher {
	return &Refresher{
		agg:      agg,
		store:    store,
		ref:      ref,
		interval: interval,
		opts:     opts,
	}
}

func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()
	slog.Info("starting refresher", "lat", r.ref.Lat, "lon", r.ref.Lon, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial refresh
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresher shutting down")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	gen := r.store.Begin()

	result, err := r.agg.Aggregate(ctx, r.ref, r.opts)
	if err != nil {
		slog.Error("refresh cycle failed", "generation", gen, "error", err)
		return
	}

	if !r.store.Complete(gen, result) {
		slog.Debug("refresh cycle superseded", "generation", gen)
		return
	}
	slog.Info("snapshot refreshed",
		"generation", gen,
		"hazards", len(result.Disasters),
		"zones", len(result.Zones),
		"routes", len(result.Routes))
}

func (r *Refresher) Stop() {
	r.wg.Wait()
	slog.Info("refresher stopped")
}
