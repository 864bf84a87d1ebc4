package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/store"
)

// Observer receives the outcome of every pruning run. The metrics collector
// implements it.
type Observer interface {
	ObservePrune(removed int64, err error)
}

// Pruner removes compile records that exceed the configured age or count.
type Pruner struct {
	store  store.Store
	config config.RetentionConfig
	obs    Observer
	logger *slog.Logger
	now    func() time.Time
}

// NewPruner creates a pruner over s. obs may be nil.
func NewPruner(s store.Store, cfg config.RetentionConfig, obs Observer) *Pruner {
	return &Pruner{
		store:  s,
		config: cfg,
		obs:    obs,
		logger: slog.Default().With("component", "store.retention"),
		now:    time.Now,
	}
}

// Prune deletes records older than MaxAge and then all but the MaxRecords
// newest. A zero limit disables its phase. It returns the number of records
// deleted, including those deleted before a failure.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	total, err := p.prune(ctx)
	if p.obs != nil {
		p.obs.ObservePrune(total, err)
	}
	return total, err
}

func (p *Pruner) prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.MaxAge > 0 {
		cutoff := p.now().Add(-p.config.MaxAge)
		deleted, err := p.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
		p.logger.Debug("pruned records by age",
			"deleted_count", deleted,
			"cutoff", cutoff,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.store.DeleteOldest(ctx, p.config.MaxRecords)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
		p.logger.Debug("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if total > 0 {
		p.logger.Info("record pruning completed",
			"total_deleted", total,
			"max_age", p.config.MaxAge,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}
