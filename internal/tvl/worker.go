package tvl

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/goverland-labs/treasury-tvl/internal/metrics"
)

type RefreshWorker struct {
	adapter   *Adapter
	cache     *Cache
	storage   SnapshotStorage
	publisher SnapshotPublisher

	interval time.Duration
}

// NewRefreshWorker creates the worker. Storage and publisher are optional.
func NewRefreshWorker(adapter *Adapter, cache *Cache, storage SnapshotStorage, publisher SnapshotPublisher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		adapter:   adapter,
		cache:     cache,
		storage:   storage,
		publisher: publisher,
		interval:  interval,
	}
}

func (w *RefreshWorker) Start(ctx context.Context) error {
	for {
		w.process(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.interval):
		}
	}
}

func (w *RefreshWorker) process(ctx context.Context) {
	meta := w.adapter.Metadata()

	refreshed := 0
	for chain, kinds := range meta.Chains {
		for _, kind := range kinds {
			if ctx.Err() != nil {
				return
			}

			if err := w.refresh(ctx, chain, kind); err != nil {
				metrics.CollectRefreshError(string(chain), string(kind), errReason(err))
				if errors.Is(err, ErrOutdatedData) {
					w.cache.Remove(chain, kind)
				}
				log.Error().
					Err(err).
					Str("chain", string(chain)).
					Str("kind", string(kind)).
					Msg("refresh snapshot")

				continue
			}

			refreshed++
		}
	}

	log.Info().
		Int("refreshed", refreshed).
		Msg("snapshots refresh finished")
}

func (w *RefreshWorker) refresh(ctx context.Context, chain Chain, kind Kind) error {
	snapshot, err := w.adapter.Snapshot(ctx, chain, kind)
	if err != nil {
		return err
	}

	w.cache.Set(snapshot)
	metrics.CollectSnapshotTokens(string(chain), string(kind), len(snapshot.Balances))
	if snapshot.IndexedAt != nil {
		metrics.CollectIndexedDataAge(string(chain), snapshot.CreatedAt.Sub(*snapshot.IndexedAt))
	}

	if w.storage != nil {
		if err := w.storage.Create(snapshot); err != nil {
			log.Error().Err(err).Str("snapshot", snapshot.ID.String()).Msg("store snapshot")
		}
	}

	if w.publisher != nil {
		if err := w.publisher.Publish(snapshot); err != nil {
			log.Error().Err(err).Str("snapshot", snapshot.ID.String()).Msg("publish snapshot")
		}
	}

	return nil
}

func errReason(err error) string {
	switch {
	case errors.Is(err, ErrOutdatedData):
		return "outdated"
	case errors.Is(err, ErrNoData):
		return "no_data"
	default:
		return "failure"
	}
}
