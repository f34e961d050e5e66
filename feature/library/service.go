package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Syncer reconciles the remote server, the local replica database and the
// device media index. Asset and album passes share and mutate the same
// tables, so every entry point except SyncUsers is serialized through a
// single pass lock owned by the Syncer instance.
type Syncer struct {
	store  Store
	logger *zap.Logger

	// deviceID identifies this install's device-native media index.
	deviceID string
	// userID is the current (owning) user of this replica.
	userID string

	// lock serializes reconciliation passes. A weighted semaphore of one
	// gives context-aware acquisition.
	lock *semaphore.Weighted
}

// NewSyncer creates a reconciliation engine for the given replica owner and
// device.
func NewSyncer(store Store, logger *zap.Logger, userID, deviceID string) *Syncer {
	return &Syncer{
		store:    store,
		logger:   logger.With(zap.String("component", "syncer")),
		deviceID: deviceID,
		userID:   userID,
		lock:     semaphore.NewWeighted(1),
	}
}

// acquire takes the pass lock, honoring context cancellation.
func (s *Syncer) acquire(ctx context.Context) error {
	if err := s.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	return nil
}

func (s *Syncer) release() {
	s.lock.Release(1)
}

// commit applies a computed delta through the store transaction. A write
// failure is logged and swallowed: the pass reports "no changes" and the
// queued delta is discarded, leaving prior persisted state untouched. The
// next scheduled pass retries from scratch.
func (s *Syncer) commit(ctx context.Context, op string, fn func(tx Store) error) bool {
	if err := s.store.Transaction(ctx, fn); err != nil {
		s.logger.Error("transaction failed, discarding delta",
			zap.String("op", op),
			zap.Error(err),
		)
		return false
	}
	return true
}
