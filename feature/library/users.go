package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"media-replica/core/diff"
	"media-replica/feature/library/models"
)

// SyncUsers reconciles the full remote user list against the stored users.
// It does not take the pass lock: user rows are independent of asset and
// album state. Returns whether anything changed.
func (s *Syncer) SyncUsers(ctx context.Context, remote []models.User) (bool, error) {
	stored, err := s.store.Users(ctx)
	if err != nil {
		return false, fmt.Errorf("load users: %w", err)
	}

	remote = diff.SortAndDedup(remote, compareUsersByID)

	var (
		toUpsert []models.User
		toDelete []string
	)

	changed := diff.Sorted(remote, stored, compareUsersByID,
		func(r, l models.User) bool {
			if userChanged(r, l) {
				toUpsert = append(toUpsert, r)
				return true
			}
			return false
		},
		func(r models.User) { toUpsert = append(toUpsert, r) },
		func(l models.User) { toDelete = append(toDelete, l.ID) },
	)

	if !changed {
		return false, nil
	}

	ok := s.commit(ctx, "sync-users", func(tx Store) error {
		if err := tx.DeleteUsers(ctx, toDelete); err != nil {
			return err
		}
		return tx.UpsertUsers(ctx, toUpsert)
	})
	if ok {
		s.logger.Debug("users synced",
			zap.Int("upserted", len(toUpsert)),
			zap.Int("deleted", len(toDelete)),
		)
	}
	return ok, nil
}
