package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"media-replica/core/diff"
	"media-replica/feature/library/models"
)

// AssetLoader produces a user's full remote asset list. A nil slice with a
// nil error means "no data available, treat as no-op".
type AssetLoader func(ctx context.Context) ([]models.Asset, error)

// assetScope states which side of a diff is the source of truth. It decides
// what happens to assets found only in the replica.
type assetScope int

const (
	// scopeNeutral: replica-only assets are handed back as removal
	// candidates (album membership diffs).
	scopeNeutral assetScope = iota
	// scopeRemote: the remote list is authoritative for the remote side.
	scopeRemote
	// scopeLocal: the device list is authoritative for the local side.
	scopeLocal
)

// assetDelta is the typed outcome of one asset diff.
type assetDelta struct {
	toAdd    []*models.Asset
	toUpdate []*models.Asset
	toRemove []models.Asset
}

func (d *assetDelta) empty() bool {
	return len(d.toAdd) == 0 && len(d.toUpdate) == 0 && len(d.toRemove) == 0
}

func (d *assetDelta) removeIDs() []int64 {
	ids := make([]int64, len(d.toRemove))
	for i, a := range d.toRemove {
		ids[i] = a.ID
	}
	return ids
}

func (d *assetDelta) upserts() []*models.Asset {
	return append(append([]*models.Asset(nil), d.toAdd...), d.toUpdate...)
}

// diffAssets classifies an incoming asset list against replica rows. Both
// inputs must be sorted by the full identity (owner, device, local id,
// file-modified time).
//
// Replica-only rows are scope-dependent: under scopeRemote a row that still
// carries a remote id was evidently deleted on the server, so the remote
// side is cleared while local presence survives (an update, not a delete);
// rows without local presence are removed outright. scopeLocal mirrors this
// for the device side. scopeNeutral returns every replica-only row as a
// removal candidate and lets the caller decide.
func diffAssets(incoming, inDB []models.Asset, scope assetScope) *assetDelta {
	delta := &assetDelta{}

	diff.Sorted(incoming, inDB, compareByIdentity,
		func(in, db models.Asset) bool {
			if canUpdate(&db, &in) {
				delta.toUpdate = append(delta.toUpdate, updatedCopy(&db, &in))
				return true
			}
			return false
		},
		func(in models.Asset) {
			a := in
			delta.toAdd = append(delta.toAdd, &a)
		},
		func(db models.Asset) {
			switch scope {
			case scopeRemote:
				if db.Local {
					if db.Remote {
						a := db
						a.RemoteID = nil
						a.Remote = false
						delta.toUpdate = append(delta.toUpdate, &a)
					}
					// Pure local rows are not the remote pass's business.
				} else {
					delta.toRemove = append(delta.toRemove, db)
				}
			case scopeLocal:
				if db.Remote {
					if db.Local {
						a := db
						a.Local = false
						delta.toUpdate = append(delta.toUpdate, &a)
					}
				} else {
					delta.toRemove = append(delta.toRemove, db)
				}
			default:
				delta.toRemove = append(delta.toRemove, db)
			}
		},
	)

	return delta
}

// SyncRemoteAssets reconciles one user's full remote asset list against the
// replica. The loader may report "no data available" by returning a nil
// slice, which is a no-op. Returns whether anything changed.
func (s *Syncer) SyncRemoteAssets(ctx context.Context, user models.User, loader AssetLoader) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	remote, err := loader(ctx)
	if err != nil {
		return false, fmt.Errorf("load remote assets: %w", err)
	}
	if remote == nil {
		return false, nil
	}

	for i := range remote {
		remote[i].OwnerID = user.ID
		remote[i].Remote = true
	}
	remote = diff.SortAndDedup(remote, compareByIdentity)

	inDB, err := s.store.AssetsByOwner(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("load replica assets: %w", err)
	}

	delta := diffAssets(remote, inDB, scopeRemote)
	if delta.empty() {
		return false, nil
	}

	ok := s.commit(ctx, "sync-remote-assets", func(tx Store) error {
		if err := tx.DeleteAssets(ctx, delta.removeIDs()); err != nil {
			return err
		}
		return tx.UpsertAssets(ctx, delta.upserts())
	})
	if ok {
		s.logger.Debug("remote assets synced",
			zap.String("user", user.ID),
			zap.Int("added", len(delta.toAdd)),
			zap.Int("updated", len(delta.toUpdate)),
			zap.Int("removed", len(delta.toRemove)),
		)
	}
	return ok, nil
}

// SyncNewAsset folds a single newly discovered asset into the replica. The
// loose-identity match (device, local id, ignoring timestamps) may hit
// several rows; the tie-break prefers a same-owner row with the exact
// file-modified time, then any same-owner row. The heuristic is a
// known-approximate placeholder for content-based matching, kept for
// behavioral compatibility. Returns whether anything was persisted.
func (s *Syncer) SyncNewAsset(ctx context.Context, asset *models.Asset) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	matches, err := s.store.AssetsByLocalIdentity(ctx, asset.DeviceID, asset.LocalID)
	if err != nil {
		return false, fmt.Errorf("match new asset: %w", err)
	}

	match, err := s.pickMatch(matches, asset)
	if err != nil {
		// Ambiguity degrades to "nothing changed this pass".
		s.logger.Warn("ambiguous identity match for new asset",
			zap.String("device", asset.DeviceID),
			zap.String("local_id", asset.LocalID),
			zap.Error(err),
		)
		return false, nil
	}

	var upsert *models.Asset
	switch {
	case match == nil:
		upsert = asset
	case canUpdate(match, asset):
		upsert = updatedCopy(match, asset)
	default:
		return false, nil
	}

	ok := s.commit(ctx, "sync-new-asset", func(tx Store) error {
		return tx.UpsertAssets(ctx, []*models.Asset{upsert})
	})
	return ok, nil
}

// pickMatch applies the two-tier tie-break over loose-identity matches:
// same owner with the exact file-modified time first, then same owner. At
// most one row may satisfy each tier.
func (s *Syncer) pickMatch(matches []models.Asset, asset *models.Asset) (*models.Asset, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	var exact, sameOwner []models.Asset
	for _, m := range matches {
		if m.OwnerID != asset.OwnerID {
			continue
		}
		sameOwner = append(sameOwner, m)
		if m.FileModifiedAt.Equal(asset.FileModifiedAt) {
			exact = append(exact, m)
		}
	}

	switch {
	case len(exact) == 1:
		return &exact[0], nil
	case len(exact) > 1:
		return nil, fmt.Errorf("%d rows share owner and timestamp", len(exact))
	case len(sameOwner) == 1:
		return &sameOwner[0], nil
	case len(sameOwner) > 1:
		return nil, fmt.Errorf("%d rows share owner", len(sameOwner))
	default:
		return nil, nil
	}
}
