package library

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"media-replica/core/diff"
	"media-replica/feature/library/device"
	"media-replica/feature/library/models"
)

// SyncLocalAlbums reconciles on-device collections against the replica's
// device-origin albums. excludedIDs names device item ids that must never be
// synced; forceRefresh disables the add-only fast path. Returns whether
// anything changed.
func (s *Syncer) SyncLocalAlbums(ctx context.Context, idx device.Index, collections []device.Collection, excludedIDs []string, forceRefresh bool) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}

	collections = diff.SortAndDedup(collections, func(a, b device.Collection) int {
		return strings.Compare(a.ID, b.ID)
	})

	albums, err := s.store.LocalAlbums(ctx)
	if err != nil {
		return false, fmt.Errorf("load device albums: %w", err)
	}

	set := &candidateSet{}

	changed, err := diff.SortedCtx(ctx, collections, albums,
		func(col device.Collection, album models.Album) int {
			return strings.Compare(col.ID, *album.LocalID)
		},
		func(ctx context.Context, col device.Collection, album models.Album) (bool, error) {
			return s.syncLocalAlbum(ctx, idx, col, album, set, excluded, forceRefresh)
		},
		func(ctx context.Context, col device.Collection) error {
			return s.addLocalAlbum(ctx, idx, col, excluded)
		},
		func(ctx context.Context, album models.Album) error {
			return s.removeLocalAlbum(ctx, album, set)
		},
	)
	if err != nil {
		return changed, err
	}

	if s.flushCandidates(ctx, set) {
		changed = true
	}
	return changed, nil
}

// syncLocalAlbum reconciles one collection present on both sides. A surface
// pre-check short-circuits unchanged collections; the add-only fast path
// avoids a full re-scan when growth accounting proves no removals or
// updates occurred.
func (s *Syncer) syncLocalAlbum(ctx context.Context, idx device.Index, col device.Collection, album models.Album, set *candidateSet, excluded map[string]struct{}, forceRefresh bool) (bool, error) {
	count, err := s.store.AlbumAssetCount(ctx, album.ID)
	if err != nil {
		return false, err
	}
	if col.Name == album.Name && col.AssetCount == count && col.ModifiedAt.Equal(album.ModifiedAt) {
		return false, nil
	}

	if len(excluded) == 0 && !forceRefresh {
		done, err := s.syncLocalAlbumFast(ctx, idx, col, album, count)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}

	return s.syncLocalAlbumFull(ctx, idx, col, album, set, excluded)
}

// syncLocalAlbumFast applies an add-only delta when the collection only
// grew: items modified after the album's last known modification time are
// fetched, and if their count exactly accounts for the growth, they are
// added without re-scanning the whole collection. Reports whether the fast
// path applied.
func (s *Syncer) syncLocalAlbumFast(ctx context.Context, idx device.Index, col device.Collection, album models.Album, storedCount int) (bool, error) {
	if col.AssetCount <= storedCount {
		return false, nil
	}

	since := album.ModifiedAt
	items, err := idx.Items(ctx, col.ID, device.ItemOptions{ModifiedAfter: &since})
	if err != nil {
		return false, fmt.Errorf("enumerate new device items: %w", err)
	}
	if len(items) == 0 || len(items) != col.AssetCount-storedCount {
		// Growth accounting failed: removals or updates happened too.
		return false, nil
	}

	added := s.itemsToModels(items)
	existing, toUpsert, err := s.linkWithExistingFromDB(ctx, assetPtrs(added))
	if err != nil {
		return false, err
	}

	updated := album
	updated.Name = col.Name
	updated.ModifiedAt = col.ModifiedAt

	ok := s.commit(ctx, "sync-local-album-fast", func(tx Store) error {
		if err := tx.UpsertAssets(ctx, toUpsert); err != nil {
			return err
		}
		if err := tx.LinkAssets(ctx, updated.ID, assetIDs(existing, toUpsert)); err != nil {
			return err
		}
		return tx.UpdateAlbum(ctx, &updated)
	})
	if ok {
		s.logger.Debug("device album fast-path applied",
			zap.String("collection", col.ID),
			zap.Int("added", len(added)),
		)
	}
	return ok, nil
}

// syncLocalAlbumFull re-diffs the whole collection against the album's
// membership by local id.
func (s *Syncer) syncLocalAlbumFull(ctx context.Context, idx device.Index, col device.Collection, album models.Album, set *candidateSet, excluded map[string]struct{}) (bool, error) {
	items, err := idx.Items(ctx, col.ID, device.ItemOptions{Exclude: excluded})
	if err != nil {
		return false, fmt.Errorf("enumerate device items: %w", err)
	}

	onDevice := diff.SortAndDedup(s.itemsToModels(items), compareByLocalID)
	inDB, err := s.store.AlbumAssets(ctx, album.ID)
	if err != nil {
		return false, err
	}
	inDB = diff.SortAndDedup(inDB, compareByLocalID)

	var (
		toAdd    []*models.Asset
		toUpdate []*models.Asset
		toUnlink []models.Asset
	)
	diff.Sorted(onDevice, inDB, compareByLocalID,
		func(dev, db models.Asset) bool {
			if canUpdate(&db, &dev) {
				toUpdate = append(toUpdate, updatedCopy(&db, &dev))
				return true
			}
			return false
		},
		func(dev models.Asset) {
			a := dev
			toAdd = append(toAdd, &a)
		},
		func(db models.Asset) { toUnlink = append(toUnlink, db) },
	)

	if len(toAdd) == 0 && len(toUpdate) == 0 && len(toUnlink) == 0 &&
		col.Name == album.Name && col.ModifiedAt.Equal(album.ModifiedAt) {
		return false, nil
	}

	existing, toUpsert, err := s.linkWithExistingFromDB(ctx, toAdd)
	if err != nil {
		return false, err
	}

	updated := album
	updated.Name = col.Name
	updated.ModifiedAt = col.ModifiedAt

	ok := s.commit(ctx, "sync-local-album", func(tx Store) error {
		upserts := append(append([]*models.Asset(nil), toUpdate...), toUpsert...)
		if err := tx.UpsertAssets(ctx, upserts); err != nil {
			return err
		}
		if err := tx.UnlinkAssets(ctx, updated.ID, assetIDs(toUnlink, nil)); err != nil {
			return err
		}
		if err := tx.LinkAssets(ctx, updated.ID, assetIDs(existing, toUpsert)); err != nil {
			return err
		}
		return tx.UpdateAlbum(ctx, &updated)
	})
	if !ok {
		return false, nil
	}

	if err := s.queueUnlinkedLocal(ctx, album.ID, toUnlink, set); err != nil {
		return true, err
	}
	return true, nil
}

// addLocalAlbum mirrors a collection that exists only on the device.
func (s *Syncer) addLocalAlbum(ctx context.Context, idx device.Index, col device.Collection, excluded map[string]struct{}) error {
	items, err := idx.Items(ctx, col.ID, device.ItemOptions{Exclude: excluded})
	if err != nil {
		return fmt.Errorf("enumerate device items: %w", err)
	}

	onDevice := diff.SortAndDedup(s.itemsToModels(items), compareByLocalID)
	existing, toUpsert, err := s.linkWithExistingFromDB(ctx, assetPtrs(onDevice))
	if err != nil {
		return err
	}

	localID := col.ID
	album := models.Album{
		LocalID:    &localID,
		Name:       col.Name,
		ModifiedAt: col.ModifiedAt,
	}

	s.commit(ctx, "add-local-album", func(tx Store) error {
		if err := tx.UpsertAssets(ctx, toUpsert); err != nil {
			return err
		}
		if err := tx.CreateAlbum(ctx, &album); err != nil {
			return err
		}
		return tx.LinkAssets(ctx, album.ID, assetIDs(existing, toUpsert))
	})
	return nil
}

// removeLocalAlbum deletes a device-origin album whose collection vanished.
// Members without remote backing may be orphaned; membership in any other
// album keeps them alive.
func (s *Syncer) removeLocalAlbum(ctx context.Context, album models.Album, set *candidateSet) error {
	members, err := s.store.AlbumAssets(ctx, album.ID)
	if err != nil {
		return err
	}

	var candidates []models.Asset
	for _, a := range members {
		if !a.IsRemote() {
			candidates = append(candidates, a)
		}
	}

	ok := s.commit(ctx, "remove-local-album", func(tx Store) error {
		return tx.DeleteAlbums(ctx, []int64{album.ID})
	})
	if !ok {
		return nil
	}

	set.addCandidates(candidates)
	kept, err := s.store.AssetsInOtherAlbums(ctx, album.ID, assetIDs(candidates, nil))
	if err != nil {
		return err
	}
	set.addExisting(kept)
	return nil
}

// queueUnlinkedLocal turns members unlinked from a device album into delete
// candidates unless they are remote-backed or still linked elsewhere.
func (s *Syncer) queueUnlinkedLocal(ctx context.Context, albumID int64, unlinked []models.Asset, set *candidateSet) error {
	var candidates []models.Asset
	for _, a := range unlinked {
		if !a.IsRemote() {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	set.addCandidates(candidates)
	kept, err := s.store.AssetsInOtherAlbums(ctx, albumID, assetIDs(candidates, nil))
	if err != nil {
		return err
	}
	set.addExisting(kept)
	return nil
}

// itemsToModels converts device items into assets owned by the current user
// on this device.
func (s *Syncer) itemsToModels(items []device.Item) []models.Asset {
	out := make([]models.Asset, len(items))
	for i, it := range items {
		out[i] = it.ToModel(s.userID, s.deviceID)
	}
	return out
}
