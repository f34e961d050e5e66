package library

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"media-replica/core/diff"
	"media-replica/feature/library/models"
	"media-replica/feature/library/remote"
)

// SyncRemoteAlbums reconciles remote album summaries against the replica's
// remote-origin albums. shared selects which population is reconciled:
// shared albums or the user's own. The detail loader is invoked only for
// albums whose summary differs from the replica. Returns whether anything
// changed.
func (s *Syncer) SyncRemoteAlbums(ctx context.Context, summaries []remote.Album, shared bool, loadDetail remote.AlbumDetailLoader) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	albums, err := s.store.RemoteAlbums(ctx)
	if err != nil {
		return false, fmt.Errorf("load replica albums: %w", err)
	}
	filtered := albums[:0]
	for _, a := range albums {
		if a.Shared == shared {
			filtered = append(filtered, a)
		}
	}
	albums = filtered

	set := &candidateSet{}

	changed, err := diff.SortedCtx(ctx, summaries, albums,
		func(dto remote.Album, album models.Album) int {
			return strings.Compare(dto.ID, *album.RemoteID)
		},
		func(ctx context.Context, dto remote.Album, album models.Album) (bool, error) {
			return s.syncRemoteAlbum(ctx, dto, album, set, loadDetail)
		},
		func(ctx context.Context, dto remote.Album) error {
			return s.addAlbumFromServer(ctx, dto, set, loadDetail)
		},
		func(ctx context.Context, album models.Album) error {
			return s.removeRemoteAlbum(ctx, album, set)
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

// hasAlbumChanged is the surface-equality check: a cheap multi-field
// comparison deciding whether the expensive detail fetch and membership diff
// can be skipped. assetCount is compared against the replica's link count.
func (s *Syncer) hasAlbumChanged(ctx context.Context, dto remote.Album, album models.Album) (bool, error) {
	if dto.Name != album.Name || dto.Shared != album.Shared {
		return true, nil
	}
	if !dto.ModifiedAt.Equal(album.ModifiedAt) {
		return true, nil
	}
	if !sameThumbnail(dto.ThumbnailAssetID, album.ThumbnailAssetID) {
		return true, nil
	}
	count, err := s.store.AlbumAssetCount(ctx, album.ID)
	if err != nil {
		return false, err
	}
	if dto.AssetCount != count {
		return true, nil
	}
	users, err := s.store.AlbumSharedUsers(ctx, album.ID)
	if err != nil {
		return false, err
	}
	// The remote payload may repeat a shared user; links never do.
	ids := append([]string(nil), dto.SharedUserIDs...)
	sort.Strings(ids)
	ids = diff.DedupSorted(ids, strings.Compare)
	if len(ids) != len(users) {
		return true, nil
	}
	return false, nil
}

// sameThumbnail compares the remote thumbnail reference against the stored
// weak reference without fetching album detail. When both sides have a
// thumbnail they are accepted as equal: a thumbnail switch always comes with
// a modified-timestamp bump, which the surface check catches separately.
func sameThumbnail(remoteID *string, rowID *int64) bool {
	return (remoteID == nil) == (rowID == nil)
}

// syncRemoteAlbum reconciles one album present on both sides.
func (s *Syncer) syncRemoteAlbum(ctx context.Context, dto remote.Album, album models.Album, set *candidateSet, loadDetail remote.AlbumDetailLoader) (bool, error) {
	changed, err := s.hasAlbumChanged(ctx, dto, album)
	if err != nil {
		return false, err
	}
	if !changed {
		if dto.Shared || album.Shared {
			// Even an untouched shared album pins its foreign members:
			// without this they would look orphaned when another shared
			// album drops them in the same pass.
			members, err := s.store.AlbumAssets(ctx, album.ID)
			if err != nil {
				return false, err
			}
			set.addExisting(s.foreign(members))
		}
		return false, nil
	}

	detail, err := loadDetail(ctx, dto.ID)
	if err != nil || detail == nil {
		s.logger.Warn("album detail unavailable, skipping album",
			zap.String("album", dto.ID), zap.Error(err))
		return false, nil
	}
	if detail.AssetCount != len(detail.Assets) {
		// The detail fetch raced a concurrent remote mutation; applying it
		// would commit partial album state. Benign skip.
		s.logger.Debug("album asset count mismatch, skipping album",
			zap.String("album", dto.ID),
			zap.Int("reported", detail.AssetCount),
			zap.Int("actual", len(detail.Assets)),
		)
		return false, nil
	}

	onRemote := diff.SortAndDedup(remote.ToModels(detail.Assets), compareByIdentity)
	inDB, err := s.store.AlbumAssets(ctx, album.ID)
	if err != nil {
		return false, err
	}

	delta := diffAssets(onRemote, inDB, scopeNeutral)
	toUnlink := delta.toRemove

	existingInDB, toUpsert, err := s.linkWithExistingFromDB(ctx, delta.toAdd)
	if err != nil {
		return false, err
	}

	// Members keeping their link after this pass. The thumbnail may point at
	// any of them, not only at rows the pass touches.
	unlinked := make(map[int64]struct{}, len(toUnlink))
	for _, a := range toUnlink {
		unlinked[a.ID] = struct{}{}
	}
	var kept []models.Asset
	for _, a := range inDB {
		if _, gone := unlinked[a.ID]; !gone {
			kept = append(kept, a)
		}
	}

	usersInDB, err := s.store.AlbumSharedUsers(ctx, album.ID)
	if err != nil {
		return false, err
	}
	usersToLink, usersToUnlink := diffUserIDs(detail.SharedUserIDs, usersInDB)

	updated := album
	updated.Name = detail.Name
	updated.Shared = detail.Shared
	updated.ModifiedAt = detail.ModifiedAt

	ok := s.commit(ctx, "sync-remote-album", func(tx Store) error {
		upserts := append(append([]*models.Asset(nil), delta.toUpdate...), toUpsert...)
		if err := tx.UpsertAssets(ctx, upserts); err != nil {
			return err
		}
		linkIDs := assetIDs(existingInDB, toUpsert)
		if err := tx.UnlinkAssets(ctx, updated.ID, assetIDs(toUnlink, nil)); err != nil {
			return err
		}
		if err := tx.LinkAssets(ctx, updated.ID, linkIDs); err != nil {
			return err
		}
		if err := tx.UnlinkUsers(ctx, updated.ID, usersToUnlink); err != nil {
			return err
		}
		if err := tx.LinkUsers(ctx, updated.ID, usersToLink); err != nil {
			return err
		}
		members := append(append([]models.Asset(nil), kept...), existingInDB...)
		updated.ThumbnailAssetID = resolveThumbnail(detail.ThumbnailAssetID, members, toUpsert, delta.toUpdate)
		return tx.UpdateAlbum(ctx, &updated)
	})
	if !ok {
		return false, nil
	}

	if album.Shared || detail.Shared {
		// Every foreign-owned member still linked after this pass keeps
		// potential orphans alive; every foreign member that just lost its
		// link here may be orphaned.
		var foreignUnlinked []models.Asset
		for _, a := range toUnlink {
			if a.OwnerID != s.userID {
				foreignUnlinked = append(foreignUnlinked, a)
			}
		}
		set.addExisting(s.foreign(kept))
		set.addExisting(s.foreign(existingInDB))
		set.addExisting(s.foreignPtrs(toUpsert))
		set.addCandidates(foreignUnlinked)
	}

	return true, nil
}

// addAlbumFromServer creates an album that exists only remotely.
func (s *Syncer) addAlbumFromServer(ctx context.Context, dto remote.Album, set *candidateSet, loadDetail remote.AlbumDetailLoader) error {
	detail, err := loadDetail(ctx, dto.ID)
	if err != nil || detail == nil {
		s.logger.Warn("album detail unavailable, skipping new album",
			zap.String("album", dto.ID), zap.Error(err))
		return nil
	}
	if detail.AssetCount != len(detail.Assets) {
		s.logger.Debug("album asset count mismatch, skipping new album",
			zap.String("album", dto.ID))
		return nil
	}

	onRemote := diff.SortAndDedup(remote.ToModels(detail.Assets), compareByIdentity)
	existingInDB, toUpsert, err := s.linkWithExistingFromDB(ctx, assetPtrs(onRemote))
	if err != nil {
		return err
	}

	remoteID := detail.ID
	album := models.Album{
		RemoteID:   &remoteID,
		Name:       detail.Name,
		Shared:     detail.Shared,
		ModifiedAt: detail.ModifiedAt,
	}

	ok := s.commit(ctx, "add-remote-album", func(tx Store) error {
		if err := tx.UpsertAssets(ctx, toUpsert); err != nil {
			return err
		}
		album.ThumbnailAssetID = resolveThumbnail(detail.ThumbnailAssetID, existingInDB, toUpsert, nil)
		if err := tx.CreateAlbum(ctx, &album); err != nil {
			return err
		}
		if err := tx.LinkAssets(ctx, album.ID, assetIDs(existingInDB, toUpsert)); err != nil {
			return err
		}
		return tx.LinkUsers(ctx, album.ID, detail.SharedUserIDs)
	})
	if ok && detail.Shared {
		set.addExisting(s.foreign(existingInDB))
		set.addExisting(s.foreignPtrs(toUpsert))
	}
	return nil
}

// removeRemoteAlbum deletes a remote-origin album that no longer exists on
// the server. Foreign-owned members of a shared album become delete
// candidates; they survive if another surviving shared album in this pass
// still references them.
func (s *Syncer) removeRemoteAlbum(ctx context.Context, album models.Album, set *candidateSet) error {
	var foreign []models.Asset
	if album.Shared {
		members, err := s.store.AlbumAssets(ctx, album.ID)
		if err != nil {
			return err
		}
		foreign = s.foreign(members)
	}

	ok := s.commit(ctx, "remove-remote-album", func(tx Store) error {
		return tx.DeleteAlbums(ctx, []int64{album.ID})
	})
	if !ok {
		// The album is still in the replica; its members stay referenced.
		return nil
	}

	set.addCandidates(foreign)
	return nil
}

// linkWithExistingFromDB resolves candidate album members against the store
// by loose identity (owner, device, local id), deliberately ignoring the
// file-modified time: client and server clocks may disagree enough to defeat
// an exact-time comparator. Returns two disjoint lists: rows that already
// exist and can be linked as-is, and records to upsert (either merged copies
// of eligible matches or fresh inserts), both suitable for direct album
// linkage once persisted.
func (s *Syncer) linkWithExistingFromDB(ctx context.Context, candidates []*models.Asset) (existing []models.Asset, toUpsert []*models.Asset, err error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	owners := map[string]struct{}{}
	for _, c := range candidates {
		owners[c.OwnerID] = struct{}{}
	}
	ownerIDs := make([]string, 0, len(owners))
	for id := range owners {
		ownerIDs = append(ownerIDs, id)
	}
	sort.Strings(ownerIDs)

	inDB, err := s.store.AssetsByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve album members: %w", err)
	}
	inDB = diff.DedupSorted(inDB, compareByOwnerDeviceLocalID)

	sorted := diff.SortAndDedup(candidates, func(a, b *models.Asset) int {
		return compareByOwnerDeviceLocalID(*a, *b)
	})

	diff.Sorted(sorted, inDB,
		func(c *models.Asset, db models.Asset) int {
			return compareByOwnerDeviceLocalID(*c, db)
		},
		func(c *models.Asset, db models.Asset) bool {
			if canUpdate(&db, c) {
				toUpsert = append(toUpsert, updatedCopy(&db, c))
				return true
			}
			existing = append(existing, db)
			return false
		},
		func(c *models.Asset) {
			fresh := *c
			fresh.ID = 0
			toUpsert = append(toUpsert, &fresh)
		},
		func(models.Asset) {},
	)

	return existing, toUpsert, nil
}

// foreign filters out assets owned by the current user.
func (s *Syncer) foreign(assets []models.Asset) []models.Asset {
	var out []models.Asset
	for _, a := range assets {
		if a.OwnerID != s.userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Syncer) foreignPtrs(assets []*models.Asset) []models.Asset {
	var out []models.Asset
	for _, a := range assets {
		if a.OwnerID != s.userID {
			out = append(out, *a)
		}
	}
	return out
}

// diffUserIDs classifies shared-user membership into link and unlink sets.
func diffUserIDs(remoteIDs []string, inDB []models.User) (toLink, toUnlink []string) {
	sorted := append([]string(nil), remoteIDs...)
	sort.Strings(sorted)
	sorted = diff.DedupSorted(sorted, strings.Compare)

	diff.Sorted(sorted, inDB,
		func(id string, u models.User) int { return strings.Compare(id, u.ID) },
		func(string, models.User) bool { return false },
		func(id string) { toLink = append(toLink, id) },
		func(u models.User) { toUnlink = append(toUnlink, u.ID) },
	)
	return toLink, toUnlink
}

// resolveThumbnail maps the remote thumbnail reference onto the physical row
// id of the corresponding member. A reference that cannot be resolved is
// cleared rather than left dangling.
func resolveThumbnail(remoteID *string, existing []models.Asset, upserted, updated []*models.Asset) *int64 {
	if remoteID == nil {
		return nil
	}
	match := func(a *models.Asset) *int64 {
		if a.RemoteID != nil && *a.RemoteID == *remoteID && a.ID != 0 {
			id := a.ID
			return &id
		}
		return nil
	}
	for i := range existing {
		if id := match(&existing[i]); id != nil {
			return id
		}
	}
	for _, a := range upserted {
		if id := match(a); id != nil {
			return id
		}
	}
	for _, a := range updated {
		if id := match(a); id != nil {
			return id
		}
	}
	return nil
}

// assetIDs collects the row ids of both lists, skipping unpersisted rows.
func assetIDs(assets []models.Asset, ptrs []*models.Asset) []int64 {
	ids := make([]int64, 0, len(assets)+len(ptrs))
	for _, a := range assets {
		if a.ID != 0 {
			ids = append(ids, a.ID)
		}
	}
	for _, a := range ptrs {
		if a.ID != 0 {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func assetPtrs(assets []models.Asset) []*models.Asset {
	out := make([]*models.Asset, len(assets))
	for i := range assets {
		out[i] = &assets[i]
	}
	return out
}
