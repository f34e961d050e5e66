package library

import (
	"context"
	"sort"
	"strings"

	"media-replica/feature/library/models"
)

// fakeStore is an in-memory Store with the same ordering contracts as the
// real one, plus per-operation fault injection and copy-on-transaction
// rollback.
type fakeStore struct {
	users       map[string]models.User
	assets      map[int64]models.Asset
	albums      map[int64]models.Album
	albumAssets map[int64]map[int64]struct{}
	albumUsers  map[int64]map[string]struct{}

	nextAssetID int64
	nextAlbumID int64

	failOps map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]models.User{},
		assets:      map[int64]models.Asset{},
		albums:      map[int64]models.Album{},
		albumAssets: map[int64]map[int64]struct{}{},
		albumUsers:  map[int64]map[string]struct{}{},
		nextAssetID: 1,
		nextAlbumID: 1,
		failOps:     map[string]error{},
	}
}

func (f *fakeStore) fail(op string) error {
	return f.failOps[op]
}

func (f *fakeStore) snapshot() *fakeStore {
	c := newFakeStore()
	c.nextAssetID = f.nextAssetID
	c.nextAlbumID = f.nextAlbumID
	for k, v := range f.users {
		c.users[k] = v
	}
	for k, v := range f.assets {
		if v.Exif != nil {
			exif := *v.Exif
			v.Exif = &exif
		}
		c.assets[k] = v
	}
	for k, v := range f.albums {
		c.albums[k] = v
	}
	for k, set := range f.albumAssets {
		cp := map[int64]struct{}{}
		for id := range set {
			cp[id] = struct{}{}
		}
		c.albumAssets[k] = cp
	}
	for k, set := range f.albumUsers {
		cp := map[string]struct{}{}
		for id := range set {
			cp[id] = struct{}{}
		}
		c.albumUsers[k] = cp
	}
	return c
}

func (f *fakeStore) restore(s *fakeStore) {
	f.users = s.users
	f.assets = s.assets
	f.albums = s.albums
	f.albumAssets = s.albumAssets
	f.albumUsers = s.albumUsers
	f.nextAssetID = s.nextAssetID
	f.nextAlbumID = s.nextAlbumID
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := f.fail("Transaction"); err != nil {
		return err
	}
	saved := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(saved)
		return err
	}
	return nil
}

// seed helpers

func (f *fakeStore) seedAsset(a models.Asset) models.Asset {
	if a.ID == 0 {
		a.ID = f.nextAssetID
		f.nextAssetID++
	} else if a.ID >= f.nextAssetID {
		f.nextAssetID = a.ID + 1
	}
	f.assets[a.ID] = a
	return a
}

func (f *fakeStore) seedAlbum(a models.Album, assetIDs []int64, userIDs []string) models.Album {
	if a.ID == 0 {
		a.ID = f.nextAlbumID
		f.nextAlbumID++
	} else if a.ID >= f.nextAlbumID {
		f.nextAlbumID = a.ID + 1
	}
	f.albums[a.ID] = a
	links := map[int64]struct{}{}
	for _, id := range assetIDs {
		links[id] = struct{}{}
	}
	f.albumAssets[a.ID] = links
	users := map[string]struct{}{}
	for _, id := range userIDs {
		users[id] = struct{}{}
	}
	f.albumUsers[a.ID] = users
	return a
}

// reads

func (f *fakeStore) Users(ctx context.Context) ([]models.User, error) {
	if err := f.fail("Users"); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) assetList(keep func(models.Asset) bool, cmp func(a, b models.Asset) int) []models.Asset {
	var out []models.Asset
	for _, a := range f.assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return cmp(out[i], out[j]) < 0 })
	return out
}

func (f *fakeStore) AssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	if err := f.fail("AssetsByOwner"); err != nil {
		return nil, err
	}
	return f.assetList(func(a models.Asset) bool { return a.OwnerID == ownerID }, compareByIdentity), nil
}

func (f *fakeStore) AssetsByOwners(ctx context.Context, ownerIDs []string) ([]models.Asset, error) {
	if err := f.fail("AssetsByOwners"); err != nil {
		return nil, err
	}
	owners := map[string]struct{}{}
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	return f.assetList(func(a models.Asset) bool {
		_, ok := owners[a.OwnerID]
		return ok
	}, compareByIdentity), nil
}

func (f *fakeStore) AssetsByLocalIdentity(ctx context.Context, deviceID, localID string) ([]models.Asset, error) {
	if err := f.fail("AssetsByLocalIdentity"); err != nil {
		return nil, err
	}
	return f.assetList(func(a models.Asset) bool {
		return a.DeviceID == deviceID && a.LocalID == localID
	}, func(a, b models.Asset) int {
		if c := strings.Compare(a.OwnerID, b.OwnerID); c != 0 {
			return c
		}
		return compareByIdentity(a, b)
	}), nil
}

func (f *fakeStore) LocalAssets(ctx context.Context) ([]models.Asset, error) {
	if err := f.fail("LocalAssets"); err != nil {
		return nil, err
	}
	return f.assetList(func(a models.Asset) bool { return a.Local }, func(a, b models.Asset) int {
		if c := strings.Compare(a.DeviceID, b.DeviceID); c != 0 {
			return c
		}
		return strings.Compare(a.LocalID, b.LocalID)
	}), nil
}

func (f *fakeStore) albumList(keep func(models.Album) bool, less func(a, b models.Album) bool) []models.Album {
	var out []models.Album
	for _, a := range f.albums {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (f *fakeStore) RemoteAlbums(ctx context.Context) ([]models.Album, error) {
	if err := f.fail("RemoteAlbums"); err != nil {
		return nil, err
	}
	return f.albumList(func(a models.Album) bool { return a.IsRemote() }, func(a, b models.Album) bool {
		return *a.RemoteID < *b.RemoteID
	}), nil
}

func (f *fakeStore) LocalAlbums(ctx context.Context) ([]models.Album, error) {
	if err := f.fail("LocalAlbums"); err != nil {
		return nil, err
	}
	return f.albumList(func(a models.Album) bool { return a.IsLocal() }, func(a, b models.Album) bool {
		return *a.LocalID < *b.LocalID
	}), nil
}

func (f *fakeStore) AlbumAssets(ctx context.Context, albumID int64) ([]models.Asset, error) {
	if err := f.fail("AlbumAssets"); err != nil {
		return nil, err
	}
	links := f.albumAssets[albumID]
	return f.assetList(func(a models.Asset) bool {
		_, ok := links[a.ID]
		return ok
	}, compareByIdentity), nil
}

func (f *fakeStore) AlbumAssetCount(ctx context.Context, albumID int64) (int, error) {
	if err := f.fail("AlbumAssetCount"); err != nil {
		return 0, err
	}
	return len(f.albumAssets[albumID]), nil
}

func (f *fakeStore) AlbumSharedUsers(ctx context.Context, albumID int64) ([]models.User, error) {
	if err := f.fail("AlbumSharedUsers"); err != nil {
		return nil, err
	}
	var out []models.User
	for id := range f.albumUsers[albumID] {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		} else {
			out = append(out, models.User{ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) AssetsInOtherAlbums(ctx context.Context, albumID int64, assetIDs []int64) ([]models.Asset, error) {
	if err := f.fail("AssetsInOtherAlbums"); err != nil {
		return nil, err
	}
	wanted := map[int64]struct{}{}
	for _, id := range assetIDs {
		wanted[id] = struct{}{}
	}
	linked := map[int64]struct{}{}
	for id, links := range f.albumAssets {
		if id == albumID {
			continue
		}
		for assetID := range links {
			if _, ok := wanted[assetID]; ok {
				linked[assetID] = struct{}{}
			}
		}
	}
	return f.assetList(func(a models.Asset) bool {
		_, ok := linked[a.ID]
		return ok
	}, compareByRowID), nil
}

// writes

func (f *fakeStore) UpsertUsers(ctx context.Context, users []models.User) error {
	if err := f.fail("UpsertUsers"); err != nil {
		return err
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return nil
}

func (f *fakeStore) DeleteUsers(ctx context.Context, ids []string) error {
	if err := f.fail("DeleteUsers"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.users, id)
	}
	return nil
}

func (f *fakeStore) UpsertAssets(ctx context.Context, assets []*models.Asset) error {
	if err := f.fail("UpsertAssets"); err != nil {
		return err
	}
	for _, a := range assets {
		if a.ID == 0 {
			a.ID = f.nextAssetID
			f.nextAssetID++
		}
		if a.Exif != nil {
			a.Exif.AssetID = a.ID
		}
		f.assets[a.ID] = *a
	}
	return nil
}

func (f *fakeStore) DeleteAssets(ctx context.Context, ids []int64) error {
	if err := f.fail("DeleteAssets"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.assets, id)
		for _, links := range f.albumAssets {
			delete(links, id)
		}
		for albumID, album := range f.albums {
			if album.ThumbnailAssetID != nil && *album.ThumbnailAssetID == id {
				album.ThumbnailAssetID = nil
				f.albums[albumID] = album
			}
		}
	}
	return nil
}

func (f *fakeStore) CreateAlbum(ctx context.Context, album *models.Album) error {
	if err := f.fail("CreateAlbum"); err != nil {
		return err
	}
	album.ID = f.nextAlbumID
	f.nextAlbumID++
	f.albums[album.ID] = *album
	f.albumAssets[album.ID] = map[int64]struct{}{}
	f.albumUsers[album.ID] = map[string]struct{}{}
	return nil
}

func (f *fakeStore) UpdateAlbum(ctx context.Context, album *models.Album) error {
	if err := f.fail("UpdateAlbum"); err != nil {
		return err
	}
	f.albums[album.ID] = *album
	return nil
}

func (f *fakeStore) DeleteAlbums(ctx context.Context, ids []int64) error {
	if err := f.fail("DeleteAlbums"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.albums, id)
		delete(f.albumAssets, id)
		delete(f.albumUsers, id)
	}
	return nil
}

func (f *fakeStore) LinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error {
	if err := f.fail("LinkAssets"); err != nil {
		return err
	}
	links := f.albumAssets[albumID]
	if links == nil {
		links = map[int64]struct{}{}
		f.albumAssets[albumID] = links
	}
	for _, id := range assetIDs {
		links[id] = struct{}{}
	}
	return nil
}

func (f *fakeStore) UnlinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error {
	if err := f.fail("UnlinkAssets"); err != nil {
		return err
	}
	for _, id := range assetIDs {
		delete(f.albumAssets[albumID], id)
	}
	return nil
}

func (f *fakeStore) LinkUsers(ctx context.Context, albumID int64, userIDs []string) error {
	if err := f.fail("LinkUsers"); err != nil {
		return err
	}
	users := f.albumUsers[albumID]
	if users == nil {
		users = map[string]struct{}{}
		f.albumUsers[albumID] = users
	}
	for _, id := range userIDs {
		users[id] = struct{}{}
	}
	return nil
}

func (f *fakeStore) UnlinkUsers(ctx context.Context, albumID int64, userIDs []string) error {
	if err := f.fail("UnlinkUsers"); err != nil {
		return err
	}
	for _, id := range userIDs {
		delete(f.albumUsers[albumID], id)
	}
	return nil
}

var _ Store = (*fakeStore)(nil)
