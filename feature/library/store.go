package library

import (
	"context"

	"media-replica/feature/library/models"
)

// Store is the persistence boundary of the reconciliation engine. The
// engine assumes all-or-nothing transaction semantics and that writes inside
// one transaction are visible to subsequent reads in the same transaction.
//
// All sorted reads return ascending order by the stated key.
type Store interface {
	// Users returns all users sorted by id.
	Users(ctx context.Context) ([]models.User, error)

	// AssetsByOwner returns the owner's assets sorted by
	// (device, local id, file-modified time).
	AssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error)

	// AssetsByOwners returns assets of all given owners sorted by
	// (owner, device, local id, file-modified time).
	AssetsByOwners(ctx context.Context, ownerIDs []string) ([]models.Asset, error)

	// AssetsByLocalIdentity returns all rows matching (device, local id)
	// across owners, sorted by owner then file-modified time.
	AssetsByLocalIdentity(ctx context.Context, deviceID, localID string) ([]models.Asset, error)

	// LocalAssets returns all assets with the local presence flag set,
	// sorted by (device, local id).
	LocalAssets(ctx context.Context) ([]models.Asset, error)

	// RemoteAlbums returns all remote-origin albums sorted by remote id.
	RemoteAlbums(ctx context.Context) ([]models.Album, error)

	// LocalAlbums returns all device-origin albums sorted by local id.
	LocalAlbums(ctx context.Context) ([]models.Album, error)

	// AlbumAssets returns the album's members sorted by
	// (owner, device, local id, file-modified time).
	AlbumAssets(ctx context.Context, albumID int64) ([]models.Asset, error)

	// AlbumAssetCount returns the number of members without loading them.
	AlbumAssetCount(ctx context.Context, albumID int64) (int, error)

	// AlbumSharedUsers returns the album's member users sorted by user id.
	AlbumSharedUsers(ctx context.Context, albumID int64) ([]models.User, error)

	// AssetsInOtherAlbums returns the subset of the given assets that is
	// linked to at least one album other than albumID, sorted by row id.
	AssetsInOtherAlbums(ctx context.Context, albumID int64, assetIDs []int64) ([]models.Asset, error)

	// UpsertUsers inserts or replaces users by id.
	UpsertUsers(ctx context.Context, users []models.User) error

	// DeleteUsers removes users by id.
	DeleteUsers(ctx context.Context, ids []string) error

	// UpsertAssets writes assets and their exif records. Rows with a zero
	// id are inserted and receive their physical row id; the attached exif
	// record is persisted under that id in the same transaction.
	UpsertAssets(ctx context.Context, assets []*models.Asset) error

	// DeleteAssets removes assets together with their exif records and
	// album links, and clears any album thumbnail reference pointing at
	// them.
	DeleteAssets(ctx context.Context, ids []int64) error

	// CreateAlbum inserts an album including its asset and shared-user
	// links.
	CreateAlbum(ctx context.Context, album *models.Album) error

	// UpdateAlbum replaces the album's scalar attributes. Links are
	// managed through the Link/Unlink operations.
	UpdateAlbum(ctx context.Context, album *models.Album) error

	// DeleteAlbums removes albums and their links.
	DeleteAlbums(ctx context.Context, ids []int64) error

	// LinkAssets adds album->asset links.
	LinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error

	// UnlinkAssets removes album->asset links.
	UnlinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error

	// LinkUsers adds album->user links.
	LinkUsers(ctx context.Context, albumID int64, userIDs []string) error

	// UnlinkUsers removes album->user links.
	UnlinkUsers(ctx context.Context, albumID int64, userIDs []string) error

	// Transaction runs fn against a transactional view of the store. The
	// whole delta commits or none of it does.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
