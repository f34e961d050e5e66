package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"media-replica/feature/library"
	"media-replica/feature/library/models"
)

// DB is the GORM-backed implementation of the library store.
type DB struct {
	db *gorm.DB
}

var _ library.Store = (*DB)(nil)

// New wraps a GORM connection as a library store.
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// albumAsset is the album<->asset link row.
type albumAsset struct {
	AlbumID int64 `gorm:"primaryKey;column:album_id"`
	AssetID int64 `gorm:"primaryKey;column:asset_id"`
}

func (albumAsset) TableName() string { return "album_assets" }

// albumUser is the album<->user link row.
type albumUser struct {
	AlbumID int64  `gorm:"primaryKey;column:album_id"`
	UserID  string `gorm:"primaryKey;column:user_id;size:36"`
}

func (albumUser) TableName() string { return "album_users" }

func (s *DB) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *DB) AssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("device_id, local_id, file_modified_at").
		Preload("Exif").
		Find(&assets).Error
	return assets, err
}

func (s *DB) AssetsByOwners(ctx context.Context, ownerIDs []string) ([]models.Asset, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("owner_id, device_id, local_id, file_modified_at").
		Preload("Exif").
		Find(&assets).Error
	return assets, err
}

func (s *DB) AssetsByLocalIdentity(ctx context.Context, deviceID, localID string) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND local_id = ?", deviceID, localID).
		Order("owner_id, file_modified_at").
		Preload("Exif").
		Find(&assets).Error
	return assets, err
}

func (s *DB) LocalAssets(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Where("local = ?", true).
		Order("device_id, local_id").
		Find(&assets).Error
	return assets, err
}

func (s *DB) RemoteAlbums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	err := s.db.WithContext(ctx).
		Where("remote_id IS NOT NULL").
		Order("remote_id").
		Find(&albums).Error
	return albums, err
}

func (s *DB) LocalAlbums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	err := s.db.WithContext(ctx).
		Where("local_id IS NOT NULL").
		Order("local_id").
		Find(&albums).Error
	return albums, err
}

func (s *DB) AlbumAssets(ctx context.Context, albumID int64) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Joins("JOIN album_assets ON album_assets.asset_id = assets.id").
		Where("album_assets.album_id = ?", albumID).
		Order("assets.owner_id, assets.device_id, assets.local_id, assets.file_modified_at").
		Preload("Exif").
		Find(&assets).Error
	return assets, err
}

func (s *DB) AlbumAssetCount(ctx context.Context, albumID int64) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&albumAsset{}).
		Where("album_id = ?", albumID).
		Count(&count).Error
	return int(count), err
}

func (s *DB) AlbumSharedUsers(ctx context.Context, albumID int64) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN album_users ON album_users.user_id = users.id").
		Where("album_users.album_id = ?", albumID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

func (s *DB) AssetsInOtherAlbums(ctx context.Context, albumID int64, assetIDs []int64) ([]models.Asset, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Distinct("assets.*").
		Joins("JOIN album_assets ON album_assets.asset_id = assets.id").
		Where("album_assets.album_id <> ? AND album_assets.asset_id IN ?", albumID, assetIDs).
		Order("assets.id").
		Find(&assets).Error
	return assets, err
}

func (s *DB) UpsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&users).Error
}

func (s *DB) DeleteUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("user_id IN ?", ids).Delete(&albumUser{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.User{}).Error
}

func (s *DB) UpsertAssets(ctx context.Context, assets []*models.Asset) error {
	db := s.db.WithContext(ctx)
	for _, a := range assets {
		exif := a.Exif
		a.Exif = nil
		var err error
		if a.ID == 0 {
			err = db.Create(a).Error
		} else {
			err = db.Clauses(clause.OnConflict{UpdateAll: true}).Create(a).Error
		}
		a.Exif = exif
		if err != nil {
			return err
		}
		if exif != nil {
			// The exif row shares the asset's physical row id, which is
			// only known after the asset write.
			exif.AssetID = a.ID
			if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(exif).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *DB) DeleteAssets(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Where("asset_id IN ?", ids).Delete(&models.Exif{}).Error; err != nil {
		return err
	}
	if err := db.Where("asset_id IN ?", ids).Delete(&albumAsset{}).Error; err != nil {
		return err
	}
	// Thumbnail references are weak: clear them instead of leaving them
	// dangling.
	if err := db.Model(&models.Album{}).
		Where("thumbnail_asset_id IN ?", ids).
		Update("thumbnail_asset_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&models.Asset{}).Error
}

func (s *DB) CreateAlbum(ctx context.Context, album *models.Album) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(album).Error; err != nil {
		return err
	}
	var assetIDs []int64
	for _, a := range album.Assets {
		assetIDs = append(assetIDs, a.ID)
	}
	if err := s.LinkAssets(ctx, album.ID, assetIDs); err != nil {
		return err
	}
	var userIDs []string
	for _, u := range album.SharedUsers {
		userIDs = append(userIDs, u.ID)
	}
	return s.LinkUsers(ctx, album.ID, userIDs)
}

func (s *DB) UpdateAlbum(ctx context.Context, album *models.Album) error {
	return s.db.WithContext(ctx).
		Model(&models.Album{ID: album.ID}).
		Select("name", "shared", "modified_at", "thumbnail_asset_id").
		Updates(map[string]any{
			"name":               album.Name,
			"shared":             album.Shared,
			"modified_at":        album.ModifiedAt,
			"thumbnail_asset_id": album.ThumbnailAssetID,
		}).Error
}

func (s *DB) DeleteAlbums(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Where("album_id IN ?", ids).Delete(&albumAsset{}).Error; err != nil {
		return err
	}
	if err := db.Where("album_id IN ?", ids).Delete(&albumUser{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&models.Album{}).Error
}

func (s *DB) LinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error {
	if len(assetIDs) == 0 {
		return nil
	}
	links := make([]albumAsset, len(assetIDs))
	for i, id := range assetIDs {
		links[i] = albumAsset{AlbumID: albumID, AssetID: id}
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (s *DB) UnlinkAssets(ctx context.Context, albumID int64, assetIDs []int64) error {
	if len(assetIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("album_id = ? AND asset_id IN ?", albumID, assetIDs).
		Delete(&albumAsset{}).Error
}

func (s *DB) LinkUsers(ctx context.Context, albumID int64, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	links := make([]albumUser, len(userIDs))
	for i, id := range userIDs {
		links[i] = albumUser{AlbumID: albumID, UserID: id}
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (s *DB) UnlinkUsers(ctx context.Context, albumID int64, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("album_id = ? AND user_id IN ?", albumID, userIDs).
		Delete(&albumUser{}).Error
}

func (s *DB) Transaction(ctx context.Context, fn func(tx library.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{db: tx})
	})
}
