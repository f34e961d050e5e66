package remote

import (
	"context"
	"time"

	"media-replica/feature/library/models"
)

// User is the wire representation of a server user.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	UpdatedAt  time.Time `json:"updatedAt"`
	SharedBy   bool      `json:"sharedBy"`
	SharedWith bool      `json:"sharedWith"`
}

// ToModel converts the wire user into its replica model.
func (u User) ToModel() models.User {
	return models.User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		UpdatedAt:  u.UpdatedAt,
		SharedBy:   u.SharedBy,
		SharedWith: u.SharedWith,
	}
}

// Asset is the wire representation of a server asset.
type Asset struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	DeviceID       string    `json:"deviceId"`
	DeviceAssetID  string    `json:"deviceAssetId"`
	FileName       string    `json:"originalFileName"`
	FileModifiedAt time.Time `json:"fileModifiedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Exif           *Exif     `json:"exifInfo,omitempty"`
}

// Exif is the wire representation of asset metadata.
type Exif struct {
	Make        string     `json:"make"`
	Model       string     `json:"model"`
	ImageWidth  *int       `json:"exifImageWidth"`
	ImageHeight *int       `json:"exifImageHeight"`
	FileSize    *int64     `json:"fileSizeInByte"`
	TakenAt     *time.Time `json:"dateTimeOriginal"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
}

// ToModel converts the wire asset into its replica model. The returned
// asset carries remote presence only; unification with a device-side record
// happens during reconciliation.
func (a Asset) ToModel() models.Asset {
	remoteID := a.ID
	asset := models.Asset{
		OwnerID:        a.OwnerID,
		DeviceID:       a.DeviceID,
		LocalID:        a.DeviceAssetID,
		RemoteID:       &remoteID,
		FileName:       a.FileName,
		FileModifiedAt: a.FileModifiedAt,
		UpdatedAt:      a.UpdatedAt,
		Remote:         true,
	}
	if a.Exif != nil {
		asset.Exif = &models.Exif{
			Make:        a.Exif.Make,
			Model:       a.Exif.Model,
			ImageWidth:  a.Exif.ImageWidth,
			ImageHeight: a.Exif.ImageHeight,
			FileSize:    a.Exif.FileSize,
			TakenAt:     a.Exif.TakenAt,
			Latitude:    a.Exif.Latitude,
			Longitude:   a.Exif.Longitude,
		}
	}
	return asset
}

// ToModels converts a wire asset list.
func ToModels(assets []Asset) []models.Asset {
	out := make([]models.Asset, len(assets))
	for i, a := range assets {
		out[i] = a.ToModel()
	}
	return out
}

// Album is the summary representation of a server album, cheap enough to
// compare against the replica without fetching members.
type Album struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"ownerId"`
	Name             string    `json:"albumName"`
	Shared           bool      `json:"shared"`
	AssetCount       int       `json:"assetCount"`
	ModifiedAt       time.Time `json:"updatedAt"`
	ThumbnailAssetID *string   `json:"albumThumbnailAssetId"`
	SharedUserIDs    []string  `json:"sharedUserIds"`
}

// AlbumDetail is the full representation, fetched on demand for albums
// whose summary differs from the replica.
type AlbumDetail struct {
	Album
	Assets []Asset `json:"assets"`
}

// AlbumDetailLoader fetches the full detail of one album by remote id.
type AlbumDetailLoader func(ctx context.Context, albumID string) (*AlbumDetail, error)
