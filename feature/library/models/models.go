package models

import (
	"time"
)

// User is a replica of a server-side user account. Users are owned by the
// local replica and mutated only by the user reconciler.
type User struct {
	// ID is the server-assigned user id and the identity key.
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Name  string `gorm:"size:255" json:"name"`
	Email string `gorm:"size:255" json:"email"`

	// UpdatedAt is the server-side modification timestamp.
	UpdatedAt time.Time `json:"updated_at"`

	// SharedBy is true when this user shares their library with the
	// current user.
	SharedBy bool `json:"shared_by"`

	// SharedWith is true when the current user shares their library with
	// this user.
	SharedWith bool `json:"shared_with"`
}

// Asset is a single media item. An asset can be backed by the device media
// index (Local), by the remote server (Remote), or by both once the two
// records have been unified. An asset must never exist with both presence
// flags false.
type Asset struct {
	// ID is the physical row id. It is preserved across updates so album
	// links and the exif row stay attached to the same asset.
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// OwnerID, DeviceID and LocalID together form the primary identity of
	// an asset across local/remote unification.
	OwnerID  string `gorm:"size:36;not null;index:idx_asset_identity,priority:1" json:"owner_id"`
	DeviceID string `gorm:"size:255;index:idx_asset_identity,priority:2" json:"device_id"`
	LocalID  string `gorm:"size:255;index:idx_asset_identity,priority:3" json:"local_id"`

	// RemoteID is the server-assigned id, nil for local-only assets.
	RemoteID *string `gorm:"size:36;index" json:"remote_id"`

	FileName       string    `gorm:"size:255" json:"file_name"`
	FileModifiedAt time.Time `gorm:"index:idx_asset_identity,priority:4" json:"file_modified_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Local and Remote are the presence flags. They are monotone under
	// merge: once an asset is known to exist on a side, a later pass never
	// forgets that side through updatedCopy.
	Local  bool `json:"local"`
	Remote bool `json:"remote"`

	// Exif is the optional embedded metadata record. It shares the asset's
	// physical row id and is written only alongside the asset in the same
	// transaction.
	Exif *Exif `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"exif,omitempty"`
}

// IsRemote reports whether the asset is backed by the remote server.
func (a *Asset) IsRemote() bool { return a.RemoteID != nil }

// Exif holds camera metadata for exactly one asset. Its primary key is the
// owning asset's physical row id.
type Exif struct {
	AssetID int64 `gorm:"primaryKey" json:"asset_id"`

	Make        string     `gorm:"size:255" json:"make"`
	Model       string     `gorm:"size:255" json:"model"`
	ImageWidth  *int       `json:"image_width"`
	ImageHeight *int       `json:"image_height"`
	FileSize    *int64     `json:"file_size"`
	TakenAt     *time.Time `json:"taken_at"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
}

// Album is a collection of assets. Exactly one of RemoteID and LocalID is
// set: RemoteID for albums that originate on the server, LocalID for albums
// mirrored from the device media index.
type Album struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	RemoteID *string `gorm:"size:36;uniqueIndex" json:"remote_id"`
	LocalID  *string `gorm:"size:255;uniqueIndex" json:"local_id"`

	Name       string    `gorm:"size:300" json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Shared     bool      `json:"shared"`

	// ThumbnailAssetID is a weak reference to one member asset. It is a
	// lookup, not an ownership edge, and is cleared when the target asset
	// is removed.
	ThumbnailAssetID *int64 `json:"thumbnail_asset_id"`

	Assets      []Asset `gorm:"many2many:album_assets" json:"assets,omitempty"`
	SharedUsers []User  `gorm:"many2many:album_users" json:"shared_users,omitempty"`
}

// IsRemote reports whether the album originates on the server.
func (a *Album) IsRemote() bool { return a.RemoteID != nil }

// IsLocal reports whether the album mirrors a device collection.
func (a *Album) IsLocal() bool { return a.LocalID != nil }

// All returns the complete list of replica models for schema migration.
func All() []any {
	return []any{&User{}, &Asset{}, &Exif{}, &Album{}}
}
