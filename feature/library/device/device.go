package device

import (
	"context"
	"io"
	"time"

	"media-replica/feature/library/models"
)

// Collection is the enumeration metadata of one on-device album: enough to
// decide whether anything changed without enumerating items.
type Collection struct {
	// ID is the device-native collection identifier.
	ID string
	// Name is the display name.
	Name string
	// AssetCount is the total number of items currently in the collection.
	AssetCount int
	// ModifiedAt is the collection's last modification time.
	ModifiedAt time.Time
}

// Item is a single media item inside a device collection.
type Item struct {
	// LocalID is the device-native item identifier, unique per device.
	LocalID string
	// FileName is the item's file name.
	FileName string
	// FileModifiedAt is the item's file modification time.
	FileModifiedAt time.Time
}

// ToModel converts a device item into a replica asset owned by the given
// user on the given device. The asset carries local presence only.
func (i Item) ToModel(ownerID, deviceID string) models.Asset {
	return models.Asset{
		OwnerID:        ownerID,
		DeviceID:       deviceID,
		LocalID:        i.LocalID,
		FileName:       i.FileName,
		FileModifiedAt: i.FileModifiedAt,
		UpdatedAt:      i.FileModifiedAt,
		Local:          true,
	}
}

// ItemOptions filters item enumeration.
type ItemOptions struct {
	// ModifiedAfter, when set, restricts enumeration to items modified
	// strictly after the given time (the add-only fast path).
	ModifiedAfter *time.Time
	// Exclude is a set of local ids to skip.
	Exclude map[string]struct{}
}

// Index is the device-native media index: collection enumeration metadata
// plus item enumeration with optional filters.
type Index interface {
	// Collections enumerates all on-device collections.
	Collections(ctx context.Context) ([]Collection, error)

	// Items enumerates the items of one collection, honoring the options.
	Items(ctx context.Context, collectionID string, opts ItemOptions) ([]Item, error)

	// Open returns the content of one item for upload or mirroring.
	Open(ctx context.Context, collectionID, localID string) (io.ReadCloser, error)
}
