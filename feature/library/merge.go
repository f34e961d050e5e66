package library

import (
	"strings"

	"media-replica/feature/library/models"
)

// Comparators used to drive the sorted diffs. Each one defines a total
// order; two records compare equal when they denote the same logical item
// in that context.

// compareByOwnerDeviceLocalID is the loose asset identity: owner, device and
// local id, ignoring the file-modified timestamp. Used when resolving
// candidate assets against the store, where client and server clocks may
// disagree enough to defeat an exact-time comparator.
func compareByOwnerDeviceLocalID(a, b models.Asset) int {
	if c := strings.Compare(a.OwnerID, b.OwnerID); c != 0 {
		return c
	}
	if c := strings.Compare(a.DeviceID, b.DeviceID); c != 0 {
		return c
	}
	return strings.Compare(a.LocalID, b.LocalID)
}

// compareByIdentity is the full asset identity: owner, device, local id and
// file-modified time. The timestamp disambiguates local-id collisions.
func compareByIdentity(a, b models.Asset) int {
	if c := compareByOwnerDeviceLocalID(a, b); c != 0 {
		return c
	}
	switch {
	case a.FileModifiedAt.Before(b.FileModifiedAt):
		return -1
	case a.FileModifiedAt.After(b.FileModifiedAt):
		return 1
	default:
		return 0
	}
}

// compareByLocalID orders assets by device local id only, the comparator of
// the device-album full diff.
func compareByLocalID(a, b models.Asset) int {
	return strings.Compare(a.LocalID, b.LocalID)
}

// compareByRowID orders assets by physical row id, used for pure
// delete/update resolution once identity is already established.
func compareByRowID(a, b models.Asset) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

func compareUsersByID(a, b models.User) int {
	return strings.Compare(a.ID, b.ID)
}

// canUpdate reports whether incoming may overwrite existing. incoming must
// represent equal-or-greater information completeness: a remote id or local
// presence the existing record lacks, a newer modification timestamp, or
// exif metadata where none existed.
func canUpdate(existing, incoming *models.Asset) bool {
	if incoming.RemoteID != nil && existing.RemoteID == nil {
		return true
	}
	if incoming.Local && !existing.Local {
		return true
	}
	if incoming.UpdatedAt.After(existing.UpdatedAt) {
		return true
	}
	if incoming.FileModifiedAt.After(existing.FileModifiedAt) {
		return true
	}
	if incoming.Exif != nil && existing.Exif == nil {
		return true
	}
	return false
}

// updatedCopy folds incoming into existing. The result carries incoming's
// attributes but always preserves existing's physical row id, keeps fields
// incoming leaves unset, and takes the union of the presence flags so a
// transient omission on one side never erases known presence.
func updatedCopy(existing, incoming *models.Asset) *models.Asset {
	merged := *incoming
	merged.ID = existing.ID
	merged.Local = existing.Local || incoming.Local
	merged.Remote = existing.Remote || incoming.Remote
	if merged.RemoteID == nil {
		merged.RemoteID = existing.RemoteID
	}
	if merged.LocalID == "" {
		merged.LocalID = existing.LocalID
	}
	if merged.FileName == "" {
		merged.FileName = existing.FileName
	}
	if merged.Exif == nil {
		merged.Exif = existing.Exif
	}
	if merged.Exif != nil {
		exif := *merged.Exif
		exif.AssetID = merged.ID
		merged.Exif = &exif
	}
	return &merged
}

// userChanged reports whether a remote user record observably differs from
// the stored one.
func userChanged(remote, stored models.User) bool {
	return !remote.UpdatedAt.Equal(stored.UpdatedAt) ||
		remote.SharedBy != stored.SharedBy ||
		remote.SharedWith != stored.SharedWith
}
