// Package models defines the persisted entities of the local media replica:
// users, assets, exif metadata and albums, together with the many-to-many
// link tables album_assets and album_users.
//
// The local replica exclusively owns all persisted rows. Remote and
// device-native representations are transient inputs to a reconciliation
// pass and are never retained beyond it.
package models
