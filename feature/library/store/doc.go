// Package store implements the library persistence boundary on top of GORM.
//
// It backs the four replica tables (users, assets, exif, albums) and the two
// link tables (album_assets, album_users) and exposes the keyed lookups,
// sorted range scans and atomic multi-write transactions the reconciliation
// engine relies on. Upserts use ON CONFLICT clauses so they behave the same
// on SQLite and MySQL.
package store
