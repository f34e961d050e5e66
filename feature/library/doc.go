// Package library implements the media replica reconciliation engine.
//
// It keeps a local database in step with three sources of truth:
//  1. Remote server: the authoritative users, assets and albums.
//  2. Replica database: the locally persisted copy.
//  3. Device index: the media actually present on this device.
//
// Every pass follows the same shape: fetch a transient snapshot of one
// side, diff it against the replica rows with a single-pass sorted merge
// (core/diff), and apply the computed delta in one transaction. A failed
// transaction discards the delta; the next pass recomputes it from scratch.
//
// An asset can exist remotely, locally, or both. The two presences are
// tracked as independent flags on a single row, so deleting an asset on
// one side never destroys its record of the other.
//
// # Components
//
//   - Syncer: The reconciliation engine itself. Pure diff and merge logic
//     against the Store, serialized by a pass lock.
//   - Runner: Pulls remote and device state and drives the Syncer.
//   - Handler: Exposes the passes over HTTP, collapsing concurrent
//     triggers of the same pass.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - GET  /library/status      : Replica table counts.
//   - POST /library/sync/users  : Refresh the user list.
//   - POST /library/sync/assets : Reconcile the owner's remote assets.
//   - POST /library/sync/albums : Reconcile remote albums.
//   - POST /library/sync/local  : Reconcile the device index (?force=true).
//   - POST /library/sync/run    : All passes in order.
package library
