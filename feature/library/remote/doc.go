// Package remote defines the transient wire representations supplied by the
// media server (users, assets, album summaries and album detail) and a thin
// JSON-over-HTTP client fetching them.
//
// Wire records are inputs to exactly one reconciliation pass and are
// converted to replica models at the boundary; they are never persisted as
// such.
package remote
