// Package mirror keeps an object storage copy of the device's local media.
//
// A sweep diffs the replica rows with local presence against the bucket
// listing under a configurable key prefix. Assets missing from the bucket
// are uploaded straight from the device index; objects with no matching
// asset are removed. The diff reuses the same single-pass sorted merge the
// library passes are built on.
//
// # Components
//
//   - Service: Lists, diffs, uploads and prunes bucket objects.
//   - Handler: Exposes the sweep and a status endpoint.
//   - Loader: Registers the feature with the application when enabled.
//
// # HTTP Endpoints
//
//   - GET  /mirror/status : Number of mirrored objects.
//   - POST /mirror/sweep  : Run a sweep and report the outcome.
package mirror
