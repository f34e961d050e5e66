// Package device abstracts the device-native media index: collections with
// cheap enumeration metadata (name, total count, last modification time) and
// item enumeration with an optional exclusion set and an optional
// time-lower-bound filter.
//
// FSIndex is the built-in implementation over a directory tree, mainly
// useful for self-hosted installs and tests; platform-specific indices
// implement the same Index interface.
package device
