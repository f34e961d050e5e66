// Package diff provides a generic linear-time classification of two sorted
// sequences into matched pairs and one-sided elements.
//
// It is the foundation of every reconciliation pass in the library feature:
// entity lists from the remote server, the local replica database and the
// on-device media index are sorted by an agreed key and merged in a single
// pass, invoking callbacks for elements present on both sides or on one side
// only.
//
// # Variants
//
// Sorted is the synchronous variant: callbacks never suspend and cannot
// fail. SortedCtx allows callbacks to perform additional I/O (such as
// loading full album details only for albums that actually changed) while
// preserving key ordering.
//
// # Preconditions
//
// Both inputs must be sorted ascending by the supplied comparator and must
// not contain duplicate keys; pairing is undefined otherwise. Callers that
// accumulate lists across multiple passes (delete candidates in particular)
// use SortAndDedup before diffing.
package diff
