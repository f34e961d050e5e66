package diff

import (
	"context"
	"sort"
)

// Sorted walks two ascending sequences in a single linear merge pass and
// classifies every element. Both slices must already be sorted by cmp and
// must not contain duplicate keys (use DedupSorted first when a sequence can
// contain duplicates).
//
// For every pair with cmp(a,b) == 0 the both callback is invoked once; its
// return value reports whether the pair constitutes an observable change.
// Unmatched elements are passed to onlyFirst / onlySecond in ascending order.
//
// The returned flag is true if any both callback reported a change or if any
// element was unmatched on either side.
func Sorted[A, B any](
	a []A,
	b []B,
	cmp func(A, B) int,
	both func(A, B) bool,
	onlyFirst func(A),
	onlySecond func(B),
) bool {
	changed := false
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		switch order := cmp(a[i], b[j]); {
		case order == 0:
			if both(a[i], b[j]) {
				changed = true
			}
			i++
			j++
		case order < 0:
			onlyFirst(a[i])
			changed = true
			i++
		default:
			onlySecond(b[j])
			changed = true
			j++
		}
	}

	for ; i < len(a); i++ {
		onlyFirst(a[i])
		changed = true
	}
	for ; j < len(b); j++ {
		onlySecond(b[j])
		changed = true
	}

	return changed
}

// SortedCtx is the suspending variant of Sorted: callbacks receive the
// context and may perform additional I/O (e.g. fetching full album detail
// only for entries that changed). Callbacks are invoked strictly in key
// order and never concurrently; the first error aborts the pass and is
// returned together with the changed-so-far flag.
func SortedCtx[A, B any](
	ctx context.Context,
	a []A,
	b []B,
	cmp func(A, B) int,
	both func(context.Context, A, B) (bool, error),
	onlyFirst func(context.Context, A) error,
	onlySecond func(context.Context, B) error,
) (bool, error) {
	changed := false
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		switch order := cmp(a[i], b[j]); {
		case order == 0:
			pairChanged, err := both(ctx, a[i], b[j])
			if err != nil {
				return changed, err
			}
			if pairChanged {
				changed = true
			}
			i++
			j++
		case order < 0:
			if err := onlyFirst(ctx, a[i]); err != nil {
				return changed, err
			}
			changed = true
			i++
		default:
			if err := onlySecond(ctx, b[j]); err != nil {
				return changed, err
			}
			changed = true
			j++
		}
	}

	for ; i < len(a); i++ {
		if err := onlyFirst(ctx, a[i]); err != nil {
			return changed, err
		}
		changed = true
	}
	for ; j < len(b); j++ {
		if err := onlySecond(ctx, b[j]); err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

// SortAndDedup sorts s by cmp and removes duplicate keys, keeping the first
// occurrence of each key after the (stable) sort. It returns the compacted
// slice, reusing the backing array of s.
func SortAndDedup[T any](s []T, cmp func(T, T) int) []T {
	sort.SliceStable(s, func(i, j int) bool { return cmp(s[i], s[j]) < 0 })
	return DedupSorted(s, cmp)
}

// DedupSorted removes duplicate keys from an already sorted slice, keeping
// the first occurrence of each key. It returns the compacted slice, reusing
// the backing array of s.
func DedupSorted[T any](s []T, cmp func(T, T) int) []T {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if cmp(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}
	return out
}
