// Package order provides ordering primitives shared by board reordering code.
package order

import "slices"

// ApplyExternalOrder returns a copy of items permuted so that keys follow orderIDs.
//
// Keys missing from orderIDs rank as -1 and therefore sort before every resolved
// key, keeping their original relative order. A nil items, orderIDs or keyOf
// yields an empty slice.
func ApplyExternalOrder[T any, K comparable](items []T, orderIDs []K, keyOf func(T) K) []T {
	if items == nil || orderIDs == nil || keyOf == nil {
		return []T{}
	}
	rank := make(map[K]int, len(orderIDs))
	for idx, id := range orderIDs {
		if _, ok := rank[id]; ok {
			continue
		}
		rank[id] = idx
	}
	rankOf := func(item T) int {
		if idx, ok := rank[keyOf(item)]; ok {
			return idx
		}
		return -1
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return rankOf(a) - rankOf(b)
	})
	return out
}

// MoveWithinSequence returns a copy of seq with the element at from relocated to to.
// Out-of-range indices return an unchanged copy.
func MoveWithinSequence[T any](seq []T, from, to int) []T {
	out := slices.Clone(seq)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, moved)
}

// IndexOf returns the position of the first item whose key equals key, or -1.
func IndexOf[T any, K comparable](items []T, key K, keyOf func(T) K) int {
	if keyOf == nil {
		return -1
	}
	return slices.IndexFunc(items, func(item T) bool {
		return keyOf(item) == key
	})
}
