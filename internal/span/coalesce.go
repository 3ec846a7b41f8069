// Package span merges runs of adjacent elements that share a key.
//
// Both soil layers (keyed by soil type) and cross-section intervals (keyed by
// profile id) are contiguous sequences where neighbours with the same key
// carry no information at their shared boundary. Coalesce collapses them.
package span

// Coalesce returns a new slice in which every run of adjacent items with an
// equal key is replaced by a single item. extend receives the first item of
// the run and a later member and returns the first item stretched to cover
// the member. The input slice is not modified.
//
// Coalesce is idempotent: applying it to its own output returns an equal
// sequence.
//
// Example:
//
//	merged := span.Coalesce(layers,
//	    func(l Layer) int { return l.SoilTypeID },
//	    func(run, next Layer) Layer { run.Bottom = next.Bottom; return run })
func Coalesce[T any, K comparable](items []T, key func(T) K, extend func(run, next T) T) []T {
	if len(items) == 0 {
		return nil
	}

	out := make([]T, 0, len(items))
	run := items[0]
	for _, item := range items[1:] {
		if key(item) == key(run) {
			run = extend(run, item)
			continue
		}
		out = append(out, run)
		run = item
	}
	return append(out, run)
}

// HasAdjacentDuplicates reports whether two neighbouring items share a key.
func HasAdjacentDuplicates[T any, K comparable](items []T, key func(T) K) bool {
	for i := 1; i < len(items); i++ {
		if key(items[i]) == key(items[i-1]) {
			return true
		}
	}
	return false
}
