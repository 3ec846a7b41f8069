// Package spatial answers nearest-point and bounding-box queries over
// profile positions.
//
// Two implementations share the Finder contract: Index, backed by an R-tree,
// and Linear, a plain scan kept as the reference the index is tested
// against. Both resolve distance ties by the lowest id so results never
// depend on insertion order.
package spatial

import (
	"sort"

	"github.com/beetlebugorg/geoprofile/internal/projection"
)

// Entry is an identified position.
type Entry struct {
	ID    int
	Point projection.Point
}

// Finder looks up the entry closest to a point.
type Finder interface {
	// Nearest returns the id of the entry with the smallest squared distance
	// to p, the lowest id on a tie. ok is false when there are no entries.
	Nearest(p projection.Point) (id int, ok bool)
}

// Linear scans every entry on each query.
type Linear struct {
	entries []Entry
}

// NewLinear returns a Linear finder over a copy of entries.
func NewLinear(entries []Entry) *Linear {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Linear{entries: sorted}
}

// Nearest implements Finder.
func (l *Linear) Nearest(p projection.Point) (int, bool) {
	best, id := 0.0, 0
	found := false
	// Entries are sorted by id, so a strict comparison keeps the lowest id
	for _, e := range l.entries {
		d := projection.SquaredDistance(p, e.Point)
		if !found || d < best {
			best, id, found = d, e.ID, true
		}
	}
	return id, found
}

// Within returns the ids of entries inside the closed rectangle [min, max],
// ascending.
func (l *Linear) Within(min, max projection.Point) []int {
	var ids []int
	for _, e := range l.entries {
		if inside(e.Point, min, max) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func inside(p, min, max projection.Point) bool {
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}
