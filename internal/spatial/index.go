package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/beetlebugorg/geoprofile/internal/projection"
)

// Index provides O(log n) nearest and bounds queries using an R-tree.
//
// Entries are points; the tree stores each as a square of half-size
// Tolerance since the tree requires non-zero extents. Nearest re-ranks the
// tree's candidates by exact distance, so the tolerance never changes which
// entry wins.
//
// Example:
//
//	idx := spatial.NewIndex(entries, spatial.DefaultTolerance)
//	id, ok := idx.Nearest(projection.Point{X: 155000, Y: 463000})
type Index struct {
	rtree     *rtreego.Rtree
	tolerance float64
	size      int
}

// DefaultTolerance is the point half-size for RD coordinates [m].
const DefaultTolerance = 1e-3

type indexedEntry struct {
	entry Entry
	tol   float64
}

// Bounds implements rtreego.Spatial.
func (e *indexedEntry) Bounds() rtreego.Rect {
	return pointRect(e.entry.Point, e.tol)
}

func pointRect(p projection.Point, halfSize float64) rtreego.Rect {
	point := rtreego.Point{p.X - halfSize, p.Y - halfSize}
	lengths := []float64{2 * halfSize, 2 * halfSize}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// NewIndex builds an index over entries. A tolerance <= 0 selects
// DefaultTolerance.
func NewIndex(entries []Entry, tolerance float64) *Index {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	rtree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		rtree.Insert(&indexedEntry{entry: e, tol: tolerance})
	}
	return &Index{rtree: rtree, tolerance: tolerance, size: len(entries)}
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return idx.size
}

// Nearest implements Finder.
func (idx *Index) Nearest(p projection.Point) (int, bool) {
	if idx.size == 0 {
		return 0, false
	}

	first, ok := idx.rtree.NearestNeighbor(rtreego.Point{p.X, p.Y}).(*indexedEntry)
	if !ok || first == nil {
		return 0, false
	}

	// No entry is closer than the tree's answer by more than its box, so every
	// candidate lies within d plus two tolerances.
	d := projection.Distance(p, first.entry.Point)
	halfSize := d + 2*idx.tolerance
	if math.IsInf(halfSize, 0) || math.IsNaN(halfSize) {
		return first.entry.ID, true
	}

	best := first.entry
	bestDist := projection.SquaredDistance(p, best.Point)
	for _, s := range idx.rtree.SearchIntersect(pointRect(p, halfSize)) {
		e := s.(*indexedEntry).entry
		dist := projection.SquaredDistance(p, e.Point)
		if dist < bestDist || (dist == bestDist && e.ID < best.ID) {
			best, bestDist = e, dist
		}
	}
	return best.ID, true
}

// Within returns the ids of entries inside the closed rectangle [min, max],
// ascending.
func (idx *Index) Within(min, max projection.Point) []int {
	if idx.size == 0 || max.X < min.X || max.Y < min.Y {
		return nil
	}

	center := projection.Point{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2}
	point := rtreego.Point{min.X - idx.tolerance, min.Y - idx.tolerance}
	lengths := []float64{
		max.X - min.X + 2*idx.tolerance,
		max.Y - min.Y + 2*idx.tolerance,
	}
	queryRect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		queryRect = pointRect(center, idx.tolerance)
	}

	var ids []int
	for _, s := range idx.rtree.SearchIntersect(queryRect) {
		e := s.(*indexedEntry).entry
		// The query box is padded by the tolerance; keep exact containment
		if inside(e.Point, min, max) {
			ids = append(ids, e.ID)
		}
	}
	sort.Ints(ids)
	return ids
}
