package section

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/beetlebugorg/geoprofile/internal/projection"
	"github.com/beetlebugorg/geoprofile/internal/soil"
	"github.com/beetlebugorg/geoprofile/internal/span"
	"github.com/beetlebugorg/geoprofile/internal/spatial"
)

// ProfileSource supplies the profiles a section is compiled from.
type ProfileSource interface {
	ListProfiles() ([]*soil.Profile, error)
}

// FinderFunc builds a nearest-profile finder over profile positions.
type FinderFunc func(entries []spatial.Entry) spatial.Finder

// IndexFinder builds an R-tree finder. It is the default.
func IndexFinder(entries []spatial.Entry) spatial.Finder {
	return spatial.NewIndex(entries, spatial.DefaultTolerance)
}

// LinearFinder builds a scanning finder.
func LinearFinder(entries []spatial.Entry) spatial.Finder {
	return spatial.NewLinear(entries)
}

// Compiler compiles cross-sections. The zero value is not usable; Profiles is
// required. Profile X/Y must be in the planar system of Projection.
type Compiler struct {
	Profiles   ProfileSource
	Projection projection.Projection // nil selects projection.RD
	Finder     FinderFunc            // nil selects IndexFinder
}

// NewCompiler returns a compiler over profiles with the RD projection and the
// R-tree finder.
func NewCompiler(profiles ProfileSource) *Compiler {
	return &Compiler{Profiles: profiles}
}

// Compile walks path and returns the cross-section.
//
// Every segment is sampled at int(length)+1 positions, 1 m apart, from its
// start to its end. A segment shorter than 1 m contributes nothing. The
// profile list is read once at the start, so edits made to the source while
// compiling do not affect the result.
//
// A path of fewer than two points gives an empty section. The only error is
// a failure to list the profiles.
func (c *Compiler) Compile(path []projection.LatLon) (*CrossSection, error) {
	cs := &CrossSection{
		ID:   uuid.New(),
		Path: append([]projection.LatLon(nil), path...),
	}
	if len(path) < 2 {
		return cs, nil
	}

	profiles, err := c.Profiles.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	proj := c.Projection
	if proj == nil {
		proj = projection.RD{}
	}
	newFinder := c.Finder
	if newFinder == nil {
		newFinder = IndexFinder
	}

	w := newWalker(cs, profiles, newFinder)
	for i := 0; i+1 < len(path); i++ {
		w.segment(proj.ToPlanar(path[i]), proj.ToPlanar(path[i+1]))
	}

	cs.Intervals = span.Coalesce(w.intervals,
		func(iv Interval) int { return iv.ProfileID },
		func(run, next Interval) Interval {
			run.End = next.End
			return run
		})
	return cs, nil
}

// walker carries the state of one compilation across segments.
type walker struct {
	cs       *CrossSection
	finder   spatial.Finder
	profiles map[int]*soil.Profile

	length    float64 // cumulative length of the finished segments
	intervals []Interval

	matched bool
	visited map[int]bool // profiles already folded into the extent
	seen    map[int]bool // soil types already listed
}

func newWalker(cs *CrossSection, profiles []*soil.Profile, newFinder FinderFunc) *walker {
	w := &walker{
		cs:       cs,
		profiles: make(map[int]*soil.Profile, len(profiles)),
		visited:  make(map[int]bool),
		seen:     make(map[int]bool),
	}
	entries := make([]spatial.Entry, 0, len(profiles))
	for _, p := range profiles {
		w.profiles[p.ID] = p
		entries = append(entries, spatial.Entry{ID: p.ID, Point: projection.Point{X: p.X, Y: p.Y}})
	}
	w.finder = newFinder(entries)
	return w
}

func (w *walker) segment(a, b projection.Point) {
	steps := int(projection.Distance(a, b))
	if steps == 0 {
		return
	}

	id, prev := NoProfile, 0
	for j := 0; j <= steps; j++ {
		cur := w.match(projection.Point{
			X: a.X + float64(j)*(b.X-a.X)/float64(steps),
			Y: a.Y + float64(j)*(b.Y-a.Y)/float64(steps),
		})

		if j == 0 {
			id = cur
			continue
		}
		if j == steps || cur != id {
			w.intervals = append(w.intervals, Interval{
				Start:     w.length + float64(prev),
				End:       w.length + float64(j),
				ProfileID: id,
			})
			id, prev = cur, j
		}
	}
	w.length += float64(steps)
}

// match finds the nearest profile and records its extent and soil types.
func (w *walker) match(p projection.Point) int {
	w.cs.Samples++

	id, ok := w.finder.Nearest(p)
	if !ok {
		w.cs.Unmatched++
		return NoProfile
	}

	if w.visited[id] {
		return id
	}
	w.visited[id] = true

	prof := w.profiles[id]
	if top, bottom, ok := prof.Extent(); ok {
		if !w.matched {
			w.cs.MaxElevation, w.cs.MinElevation = top, bottom
			w.matched = true
		}
		if top > w.cs.MaxElevation {
			w.cs.MaxElevation = top
		}
		if bottom < w.cs.MinElevation {
			w.cs.MinElevation = bottom
		}
	}
	for _, st := range prof.SoilTypeIDs() {
		if !w.seen[st] {
			w.seen[st] = true
			w.cs.SoilTypeIDs = append(w.cs.SoilTypeIDs, st)
		}
	}
	return id
}
