// Package section compiles vertical soil profiles along a path into a
// cross-section.
//
// The path is walked in 1 m steps in planar coordinates. Each step takes the
// profile nearest to it, and runs of steps with the same profile become
// intervals measured in metres from the start of the path.
package section

import (
	"github.com/google/uuid"

	"github.com/beetlebugorg/geoprofile/internal/projection"
)

// NoProfile tags path coverage where no profile could be matched.
const NoProfile = -1

// Interval assigns the stretch [Start, End] of the path to a profile.
type Interval struct {
	Start     float64
	End       float64
	ProfileID int
}

// Length returns End - Start.
func (iv Interval) Length() float64 {
	return iv.End - iv.Start
}

// CrossSection is the result of one compilation. It refers to profiles by id
// only; use a repository to resolve them.
type CrossSection struct {
	ID   uuid.UUID
	Path []projection.LatLon

	// Intervals cover [0, Length()] without gaps. No two neighbours share a
	// ProfileID.
	Intervals []Interval

	// SoilTypeIDs lists every soil type of the matched profiles in the
	// order they were first met along the path.
	SoilTypeIDs []int

	// Elevation extent over all matched profiles. Both are zero when no
	// profile was matched.
	MinElevation float64
	MaxElevation float64

	Samples   int // path positions evaluated
	Unmatched int // positions that matched no profile
}

// Length returns the compiled path length [m].
func (cs *CrossSection) Length() float64 {
	if len(cs.Intervals) == 0 {
		return 0
	}
	return cs.Intervals[len(cs.Intervals)-1].End
}

// ProfileIDs returns the distinct matched profile ids in path order.
func (cs *CrossSection) ProfileIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, iv := range cs.Intervals {
		if iv.ProfileID == NoProfile || seen[iv.ProfileID] {
			continue
		}
		seen[iv.ProfileID] = true
		ids = append(ids, iv.ProfileID)
	}
	return ids
}

// At returns the profile id in effect at distance l along the path. An
// interval owns its start; the last interval also owns its end.
func (cs *CrossSection) At(l float64) (int, bool) {
	for i, iv := range cs.Intervals {
		if l >= iv.Start && (l < iv.End || (i == len(cs.Intervals)-1 && l == iv.End)) {
			return iv.ProfileID, iv.ProfileID != NoProfile
		}
	}
	return NoProfile, false
}
