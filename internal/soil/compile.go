package soil

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/beetlebugorg/geoprofile/internal/gef"
)

// SourceCPT labels profiles derived from a sounding.
const SourceCPT = "CPT conversion"

// DefaultMinInterval is the band thickness [m] used by the importers.
const DefaultMinInterval = 0.1

var ErrEmptySounding = errors.New("sounding has no samples")

// Compile converts a sounding into a merged vertical soil profile.
//
// Samples are walked from shallow to deep and gathered into bands. A band is
// closed once its thickness (band top minus the current sample elevation)
// exceeds minInterval, or at the last sample. The band's mean friction ratio
// is classified with Classify and the next band starts at the elevation of
// the sample that closed the previous one. The first band starts at the
// sounding's top elevation. Adjacent bands of equal type are merged.
//
// The returned profile has ID 0 and is dirty; a repository assigns the id.
func Compile(s *gef.Sounding, minInterval float64) (*Profile, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrEmptySounding
	}

	meta := s.Metadata()
	p := &Profile{
		Name:      meta.Name,
		Source:    SourceCPT,
		X:         meta.X,
		Y:         meta.Y,
		Latitude:  meta.Latitude,
		Longitude: meta.Longitude,
	}

	top := meta.TopElevation
	band := make([]float64, 0, 16)
	last := s.Len() - 1
	for i := 0; i <= last; i++ {
		smp := s.At(i)
		band = append(band, smp.FrictionRatio)

		if i == last || top-smp.Elevation > minInterval {
			p.AddLayer(top, smp.Elevation, Classify(stat.Mean(band, nil)))
			top = smp.Elevation
			band = band[:0]
		}
	}

	p.Merge()
	return p, nil
}
