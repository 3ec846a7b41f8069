package geoprofile

import (
	"github.com/beetlebugorg/geoprofile/internal/gef"
	"github.com/beetlebugorg/geoprofile/internal/projection"
	"github.com/beetlebugorg/geoprofile/internal/section"
	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// Parsed soundings.
type (
	Sounding    = gef.Sounding
	Sample      = gef.Sample
	Metadata    = gef.Metadata
	FormatError = gef.FormatError
)

// Profiles and soil types.
type (
	Profile  = soil.Profile
	Layer    = soil.Layer
	SoilType = soil.SoilType
	Class    = soil.Class
)

// Cross-sections.
type (
	CrossSection = section.CrossSection
	Interval     = section.Interval
)

// LatLon is a WGS84 position in degrees.
type LatLon = projection.LatLon

// NoProfile marks cross-section coverage without a matching profile.
const NoProfile = section.NoProfile

// Compile converts a sounding into a merged vertical soil profile with bands
// of at least minInterval metres.
func Compile(s *Sounding, minInterval float64) (*Profile, error) {
	return soil.Compile(s, minInterval)
}

// Classify maps a friction ratio [%] to a CUR162 soil type id.
func Classify(frictionRatio float64) int {
	return soil.Classify(frictionRatio)
}

// Classes returns the CUR162 classification table.
func Classes() []Class {
	return soil.Classes()
}

// ToRD converts WGS84 degrees to RD metres.
func ToRD(lat, lon float64) (x, y float64) {
	return projection.ToRD(lat, lon)
}

// FromRD converts RD metres to WGS84 degrees.
func FromRD(x, y float64) (lat, lon float64) {
	return projection.FromRD(x, y)
}
