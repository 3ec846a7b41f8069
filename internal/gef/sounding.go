package gef

import (
	"time"
)

// Sample is one retained measurement row of a sounding.
type Sample struct {
	Depth          float64 // absolute penetration depth as read [m]
	Elevation      float64 // depth converted to elevation relative to the reference [m]
	ConeResistance float64 // qc [MPa]
	FrictionForce  float64 // fs [MPa]
	FrictionRatio  float64 // Rf [%]
}

// Metadata describes where and when a sounding was taken.
type Metadata struct {
	Name            string
	FileName        string
	Date            time.Time
	X               float64 // RD x [m]
	Y               float64 // RD y [m]
	Latitude        float64
	Longitude       float64
	TopElevation    float64 // declared surface level (#ZID)
	BottomElevation float64 // elevation of the last retained sample
}

// Sounding is a parsed cone penetration test. It is built once by Parse and
// not modified afterwards.
type Sounding struct {
	meta    Metadata
	samples []Sample
}

// NewSounding assembles a sounding from already validated parts, mostly for
// tests and importers of other formats. BottomElevation is derived from the
// last sample.
func NewSounding(meta Metadata, samples []Sample) *Sounding {
	s := &Sounding{meta: meta, samples: append([]Sample(nil), samples...)}
	if n := len(s.samples); n > 0 {
		s.meta.BottomElevation = s.samples[n-1].Elevation
	}
	return s
}

// Metadata returns the sounding's metadata.
func (s *Sounding) Metadata() Metadata {
	return s.meta
}

// Name returns the sounding name (file name without extension).
func (s *Sounding) Name() string {
	return s.meta.Name
}

// Samples returns a copy of the retained samples, shallow to deep.
func (s *Sounding) Samples() []Sample {
	return append([]Sample(nil), s.samples...)
}

// Len returns the number of retained samples.
func (s *Sounding) Len() int {
	return len(s.samples)
}

// At returns the i-th retained sample.
func (s *Sounding) At(i int) Sample {
	return s.samples[i]
}

// SampleAt returns the first sample lying below elevation z, i.e. the
// measurement in effect just under z. ok is false when z is below the
// sounding.
func (s *Sounding) SampleAt(z float64) (Sample, bool) {
	for _, smp := range s.samples {
		if smp.Elevation < z {
			return smp, true
		}
	}
	return Sample{}, false
}
