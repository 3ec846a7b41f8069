package soil

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/geoprofile/internal/span"
)

// Unassigned is the soil type of a layer inserted by hand before a type is
// chosen.
const Unassigned = -1

var (
	ErrLayerIndex    = errors.New("layer index out of range")
	ErrInvertedLayer = errors.New("layer top must lie above its bottom")
)

// Layer is a horizontal slice of a vertical soil profile. Elevations are in
// metres relative to the reference level, Top > Bottom.
type Layer struct {
	Top        float64
	Bottom     float64
	SoilTypeID int
}

// Thickness returns Top - Bottom.
func (l Layer) Thickness() float64 {
	return l.Top - l.Bottom
}

// MergeLayers coalesces every run of adjacent layers with the same soil type
// into one layer spanning the run. The result never has two neighbours with
// equal SoilTypeID and merging it again returns an equal slice.
func MergeLayers(layers []Layer) []Layer {
	return span.Coalesce(layers,
		func(l Layer) int { return l.SoilTypeID },
		func(run, next Layer) Layer {
			run.Bottom = next.Bottom
			return run
		})
}

// Profile is a vertical soil profile: an ordered stack of layers at one
// planar position. Layers run from the highest to the lowest and are
// contiguous.
//
// Layer edits go through methods so the profile knows it has unsaved
// changes; Dirty reports them until MarkClean is called after a save.
type Profile struct {
	ID        int
	Name      string
	Source    string
	X, Y      float64 // RD coordinates [m]
	Latitude  float64
	Longitude float64

	layers []Layer
	dirty  bool
}

// Layers returns a copy of the layer stack.
func (p *Profile) Layers() []Layer {
	return append([]Layer(nil), p.layers...)
}

// Len returns the number of layers.
func (p *Profile) Len() int {
	return len(p.layers)
}

// Dirty reports whether the layers changed since the last MarkClean.
func (p *Profile) Dirty() bool {
	return p.dirty
}

// MarkClean clears the dirty flag.
func (p *Profile) MarkClean() {
	p.dirty = false
}

// MarkDirty flags the profile for saving without touching its layers, for
// edits of the descriptive fields.
func (p *Profile) MarkDirty() {
	p.dirty = true
}

// SetLayers replaces the whole stack.
func (p *Profile) SetLayers(layers []Layer) {
	p.layers = append([]Layer(nil), layers...)
	p.dirty = true
}

// AddLayer appends a layer below the current stack.
func (p *Profile) AddLayer(top, bottom float64, soilTypeID int) {
	p.layers = append(p.layers, Layer{Top: top, Bottom: bottom, SoilTypeID: soilTypeID})
	p.dirty = true
}

// SetLayerType assigns a soil type to layer i.
func (p *Profile) SetLayerType(i, soilTypeID int) error {
	if i < 0 || i >= len(p.layers) {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(p.layers))
	}
	p.layers[i].SoilTypeID = soilTypeID
	p.dirty = true
	return nil
}

// SetLayerBoundary moves the bottom of layer i and the top of layer i+1 to
// elevation z so the stack stays contiguous.
func (p *Profile) SetLayerBoundary(i int, z float64) error {
	if i < 0 || i >= len(p.layers) {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(p.layers))
	}
	if z >= p.layers[i].Top {
		return fmt.Errorf("%w: layer %d top %.2f, bottom %.2f", ErrInvertedLayer, i, p.layers[i].Top, z)
	}
	if i+1 < len(p.layers) && z <= p.layers[i+1].Bottom {
		return fmt.Errorf("%w: layer %d top %.2f, bottom %.2f", ErrInvertedLayer, i+1, z, p.layers[i+1].Bottom)
	}

	p.layers[i].Bottom = z
	if i+1 < len(p.layers) {
		p.layers[i+1].Top = z
	}
	p.dirty = true
	return nil
}

// InsertLayer inserts an unassigned layer at position i. At the top of a
// non-empty stack the new layer is 1 m thick on top of it, elsewhere it is
// 0.1 m thick and hangs below layer i-1. Layers below keep their elevations
// so the new layer overlaps them until its boundary is set.
func (p *Profile) InsertLayer(i int) error {
	if i < 0 || i > len(p.layers) {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(p.layers))
	}

	var l Layer
	switch {
	case i == 0 && len(p.layers) == 0:
		l = Layer{Top: 0, Bottom: -1}
	case i == 0:
		l = Layer{Top: p.layers[0].Top + 1, Bottom: p.layers[0].Top}
	default:
		top := p.layers[i-1].Bottom
		l = Layer{Top: top, Bottom: top - 0.1}
	}
	l.SoilTypeID = Unassigned

	p.layers = append(p.layers, Layer{})
	copy(p.layers[i+1:], p.layers[i:])
	p.layers[i] = l
	p.dirty = true
	return nil
}

// RemoveLayer deletes layer i.
func (p *Profile) RemoveLayer(i int) error {
	if i < 0 || i >= len(p.layers) {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, len(p.layers))
	}
	p.layers = append(p.layers[:i], p.layers[i+1:]...)
	p.dirty = true
	return nil
}

// Merge applies MergeLayers to the stack. The profile only turns dirty when
// something was merged.
func (p *Profile) Merge() {
	merged := MergeLayers(p.layers)
	if len(merged) != len(p.layers) {
		p.dirty = true
	}
	p.layers = merged
}

// Extent returns the top of the first and the bottom of the last layer. ok is
// false for a profile without layers.
func (p *Profile) Extent() (top, bottom float64, ok bool) {
	if len(p.layers) == 0 {
		return 0, 0, false
	}
	return p.layers[0].Top, p.layers[len(p.layers)-1].Bottom, true
}

// SoilTypeIDs returns the distinct soil types of the stack, top to bottom.
func (p *Profile) SoilTypeIDs() []int {
	seen := make(map[int]bool, len(p.layers))
	var ids []int
	for _, l := range p.layers {
		if !seen[l.SoilTypeID] {
			seen[l.SoilTypeID] = true
			ids = append(ids, l.SoilTypeID)
		}
	}
	return ids
}

// Validate checks that every layer has Top > Bottom and that the stack is
// contiguous.
func (p *Profile) Validate() error {
	for i, l := range p.layers {
		if l.Top <= l.Bottom {
			return fmt.Errorf("%w: layer %d top %.2f, bottom %.2f", ErrInvertedLayer, i, l.Top, l.Bottom)
		}
		if i > 0 && p.layers[i-1].Bottom != l.Top {
			return fmt.Errorf("layer %d top %.2f does not meet layer %d bottom %.2f", i, l.Top, i-1, p.layers[i-1].Bottom)
		}
	}
	return nil
}

// Clone returns a deep copy, dirty flag included.
func (p *Profile) Clone() *Profile {
	c := *p
	c.layers = p.Layers()
	return &c
}
