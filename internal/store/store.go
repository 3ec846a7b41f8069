// Package store keeps profiles, soil types and sounding metadata.
//
// Repository is the contract the workspace and the section compiler use.
// Memory is an in-process table keyed by id; SQLite persists the same data
// in a single database file.
package store

import (
	"errors"
	"time"

	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// ErrNotFound is returned when an id does not exist.
var ErrNotFound = errors.New("not found")

// Sounding is the metadata of an imported sounding and the profile derived
// from it. The measurements themselves are not kept.
type Sounding struct {
	ID              int
	ProfileID       int // 0 when the profile was removed
	Name            string
	FileName        string
	Date            time.Time
	X, Y            float64
	Latitude        float64
	Longitude       float64
	TopElevation    float64
	BottomElevation float64
}

// Repository stores profiles and soil types by integer id.
//
// Implementations return copies: changing a returned profile has no effect
// until it is passed to UpsertProfile. Lists are in ascending id order.
type Repository interface {
	ListProfiles() ([]*soil.Profile, error)
	GetProfile(id int) (*soil.Profile, error)

	// UpsertProfile stores p and returns its id. A profile with ID 0 gets the
	// next free id, one above the highest in use.
	UpsertProfile(p *soil.Profile) (int, error)
	DeleteProfile(id int) error

	// ProfileSources returns the distinct profile source labels, sorted.
	ProfileSources() ([]string, error)

	ListSoilTypes() ([]soil.SoilType, error)
	GetSoilType(id int) (soil.SoilType, error)
	UpsertSoilType(st soil.SoilType) error

	// AddSounding records an imported sounding and returns its id.
	AddSounding(s Sounding) (int, error)
	ListSoundings() ([]Sounding, error)

	// HasSoundingAt reports whether a sounding was already imported at
	// exactly (x, y).
	HasSoundingAt(x, y float64) (bool, error)

	Close() error
}
