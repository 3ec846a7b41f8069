package geoprofile

import (
	"github.com/beetlebugorg/geoprofile/internal/store"
)

// Repository stores profiles, soil types and sounding records by id. Custom
// implementations can be passed to OpenWorkspace.
type Repository = store.Repository

// SoundingRecord is the stored metadata of an imported sounding.
type SoundingRecord = store.Sounding

// Repository implementations.
type (
	MemoryStore = store.Memory
	SQLiteStore = store.SQLite
)

// ErrNotFound is wrapped by every lookup of a missing profile or soil type.
var ErrNotFound = store.ErrNotFound

// NewMemoryStore returns an empty in-process repository.
func NewMemoryStore() *MemoryStore {
	return store.NewMemory()
}

// OpenSQLite opens or creates a SQLite repository file and brings its
// schema up to date.
//
// Example:
//
//	repo, err := geoprofile.OpenSQLite("profiles.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
func OpenSQLite(path string) (*SQLiteStore, error) {
	return store.OpenSQLite(path)
}
