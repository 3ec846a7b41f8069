package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// Memory is a Repository held in process memory. Reads share the lock, so
// concurrent compilations do not block each other.
type Memory struct {
	mu        sync.RWMutex
	profiles  map[int]*soil.Profile
	soilTypes map[int]soil.SoilType
	soundings []Sounding
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[int]*soil.Profile),
		soilTypes: make(map[int]soil.SoilType),
	}
}

func (m *Memory) ListProfiles() ([]*soil.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*soil.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetProfile(id int) (*soil.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *Memory) UpsertProfile(p *soil.Profile) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("upsert profile: nil profile")
	}
	if p.ID < 0 {
		return 0, fmt.Errorf("upsert profile: invalid id %d", p.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := p.Clone()
	if c.ID == 0 {
		c.ID = m.nextProfileID()
	}
	c.MarkClean()
	m.profiles[c.ID] = c
	return c.ID, nil
}

func (m *Memory) nextProfileID() int {
	highest := 0
	for id := range m.profiles {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

func (m *Memory) DeleteProfile(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	delete(m.profiles, id)
	for i := range m.soundings {
		if m.soundings[i].ProfileID == id {
			m.soundings[i].ProfileID = 0
		}
	}
	return nil
}

func (m *Memory) ProfileSources() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var sources []string
	for _, p := range m.profiles {
		if !seen[p.Source] {
			seen[p.Source] = true
			sources = append(sources, p.Source)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func (m *Memory) ListSoilTypes() ([]soil.SoilType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]soil.SoilType, 0, len(m.soilTypes))
	for _, st := range m.soilTypes {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetSoilType(id int) (soil.SoilType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.soilTypes[id]
	if !ok {
		return soil.SoilType{}, fmt.Errorf("soil type %d: %w", id, ErrNotFound)
	}
	return st, nil
}

func (m *Memory) UpsertSoilType(st soil.SoilType) error {
	if st.ID < 1 {
		return fmt.Errorf("upsert soil type: invalid id %d", st.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.soilTypes[st.ID] = st
	return nil
}

func (m *Memory) AddSounding(s Sounding) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ID = len(m.soundings) + 1
	m.soundings = append(m.soundings, s)
	return s.ID, nil
}

func (m *Memory) ListSoundings() ([]Sounding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Sounding(nil), m.soundings...), nil
}

func (m *Memory) HasSoundingAt(x, y float64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.soundings {
		if s.X == x && s.Y == y {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
