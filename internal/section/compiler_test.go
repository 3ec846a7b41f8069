package section

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/geoprofile/internal/projection"
	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// flat maps longitude to X and latitude to Y unchanged, so paths can be
// written in metres.
type flat struct{}

func (flat) ToPlanar(ll projection.LatLon) projection.Point {
	return projection.Point{X: ll.Lon, Y: ll.Lat}
}

func (flat) ToGeographic(p projection.Point) projection.LatLon {
	return projection.LatLon{Lat: p.Y, Lon: p.X}
}

type profileList []*soil.Profile

func (l profileList) ListProfiles() ([]*soil.Profile, error) {
	return l, nil
}

type failingSource struct{}

func (failingSource) ListProfiles() ([]*soil.Profile, error) {
	return nil, errors.New("database is locked")
}

func profileAt(id int, x, y float64, layers ...soil.Layer) *soil.Profile {
	p := &soil.Profile{ID: id, X: x, Y: y}
	if len(layers) == 0 {
		layers = []soil.Layer{{Top: 0, Bottom: -1, SoilTypeID: 10000}}
	}
	p.SetLayers(layers)
	return p
}

// at builds a path point from planar metres for the flat projection.
func at(x, y float64) projection.LatLon {
	return projection.LatLon{Lat: y, Lon: x}
}

func compileFlat(t *testing.T, profiles profileList, path ...projection.LatLon) *CrossSection {
	t.Helper()
	c := &Compiler{Profiles: profiles, Projection: flat{}}
	cs, err := c.Compile(path)
	require.NoError(t, err)
	return cs
}

var ignoreID = cmpopts.IgnoreFields(CrossSection{}, "ID")

func TestTwoPointSingleProfile(t *testing.T) {
	cs := compileFlat(t, profileList{profileAt(4, 500, 500)}, at(0, 0), at(30, 40))

	want := []Interval{{Start: 0, End: 50, ProfileID: 4}}
	if diff := cmp.Diff(want, cs.Intervals); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 50.0, cs.Length())
	assert.Equal(t, 51, cs.Samples)
	assert.Zero(t, cs.Unmatched)
}

func TestThreeProfilesInLine(t *testing.T) {
	profiles := profileList{
		profileAt(1, 0, 0),
		profileAt(2, 100, 0),
		profileAt(3, 200, 0),
	}
	cs := compileFlat(t, profiles, at(0, 0), at(200, 0))

	// Ties at 50 and 150 go to the lower id
	want := []Interval{
		{Start: 0, End: 51, ProfileID: 1},
		{Start: 51, End: 151, ProfileID: 2},
		{Start: 151, End: 200, ProfileID: 3},
	}
	if diff := cmp.Diff(want, cs.Intervals); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}

	changes := 0
	for i := 1; i < len(cs.Intervals); i++ {
		if cs.Intervals[i].ProfileID != cs.Intervals[i-1].ProfileID {
			changes++
		}
	}
	assert.Equal(t, changes+1, len(cs.Intervals))
	assert.Equal(t, []int{1, 2, 3}, cs.ProfileIDs())
}

func TestMultiSegment(t *testing.T) {
	profiles := profileList{
		profileAt(1, 0, 0, soil.Layer{Top: 0, Bottom: -5, SoilTypeID: 10007}),
		profileAt(2, 100, 100,
			soil.Layer{Top: 1, Bottom: -2, SoilTypeID: 10002},
			soil.Layer{Top: -2, Bottom: -10, SoilTypeID: 10007}),
	}
	cs := compileFlat(t, profiles, at(0, 0), at(100, 0), at(100, 100))

	want := &CrossSection{
		Path: []projection.LatLon{at(0, 0), at(100, 0), at(100, 100)},
		Intervals: []Interval{
			{Start: 0, End: 101, ProfileID: 1},
			{Start: 101, End: 200, ProfileID: 2},
		},
		SoilTypeIDs:  []int{10007, 10002},
		MinElevation: -10,
		MaxElevation: 1,
		Samples:      202,
	}
	if diff := cmp.Diff(want, cs, ignoreID); diff != "" {
		t.Errorf("CrossSection mismatch (-want +got):\n%s", diff)
	}
}

// TestProjectedLengthTruncates checks that the step count follows the
// projected length, so a path that drifts just under a whole metre loses it.
func TestProjectedLengthTruncates(t *testing.T) {
	lat0, lon0 := projection.FromRD(139950, 455000)
	lat1, lon1 := projection.FromRD(140250, 455000)
	path := []projection.LatLon{{Lat: lat0, Lon: lon0}, {Lat: lat1, Lon: lon1}}

	rd := projection.RD{}
	d := projection.Distance(rd.ToPlanar(path[0]), rd.ToPlanar(path[1]))
	require.InDelta(t, 300, d, 0.01)

	c := NewCompiler(profileList{profileAt(1, 140000, 455000)})
	cs, err := c.Compile(path)
	require.NoError(t, err)

	want := float64(int(d))
	assert.Equal(t, want, cs.Length())
	assert.Equal(t, []Interval{{Start: 0, End: want, ProfileID: 1}}, cs.Intervals)
	assert.Equal(t, int(d)+1, cs.Samples)
}

func TestFewerThanTwoPoints(t *testing.T) {
	tests := []struct {
		name string
		path []projection.LatLon
	}{
		{"nil", nil},
		{"single point", []projection.LatLon{at(5, 5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The source is never consulted
			c := &Compiler{Profiles: failingSource{}}
			cs, err := c.Compile(tt.path)
			require.NoError(t, err)
			assert.Empty(t, cs.Intervals)
			assert.Zero(t, cs.Length())
			assert.Len(t, cs.Path, len(tt.path))
		})
	}
}

func TestEmptyCollection(t *testing.T) {
	cs := compileFlat(t, nil, at(0, 0), at(10, 0))

	want := []Interval{{Start: 0, End: 10, ProfileID: NoProfile}}
	if diff := cmp.Diff(want, cs.Intervals); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 11, cs.Unmatched)
	assert.Equal(t, cs.Samples, cs.Unmatched)
	assert.Empty(t, cs.SoilTypeIDs)
	assert.Empty(t, cs.ProfileIDs())
	assert.Zero(t, cs.MinElevation)
	assert.Zero(t, cs.MaxElevation)

	_, ok := cs.At(5)
	assert.False(t, ok)
}

func TestZeroLengthSegment(t *testing.T) {
	profiles := profileList{profileAt(1, 0, 0)}
	cs := compileFlat(t, profiles, at(0, 0), at(0.4, 0), at(20, 0))

	want := []Interval{{Start: 0, End: 19, ProfileID: 1}}
	if diff := cmp.Diff(want, cs.Intervals); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}
}

func TestListError(t *testing.T) {
	c := &Compiler{Profiles: failingSource{}}
	_, err := c.Compile([]projection.LatLon{at(0, 0), at(1, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

// TestFindersAgree compiles the same RD path with both finders
func TestFindersAgree(t *testing.T) {
	var profiles profileList
	id := 1
	for x := 154000.0; x <= 156000; x += 250 {
		for y := 462000.0; y <= 464000; y += 250 {
			lat, lon := projection.FromRD(x, y)
			p := profileAt(id, x, y, soil.Layer{Top: 0, Bottom: -float64(id % 7), SoilTypeID: 10000 + id%10})
			p.Latitude, p.Longitude = lat, lon
			profiles = append(profiles, p)
			id++
		}
	}

	path := []projection.LatLon{
		{Lat: 52.145, Lon: 5.370},
		{Lat: 52.160, Lon: 5.395},
		{Lat: 52.150, Lon: 5.400},
	}

	index, err := (&Compiler{Profiles: profiles, Finder: IndexFinder}).Compile(path)
	require.NoError(t, err)
	linear, err := (&Compiler{Profiles: profiles, Finder: LinearFinder}).Compile(path)
	require.NoError(t, err)

	if diff := cmp.Diff(linear, index, ignoreID); diff != "" {
		t.Errorf("finders disagree (-linear +index):\n%s", diff)
	}
	assert.NotEqual(t, index.ID, linear.ID)
	assert.Greater(t, len(index.Intervals), 1)

	// No gaps and no equal neighbours
	for i := 1; i < len(index.Intervals); i++ {
		assert.Equal(t, index.Intervals[i-1].End, index.Intervals[i].Start)
		assert.NotEqual(t, index.Intervals[i-1].ProfileID, index.Intervals[i].ProfileID)
	}
	assert.Zero(t, index.Intervals[0].Start)
}

func TestCompileCopiesPath(t *testing.T) {
	profiles := profileList{profileAt(1, 0, 0)}
	c := &Compiler{Profiles: profiles, Projection: flat{}}
	cs, err := c.Compile([]projection.LatLon{at(0, 0), at(10, 0)})
	require.NoError(t, err)

	// Path is copied
	path := []projection.LatLon{at(0, 0), at(10, 0)}
	cs2, err := c.Compile(path)
	require.NoError(t, err)
	path[0] = at(99, 99)
	assert.Equal(t, at(0, 0), cs2.Path[0])
	assert.NotEqual(t, cs.ID, cs2.ID)
}

func TestAt(t *testing.T) {
	cs := &CrossSection{Intervals: []Interval{
		{Start: 0, End: 10, ProfileID: 1},
		{Start: 10, End: 25, ProfileID: 2},
	}}

	tests := []struct {
		l    float64
		want int
		ok   bool
	}{
		{0, 1, true},
		{9.9, 1, true},
		{10, 2, true},
		{25, 2, true},
		{25.1, NoProfile, false},
		{-1, NoProfile, false},
	}
	for _, tt := range tests {
		got, ok := cs.At(tt.l)
		if got != tt.want || ok != tt.ok {
			t.Errorf("At(%v) = %d, %v, want %d, %v", tt.l, got, ok, tt.want, tt.ok)
		}
	}
	assert.Equal(t, 15.0, cs.Intervals[1].Length())
}
