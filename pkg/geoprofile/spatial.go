package geoprofile

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// Contains returns true if the point (lon, lat) is within the bounds.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// PathBounds returns the bounding box of a path. ok is false for an empty
// path.
func PathBounds(path []LatLon) (b Bounds, ok bool) {
	if len(path) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLon: path[0].Lon,
		MaxLon: path[0].Lon,
		MinLat: path[0].Lat,
		MaxLat: path[0].Lat,
	}
	for _, p := range path[1:] {
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
	}
	return b, true
}

// ProfileBounds returns the bounding box of the profile positions.
func ProfileBounds(profiles []*Profile) (b Bounds, ok bool) {
	path := make([]LatLon, len(profiles))
	for i, p := range profiles {
		path[i] = LatLon{Lat: p.Latitude, Lon: p.Longitude}
	}
	return PathBounds(path)
}
