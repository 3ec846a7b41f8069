// Package projection converts between the Dutch national grid (Rijksdriehoek,
// RD) and WGS-84 latitude/longitude.
//
// Both directions are truncated bivariate polynomial approximations around the
// Amersfoort reference point. They are tuned independently and are not exact
// inverses: a round trip through ToRD and FromRD drifts by a few centimetres
// inside the Netherlands and by an unspecified (but deterministic) amount far
// outside it.
package projection

import "math"

// Reference point of the RD grid (Amersfoort).
const (
	X0      = 155000.0
	Y0      = 463000.0
	Phi0    = 52.15517440
	Lambda0 = 5.38720621
)

// LatLon is a geographic position in decimal degrees (WGS-84).
type LatLon struct {
	Lat float64
	Lon float64
}

// Point is a planar RD position in metres.
type Point struct {
	X float64
	Y float64
}

// Projection converts between planar grid coordinates and geographic
// coordinates.
type Projection interface {
	// ToPlanar converts a geographic position to planar grid coordinates.
	ToPlanar(p LatLon) Point

	// ToGeographic converts planar grid coordinates to a geographic position.
	ToGeographic(p Point) LatLon
}

// RD implements Projection with the fixed RD coefficient tables.
type RD struct{}

// ToPlanar implements Projection.
func (RD) ToPlanar(p LatLon) Point {
	x, y := ToRD(p.Lat, p.Lon)
	return Point{X: x, Y: y}
}

// ToGeographic implements Projection.
func (RD) ToGeographic(p Point) LatLon {
	lat, lon := FromRD(p.X, p.Y)
	return LatLon{Lat: lat, Lon: lon}
}

// Forward coefficients, indexed [p][q] for dphi^p * dlambda^q.
var (
	coefR = [4][5]float64{
		{0, 190094.945, -0.008, -32.391, 0},
		{-0.705, -11832.228, 0, -0.608, 0},
		{0, -114.211, 0, 0.148, 0},
		{0, -2.340, 0, 0, 0},
	}
	coefS = [4][5]float64{
		{0, 0.433, 3638.893, 0, 0.092},
		{309056.544, -0.032, -157.984, 0, -0.054},
		{73.077, 0, -6.439, 0, 0},
		{59.788, 0, 0, 0, 0},
	}
)

// Inverse coefficients, indexed [p][q] for dx^p * dy^q. Results are in
// arc-seconds.
var (
	coefK = [6][5]float64{
		{0, 3235.65389, -0.24750, -0.06550, 0},
		{-0.00738, -0.00012, 0, 0, 0},
		{-32.58297, -0.84978, -0.01709, -0.00039, 0},
		{0, 0, 0, 0, 0},
		{0.00530, 0.00033, 0, 0, 0},
		{0, 0, 0, 0, 0},
	}
	coefL = [6][5]float64{
		{0, 0.01199, 0.00022, 0, 0},
		{5260.52916, 105.94684, 2.45656, 0.05594, 0.00128},
		{-0.00022, 0, 0, 0, 0},
		{-0.81885, -0.05607, -0.00256, 0, 0},
		{0, 0, 0, 0, 0},
		{0.00026, 0, 0, 0, 0},
	}
)

// ToRD converts WGS-84 latitude/longitude (degrees) to RD x/y (metres).
//
// Example:
//
//	x, y := projection.ToRD(52.0907, 5.1214) // Utrecht Dom tower
func ToRD(lat, lon float64) (x, y float64) {
	dphi := 0.36 * (lat - Phi0)
	dlambda := 0.36 * (lon - Lambda0)

	for p := 0; p < len(coefR); p++ {
		for q := 0; q < len(coefR[p]); q++ {
			term := math.Pow(dphi, float64(p)) * math.Pow(dlambda, float64(q))
			x += coefR[p][q] * term
			y += coefS[p][q] * term
		}
	}
	return X0 + x, Y0 + y
}

// FromRD converts RD x/y (metres) to WGS-84 latitude/longitude (degrees).
func FromRD(x, y float64) (lat, lon float64) {
	dx := (x - X0) * 1e-5
	dy := (y - Y0) * 1e-5

	var phi, lam float64
	for p := 0; p < len(coefK); p++ {
		for q := 0; q < len(coefK[p]); q++ {
			term := math.Pow(dx, float64(p)) * math.Pow(dy, float64(q))
			phi += coefK[p][q] * term
			lam += coefL[p][q] * term
		}
	}
	return Phi0 + phi/3600, Lambda0 + lam/3600
}

// SquaredDistance returns the squared planar distance between a and b.
func SquaredDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Distance returns the planar distance between a and b.
func Distance(a, b Point) float64 {
	return math.Sqrt(SquaredDistance(a, b))
}
