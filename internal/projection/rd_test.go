package projection

import (
	"math"
	"testing"
)

// TestReferencePoint checks that the reference point maps onto itself exactly
func TestReferencePoint(t *testing.T) {
	x, y := ToRD(Phi0, Lambda0)
	if x != X0 || y != Y0 {
		t.Errorf("ToRD(reference) = (%f, %f), want (%f, %f)", x, y, X0, Y0)
	}

	lat, lon := FromRD(X0, Y0)
	if lat != Phi0 || lon != Lambda0 {
		t.Errorf("FromRD(reference) = (%f, %f), want (%f, %f)", lat, lon, Phi0, Lambda0)
	}
}

// TestRoundTrip checks the bounded drift of a forward/inverse round trip
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"amersfoort", Phi0, Lambda0},
		{"utrecht", 52.0907, 5.1214},
		{"rotterdam", 51.9225, 4.4792},
		{"groningen", 53.2194, 6.5665},
		{"maastricht", 50.8514, 5.6910},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ToRD(tt.lat, tt.lon)
			lat, lon := FromRD(x, y)

			if d := math.Abs(lat - tt.lat); d > 1e-6 {
				t.Errorf("latitude drift = %g, want <= 1e-6", d)
			}
			if d := math.Abs(lon - tt.lon); d > 1e-6 {
				t.Errorf("longitude drift = %g, want <= 1e-6", d)
			}

			// And back to planar: the drift must stay within centimetres
			x2, y2 := ToRD(lat, lon)
			if d := Distance(Point{x, y}, Point{x2, y2}); d > 0.05 {
				t.Errorf("planar drift = %f m, want <= 0.05 m", d)
			}
		})
	}
}

// TestKnownPosition pins the forward polynomial for a position in Utrecht
func TestKnownPosition(t *testing.T) {
	x, y := ToRD(52.0907, 5.1214)

	if math.Abs(x-136783.54) > 0.01 || math.Abs(y-455859.91) > 0.01 {
		t.Errorf("ToRD(52.0907, 5.1214) = (%.2f, %.2f), want (136783.54, 455859.91)", x, y)
	}
}

// TestProjectionInterface checks that RD satisfies Projection consistently
func TestProjectionInterface(t *testing.T) {
	var p Projection = RD{}

	ll := LatLon{Lat: 52.0, Lon: 5.0}
	pt := p.ToPlanar(ll)
	x, y := ToRD(ll.Lat, ll.Lon)
	if pt.X != x || pt.Y != y {
		t.Errorf("ToPlanar() = %+v, want (%f, %f)", pt, x, y)
	}

	back := p.ToGeographic(pt)
	lat, lon := FromRD(pt.X, pt.Y)
	if back.Lat != lat || back.Lon != lon {
		t.Errorf("ToGeographic() = %+v, want (%f, %f)", back, lat, lon)
	}
}

// TestOutsideRegion checks that far-away inputs stay deterministic and finite
func TestOutsideRegion(t *testing.T) {
	x1, y1 := ToRD(-33.9, 151.2)
	x2, y2 := ToRD(-33.9, 151.2)
	if x1 != x2 || y1 != y2 {
		t.Error("ToRD is not deterministic")
	}
	if math.IsNaN(x1) || math.IsNaN(y1) {
		t.Error("ToRD returned NaN outside the nominal region")
	}
}

func TestDistance(t *testing.T) {
	a := Point{0, 0}
	b := Point{3, 4}
	if got := SquaredDistance(a, b); got != 25 {
		t.Errorf("SquaredDistance() = %f, want 25", got)
	}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %f, want 5", got)
	}
}
