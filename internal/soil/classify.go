package soil

import "math"

// Class is one row of the CUR162 electrical cone classification table. A
// friction ratio r belongs to the class when lower < r <= Upper, where lower
// is the Upper of the previous row.
type Class struct {
	SoilTypeID int
	Upper      float64 // inclusive upper bound of the friction ratio [%]
}

// cur162 is ordered by Upper; the last row catches everything above 8.1.
var cur162 = []Class{
	{SoilTypeID: 10000, Upper: 0.6},
	{SoilTypeID: 10001, Upper: 0.8},
	{SoilTypeID: 10002, Upper: 1.1},
	{SoilTypeID: 10003, Upper: 1.4},
	{SoilTypeID: 10004, Upper: 1.8},
	{SoilTypeID: 10005, Upper: 2.2},
	{SoilTypeID: 10006, Upper: 2.5},
	{SoilTypeID: 10007, Upper: 5.0},
	{SoilTypeID: 10008, Upper: 8.1},
	{SoilTypeID: 10009, Upper: math.Inf(1)},
}

// Classes returns a copy of the classification table, shallow to coarse.
func Classes() []Class {
	return append([]Class(nil), cur162...)
}

// Classify maps a friction ratio [%] to a soil type id.
func Classify(frictionRatio float64) int {
	for _, c := range cur162 {
		if frictionRatio <= c.Upper {
			return c.SoilTypeID
		}
	}
	// NaN compares false against every bound
	return cur162[len(cur162)-1].SoilTypeID
}
