// Package geometry holds the pure perception math shared by every actor:
// distances, compass bearings and cone containment. All functions are total,
// non-finite input produces a defined 0 result instead of NaN.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const fullTurn = 360

// Distance returns the euclidean distance between a and b
func Distance(a, b r2.Vec) float64 {
	if !finite(a) || !finite(b) {
		return 0
	}
	return r2.Norm(r2.Sub(b, a))
}

// Bearing returns the compass direction in degrees, [0, 360), in which to
// lies as seen from from. 0 points along +y and angles grow clockwise, so a
// target at +x has bearing 90.
func Bearing(from, to r2.Vec) float64 {
	if !finite(from) || !finite(to) {
		return 0
	}
	deg := math.Atan2(from.X-to.X, from.Y-to.Y)*180/math.Pi + 180
	return Wrap(deg)
}

// Wrap folds deg into [0, 360) using floored modulo, so -90 becomes 270.
func Wrap(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, fullTurn)
	if d < 0 {
		d += fullTurn
	}
	// Adding 360 to a tiny negative remainder can round up to 360
	if d >= fullTurn || d == 0 {
		return 0
	}
	return d
}

// Deviation returns the smallest angle between two headings, in [0, 180].
func Deviation(a, b float64) float64 {
	d := math.Abs(Wrap(a) - Wrap(b))
	if d > fullTurn/2 {
		d = fullTurn - d
	}
	return d
}

// InCone reports whether target lies strictly within halfAngle degrees of
// dir as seen from observer, and no further away than radius. The angular
// deviation is measured across the 0/360 seam.
func InCone(observer r2.Vec, dir float64, target r2.Vec, halfAngle, radius float64) bool {
	return Deviation(Bearing(observer, target), dir) < halfAngle &&
		Distance(observer, target) <= radius
}

// InConeRaw is InCone without seam handling: the raw difference between
// bearing and dir is compared, so a target just across 0/360 is missed.
// It reproduces the legacy arena behavior.
func InConeRaw(observer r2.Vec, dir float64, target r2.Vec, halfAngle, radius float64) bool {
	return math.Abs(Bearing(observer, target)-dir) < halfAngle &&
		Distance(observer, target) <= radius
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
