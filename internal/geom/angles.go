// Package geom holds the small planar-geometry helpers shared by the
// dynamics models and the spline generator.
package geom

import "math"

// NormalizeAngle wraps an angle into the canonical range (-pi, pi].
func NormalizeAngle(a float64) float64 {
	r := math.Mod(a, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	} else if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}

// RotatePoint rotates (x, y) about the origin by the given angle.
func RotatePoint(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}
