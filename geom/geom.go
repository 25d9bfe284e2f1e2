// Package geom holds the 2D rigid transform primitives shared by shapes,
// collision and the solver. Vectors and matrices are mgl64 types; this
// package only adds what mgl64 lacks in two dimensions.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by approximate comparisons.
const Epsilon = 1e-7

// Cross returns the scalar 2D cross product a x b.
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// CrossVS returns a x s, the vector cross scalar product.
func CrossVS(a mgl64.Vec2, s float64) mgl64.Vec2 {
	return mgl64.Vec2{s * a[1], -s * a[0]}
}

// CrossSV returns s x a, the scalar cross vector product.
func CrossSV(s float64, a mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-s * a[1], s * a[0]}
}

// Normalize returns the unit vector of v and its length. A vector shorter
// than Epsilon is returned unchanged with length 0.
func Normalize(v mgl64.Vec2) (mgl64.Vec2, float64) {
	length := v.Len()
	if length < Epsilon {
		return v, 0
	}
	return v.Mul(1.0 / length), length
}

// Abs returns the component-wise absolute value.
func Abs(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Abs(v[0]), math.Abs(v[1])}
}

// Min returns the component-wise minimum.
func Min(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Min(a[0], b[0]), math.Min(a[1], b[1])}
}

// Max returns the component-wise maximum.
func Max(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{math.Max(a[0], b[0]), math.Max(a[1], b[1])}
}

// DistanceSquared returns |a-b|².
func DistanceSquared(a, b mgl64.Vec2) float64 {
	return b.Sub(a).LenSqr()
}

// ApproxEqual reports whether a and b differ by at most tolerance.
func ApproxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// ApproxEqualVec reports whether every component of a and b differs by at
// most tolerance.
func ApproxEqualVec(a, b mgl64.Vec2, tolerance float64) bool {
	return ApproxEqual(a[0], b[0], tolerance) && ApproxEqual(a[1], b[1], tolerance)
}

// Clamp bounds a to [low, high].
func Clamp(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}

// Solve22 solves A * x = b. A singular matrix yields the zero vector.
func Solve22(a mgl64.Mat2, b mgl64.Vec2) mgl64.Vec2 {
	det := a.Det()
	if det != 0 {
		det = 1.0 / det
	}
	// column major: a[0]=a11, a[1]=a21, a[2]=a12, a[3]=a22
	return mgl64.Vec2{
		det * (a[3]*b[0] - a[2]*b[1]),
		det * (a[0]*b[1] - a[1]*b[0]),
	}
}
