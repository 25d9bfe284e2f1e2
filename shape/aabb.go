package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Lower mgl64.Vec2
	Upper mgl64.Vec2
}

// Center returns the middle of the box.
func (a AABB) Center() mgl64.Vec2 {
	return a.Lower.Add(a.Upper).Mul(0.5)
}

// Extents returns the half-widths of the box.
func (a AABB) Extents() mgl64.Vec2 {
	return a.Upper.Sub(a.Lower).Mul(0.5)
}

// Perimeter returns the box perimeter.
func (a AABB) Perimeter() float64 {
	return 2.0 * ((a.Upper[0] - a.Lower[0]) + (a.Upper[1] - a.Lower[1]))
}

// Combine returns the smallest box holding both a and other.
func (a AABB) Combine(other AABB) AABB {
	return AABB{Lower: geom.Min(a.Lower, other.Lower), Upper: geom.Max(a.Upper, other.Upper)}
}

// Contains checks if other lies entirely inside a.
func (a AABB) Contains(other AABB) bool {
	return a.Lower[0] <= other.Lower[0] && a.Lower[1] <= other.Lower[1] &&
		other.Upper[0] <= a.Upper[0] && other.Upper[1] <= a.Upper[1]
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec2) bool {
	return point[0] >= a.Lower[0] && point[0] <= a.Upper[0] &&
		point[1] >= a.Lower[1] && point[1] <= a.Upper[1]
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if their intervals overlap on both axes
	return a.Upper[0] >= other.Lower[0] && a.Lower[0] <= other.Upper[0] &&
		a.Upper[1] >= other.Lower[1] && a.Lower[1] <= other.Upper[1]
}

// RayCast intersects the ray with the box using the slab method, from
// Real-time Collision Detection p179. A ray starting inside the box hits
// at fraction 0 with a zero normal.
func (a AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	tmin := -math.MaxFloat64
	tmax := math.MaxFloat64

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := geom.Abs(d)

	var normal mgl64.Vec2

	for i := 0; i < 2; i++ {
		if absD[i] < geom.Epsilon {
			// Parallel.
			if p[i] < a.Lower[i] || a.Upper[i] < p[i] {
				return RayCastOutput{}, false
			}
			continue
		}

		invD := 1.0 / d[i]
		t1 := (a.Lower[i] - p[i]) * invD
		t2 := (a.Upper[i] - p[i]) * invD

		// Sign of the normal vector.
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		// Push the min up
		if t1 > tmin {
			normal = mgl64.Vec2{}
			normal[i] = s
			tmin = t1
		}

		// Pull the max down
		tmax = math.Min(tmax, t2)

		if tmin > tmax {
			return RayCastOutput{}, false
		}
	}

	// Does the box lie behind the origin?
	// Does the ray intersect beyond the max fraction?
	if tmax < 0.0 || input.MaxFraction < tmin {
		return RayCastOutput{}, false
	}

	if tmin < 0.0 {
		return RayCastOutput{Fraction: 0}, true
	}
	return RayCastOutput{Normal: normal, Fraction: tmin}, true
}
