package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rot is a rotation stored as its sine and cosine.
type Rot struct {
	Sin, Cos float64
}

// NewRot builds the rotation for angle (radians).
func NewRot(angle float64) Rot {
	return Rot{Sin: math.Sin(angle), Cos: math.Cos(angle)}
}

// IdentityRot is the zero angle rotation.
func IdentityRot() Rot {
	return Rot{Sin: 0, Cos: 1}
}

// Angle returns the rotation angle in radians.
func (r Rot) Angle() float64 {
	return math.Atan2(r.Sin, r.Cos)
}

// XAxis returns the rotated x axis.
func (r Rot) XAxis() mgl64.Vec2 {
	return mgl64.Vec2{r.Cos, r.Sin}
}

// YAxis returns the rotated y axis.
func (r Rot) YAxis() mgl64.Vec2 {
	return mgl64.Vec2{-r.Sin, r.Cos}
}

// Mat2 returns the rotation matrix.
func (r Rot) Mat2() mgl64.Mat2 {
	return mgl64.Mat2FromCols(r.XAxis(), r.YAxis())
}

// Apply rotates v.
func (r Rot) Apply(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{r.Cos*v[0] - r.Sin*v[1], r.Sin*v[0] + r.Cos*v[1]}
}

// ApplyT rotates v by the inverse rotation.
func (r Rot) ApplyT(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{r.Cos*v[0] + r.Sin*v[1], -r.Sin*v[0] + r.Cos*v[1]}
}

// Mul composes q * r.
func (r Rot) Mul(other Rot) Rot {
	return Rot{
		Sin: r.Sin*other.Cos + r.Cos*other.Sin,
		Cos: r.Cos*other.Cos - r.Sin*other.Sin,
	}
}

// Transform is a rigid transform: a translation followed by a rotation.
type Transform struct {
	Position mgl64.Vec2
	Rotation Rot
}

// NewTransform builds a transform from a position and an angle.
func NewTransform(position mgl64.Vec2, angle float64) Transform {
	return Transform{Position: position, Rotation: NewRot(angle)}
}

// IdentityTransform returns the transform at the origin with no rotation.
func IdentityTransform() Transform {
	return Transform{Rotation: IdentityRot()}
}

// Apply maps a local point to world space.
func (t Transform) Apply(v mgl64.Vec2) mgl64.Vec2 {
	return t.Rotation.Apply(v).Add(t.Position)
}

// ApplyT maps a world point to local space.
func (t Transform) ApplyT(v mgl64.Vec2) mgl64.Vec2 {
	return t.Rotation.ApplyT(v.Sub(t.Position))
}

// Mul composes t * other.
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Position: t.Rotation.Apply(other.Position).Add(t.Position),
		Rotation: t.Rotation.Mul(other.Rotation),
	}
}
