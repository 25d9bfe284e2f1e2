package actor

import (
	"fmt"
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/collision"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
	"github.com/saad-KH/CrispyPhysics-sub000/timeline"
)

// ContactMomentum is the state of a contact at one tick.
type ContactMomentum struct {
	tick uint32

	// Manifold is nil while the bodies are apart, and for sensors.
	Manifold     *collision.Manifold
	TangentSpeed float64
	IsTouching   bool

	// Body positions the touching state was evaluated with.
	FirstBodyPosition  mgl64.Vec2
	SecondBodyPosition mgl64.Vec2
}

func (m ContactMomentum) Tick() uint32 {
	return m.tick
}

// WithTick returns a copy stamped with tick. The manifold is copied too,
// so the result shares nothing with m.
func (m ContactMomentum) WithTick(tick uint32) ContactMomentum {
	m.tick = tick
	m.Manifold = m.Manifold.Clone()
	return m
}

// Snapshot returns a detached copy.
func (m ContactMomentum) Snapshot() ContactMomentum {
	return m.WithTick(m.tick)
}

func (m ContactMomentum) Same(other ContactMomentum) bool {
	return m.IsTouching == other.IsTouching &&
		geom.ApproxEqual(m.TangentSpeed, other.TangentSpeed, geom.Epsilon) &&
		geom.ApproxEqualVec(m.FirstBodyPosition, other.FirstBodyPosition, geom.Epsilon) &&
		geom.ApproxEqualVec(m.SecondBodyPosition, other.SecondBodyPosition, geom.Epsilon) &&
		sameManifold(m.Manifold, other.Manifold)
}

func sameManifold(a, b *collision.Manifold) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.PointCount != b.PointCount || a.Type != b.Type ||
		!geom.ApproxEqualVec(a.LocalNormal, b.LocalNormal, geom.Epsilon) ||
		!geom.ApproxEqualVec(a.LocalPoint, b.LocalPoint, geom.Epsilon) {
		return false
	}

	for i := 0; i < a.PointCount; i++ {
		pa, pb := a.Points[i], b.Points[i]
		if pa.ID != pb.ID ||
			!geom.ApproxEqualVec(pa.LocalPoint, pb.LocalPoint, geom.Epsilon) ||
			!geom.ApproxEqual(pa.NormalImpulse, pb.NormalImpulse, geom.Epsilon) ||
			!geom.ApproxEqual(pa.TangentImpulse, pb.TangentImpulse, geom.Epsilon) {
			return false
		}
	}
	return true
}

// MixFriction mixes two friction coefficients: either body can drive the
// friction to zero.
func MixFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// MixRestitution mixes two restitution coefficients: anything bouncing on
// a bouncy surface bounces.
func MixRestitution(a, b float64) float64 {
	return math.Max(a, b)
}

type evaluateFunc func(a, b shape.Shape, xfA, xfB geom.Transform) collision.Manifold

// evaluators is indexed by the kinds of the first and second shapes.
var evaluators = [shape.KindCount][shape.KindCount]evaluateFunc{
	shape.KindCircle: {
		shape.KindCircle: func(a, b shape.Shape, xfA, xfB geom.Transform) collision.Manifold {
			return collision.CollideCircles(a.(*shape.Circle), xfA, b.(*shape.Circle), xfB)
		},
	},
	shape.KindEdge: {
		shape.KindCircle: func(a, b shape.Shape, xfA, xfB geom.Transform) collision.Manifold {
			return collision.CollideEdgeAndCircle(a.(*shape.Edge), xfA, b.(*shape.Circle), xfB)
		},
	},
	shape.KindPolygon: {
		shape.KindCircle: func(a, b shape.Shape, xfA, xfB geom.Transform) collision.Manifold {
			return collision.CollidePolygonAndCircle(a.(*shape.Polygon), xfA, b.(*shape.Circle), xfB)
		},
	},
}

// Supported reports whether a manifold generator exists for the two kinds,
// in either order.
func Supported(a, b shape.Kind) bool {
	return evaluators[a][b] != nil || evaluators[b][a] != nil
}

// Contact tracks a pair of bodies whose bounding boxes met, and the
// timeline of their touching state.
type Contact struct {
	first, second *Body

	friction    float64
	restitution float64

	timeline *timeline.Timeline[ContactMomentum]
	evaluate evaluateFunc

	island bool
}

// NewContact creates the contact of two bodies, its timeline starting at
// tick, apart. Bodies are reordered so the first one holds the reference
// shape of the manifold generator.
func NewContact(first, second *Body, tick uint32) (*Contact, error) {
	switch {
	case first == nil || second == nil:
		return nil, fmt.Errorf("contact body is nil: %w", ErrInvalidArgument)
	case first == second:
		return nil, fmt.Errorf("contact of body %d with itself: %w", first.id, ErrInvalidArgument)
	case first.shape == nil || second.shape == nil:
		return nil, fmt.Errorf("contact of bodies %d and %d without shape: %w", first.id, second.id, ErrInvalidArgument)
	}

	kindA, kindB := first.shape.Kind(), second.shape.Kind()
	evaluate := evaluators[kindA][kindB]
	if evaluate == nil {
		evaluate = evaluators[kindB][kindA]
		first, second = second, first
	}
	if evaluate == nil {
		return nil, fmt.Errorf("%s and %s: %w", kindA, kindB, ErrUnsupportedPair)
	}

	return &Contact{
		first:       first,
		second:      second,
		friction:    MixFriction(first.friction, second.friction),
		restitution: MixRestitution(first.restitution, second.restitution),
		timeline:    timeline.New(ContactMomentum{tick: tick}),
		evaluate:    evaluate,
	}, nil
}

func (c *Contact) First() *Body {
	return c.first
}

func (c *Contact) Second() *Body {
	return c.second
}

func (c *Contact) Friction() float64 {
	return c.friction
}

func (c *Contact) Restitution() float64 {
	return c.restitution
}

// IsSensor reports whether either body is a sensor.
func (c *Contact) IsSensor() bool {
	return c.first.sensor || c.second.sensor
}

// Other returns the body of the pair that is not b.
func (c *Contact) Other(b *Body) *Body {
	if c.first == b {
		return c.second
	}
	return c.first
}

// Evaluate computes the manifold of the two shapes at the given
// transforms.
func (c *Contact) Evaluate(xfA, xfB geom.Transform) collision.Manifold {
	return c.evaluate(c.first.shape, c.second.shape, xfA, xfB)
}

// WorldManifold rebuilds the current manifold in world space from the
// bodies' current transforms.
func (c *Contact) WorldManifold() collision.WorldManifold {
	return collision.NewWorldManifold(
		c.Current().Manifold,
		c.first.Current().Transform(), c.first.shape.Radius(),
		c.second.Current().Transform(), c.second.shape.Radius(),
	)
}

// Droppable reports whether no retained state is touching.
func (c *Contact) Droppable() bool {
	for m := range c.timeline.All() {
		if m.IsTouching {
			return false
		}
	}
	return true
}

// ========== TIMELINE ==========

func (c *Contact) Past() ContactMomentum {
	return c.timeline.Past()
}

func (c *Contact) Current() ContactMomentum {
	return c.timeline.Current()
}

func (c *Contact) Futur() ContactMomentum {
	return c.timeline.Futur()
}

// FuturMomentum gives the simulation write access to the foreseen state.
func (c *Contact) FuturMomentum() *ContactMomentum {
	return c.timeline.FuturRef()
}

func (c *Contact) MomentumAt(tick uint32) (ContactMomentum, bool) {
	return c.timeline.At(tick)
}

func (c *Contact) Momentums(start, end uint32) iter.Seq[ContactMomentum] {
	return c.timeline.Between(start, end)
}

func (c *Contact) Step(n uint32) {
	c.timeline.Step(n)
}

func (c *Contact) RollBack(tick uint32) error {
	return c.timeline.RollBack(tick)
}

func (c *Contact) Foresee(n uint32) {
	c.timeline.Foresee(n)
}

func (c *Contact) ForgetPast(tick uint32) {
	c.timeline.ForgetPast(tick)
}

func (c *Contact) ClearFutur(tick uint32) error {
	return c.timeline.ClearFutur(tick)
}

// ========== ISLAND ==========

func (c *Contact) InIsland() bool {
	return c.island
}

func (c *Contact) BindIsland() {
	c.island = true
}

func (c *Contact) ReleaseIsland() {
	c.island = false
}
