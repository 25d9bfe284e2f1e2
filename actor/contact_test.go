package actor

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/collision"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
)

func shapedDef(bodyType BodyType, position mgl64.Vec2, s shape.Shape) BodyDef {
	return BodyDef{Position: position, Type: bodyType, Shape: s, Mass: 1, GravityScale: 1}
}

// =============================================================================
// Mixing Tests
// =============================================================================

func TestMixing(t *testing.T) {
	tests := []struct {
		name        string
		a, b        float64
		friction    float64
		restitution float64
	}{
		{"equal", 0.5, 0.5, 0.5, 0.5},
		{"one zero", 0, 0.8, 0, 0.8},
		{"different", 0.2, 0.4, 0.28284271247, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MixFriction(tt.a, tt.b); !almostEqual(got, tt.friction, 1e-9) {
				t.Errorf("MixFriction() = %v, want %v", got, tt.friction)
			}
			if got := MixRestitution(tt.a, tt.b); got != tt.restitution {
				t.Errorf("MixRestitution() = %v, want %v", got, tt.restitution)
			}
		})
	}
}

// =============================================================================
// NewContact Tests
// =============================================================================

func TestNewContact_Invalid(t *testing.T) {
	circleBody := createBody(t, 1, circleDef(BodyTypeDynamic, mgl64.Vec2{}, 1))
	shapeless := createBody(t, 2, BodyDef{Type: BodyTypeDynamic, Mass: 1})

	boxA, _ := shape.NewBox(1, 1)
	boxB, _ := shape.NewBox(1, 1)
	polyA := createBody(t, 3, shapedDef(BodyTypeDynamic, mgl64.Vec2{}, boxA))
	polyB := createBody(t, 4, shapedDef(BodyTypeDynamic, mgl64.Vec2{}, boxB))

	edgeShape, _ := shape.NewEdge(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})
	edge := createBody(t, 5, shapedDef(BodyTypeStatic, mgl64.Vec2{}, edgeShape))

	tests := []struct {
		name          string
		first, second *Body
		err           error
	}{
		{"nil body", circleBody, nil, ErrInvalidArgument},
		{"same body", circleBody, circleBody, ErrInvalidArgument},
		{"no shape", circleBody, shapeless, ErrInvalidArgument},
		{"polygon pair", polyA, polyB, ErrUnsupportedPair},
		{"edge and polygon", edge, polyA, ErrUnsupportedPair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewContact(tt.first, tt.second, 0); !errors.Is(err, tt.err) {
				t.Errorf("NewContact() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestNewContact_CanonicalOrder(t *testing.T) {
	circle := createBody(t, 1, circleDef(BodyTypeDynamic, mgl64.Vec2{}, 1))
	box, _ := shape.NewBox(1, 1)
	polygon := createBody(t, 2, shapedDef(BodyTypeStatic, mgl64.Vec2{}, box))

	c, err := NewContact(circle, polygon, 7)
	if err != nil {
		t.Fatalf("NewContact() error = %v", err)
	}

	if c.First() != polygon || c.Second() != circle {
		t.Errorf("the polygon should come first")
	}
	if c.Other(circle) != polygon || c.Other(polygon) != circle {
		t.Errorf("Other() should return the opposite body")
	}
	if c.Current().Tick() != 7 || c.Current().IsTouching || c.Current().Manifold != nil {
		t.Errorf("a new contact should start apart at its creation tick, got %+v", c.Current())
	}
	if !Supported(shape.KindCircle, shape.KindPolygon) || Supported(shape.KindPolygon, shape.KindPolygon) {
		t.Errorf("Supported() does not match the dispatch table")
	}
}

func TestNewContact_MixesMaterials(t *testing.T) {
	defA := circleDef(BodyTypeDynamic, mgl64.Vec2{}, 1)
	defA.Friction, defA.Restitution = 0.2, 0.8
	defB := circleDef(BodyTypeDynamic, mgl64.Vec2{1, 0}, 1)
	defB.Friction, defB.Restitution = 0.4, 0.6

	c, err := NewContact(createBody(t, 1, defA), createBody(t, 2, defB), 0)
	if err != nil {
		t.Fatalf("NewContact() error = %v", err)
	}

	if !almostEqual(c.Friction(), 0.2828, 1e-4) || c.Restitution() != 0.8 {
		t.Errorf("Friction/Restitution = %v/%v, want 0.283/0.8", c.Friction(), c.Restitution())
	}
}

// =============================================================================
// Evaluation Tests
// =============================================================================

func TestContact_EvaluateAndWorldManifold(t *testing.T) {
	a := createBody(t, 1, circleDef(BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := createBody(t, 2, circleDef(BodyTypeDynamic, mgl64.Vec2{1.5, 0}, 1))

	c, err := NewContact(a, b, 0)
	if err != nil {
		t.Fatalf("NewContact() error = %v", err)
	}

	m := c.Evaluate(a.Current().Transform(), b.Current().Transform())
	if !m.Touching() {
		t.Fatalf("overlapping circles should touch")
	}

	current := c.FuturMomentum()
	current.Manifold = &m
	current.IsTouching = true

	wm := c.WorldManifold()
	if !vec2AlmostEqual(wm.Normal, mgl64.Vec2{1, 0}, 1e-12) || !almostEqual(wm.Separations[0], -0.5, 1e-12) {
		t.Errorf("WorldManifold() = %+v", wm)
	}
	if c.Droppable() {
		t.Errorf("a touching contact is not droppable")
	}
}

func TestContact_Droppable(t *testing.T) {
	a := createBody(t, 1, circleDef(BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := createBody(t, 2, circleDef(BodyTypeDynamic, mgl64.Vec2{3, 0}, 1))
	c, _ := NewContact(a, b, 0)

	if !c.Droppable() {
		t.Errorf("a new contact is droppable")
	}

	c.Foresee(1)
	c.FuturMomentum().IsTouching = true
	c.Foresee(1)
	c.FuturMomentum().IsTouching = false

	if c.Droppable() {
		t.Errorf("a touching state in the futur keeps the contact")
	}

	c.Step(2)
	c.ForgetPast(2)
	if !c.Droppable() {
		t.Errorf("once the touching state is forgotten the contact is droppable")
	}
}

func TestContact_IsSensor(t *testing.T) {
	defA := circleDef(BodyTypeDynamic, mgl64.Vec2{}, 1)
	defB := circleDef(BodyTypeStatic, mgl64.Vec2{}, 1)
	defB.Sensor = true

	c, _ := NewContact(createBody(t, 1, defA), createBody(t, 2, defB), 0)
	if !c.IsSensor() {
		t.Errorf("a contact with a sensor body is a sensor")
	}
}

// =============================================================================
// ContactMomentum Tests
// =============================================================================

func TestContactMomentum_WithTickDetachesManifold(t *testing.T) {
	m := ContactMomentum{tick: 1, Manifold: &collision.Manifold{PointCount: 1}, IsTouching: true}
	m.Manifold.Points[0].NormalImpulse = 3

	copied := m.WithTick(2)
	copied.Manifold.Points[0].NormalImpulse = 5

	if m.Manifold.Points[0].NormalImpulse != 3 {
		t.Errorf("the copy shares its manifold with the original")
	}
	if copied.Tick() != 2 || m.Tick() != 1 {
		t.Errorf("ticks = %d/%d, want 2/1", copied.Tick(), m.Tick())
	}

	snapshot := m.Snapshot()
	if snapshot.Manifold == m.Manifold || !snapshot.Same(m) {
		t.Errorf("Snapshot() should be an equal detached copy")
	}
}

func TestContactMomentum_Same(t *testing.T) {
	touching := &collision.Manifold{PointCount: 1}
	pushed := &collision.Manifold{PointCount: 1}
	pushed.Points[0].NormalImpulse = 1

	tests := []struct {
		name     string
		a, b     ContactMomentum
		expected bool
	}{
		{"both apart", ContactMomentum{}, ContactMomentum{tick: 4}, true},
		{"touching differs", ContactMomentum{IsTouching: true}, ContactMomentum{}, false},
		{"nil and manifold", ContactMomentum{}, ContactMomentum{Manifold: touching}, false},
		{"impulse differs", ContactMomentum{Manifold: touching}, ContactMomentum{Manifold: pushed}, false},
		{"same manifold values", ContactMomentum{Manifold: touching}, ContactMomentum{Manifold: touching.Clone()}, true},
		{"positions differ", ContactMomentum{}, ContactMomentum{FirstBodyPosition: mgl64.Vec2{1, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Same(tt.b); got != tt.expected {
				t.Errorf("Same() = %v, want %v", got, tt.expected)
			}
		})
	}
}
