package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Helper functions
func vec2Equal(a, b mgl64.Vec2, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func mustBox(t *testing.T, hx, hy float64) *Polygon {
	t.Helper()
	box, err := NewBox(hx, hy)
	if err != nil {
		t.Fatalf("NewBox(%v, %v) error = %v", hx, hy, err)
	}
	return box
}

// ========== FACTORY TESTS ==========
func TestFactories_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		make func() error
	}{
		{"circle zero radius", func() error { _, err := NewCircle(0); return err }},
		{"circle negative radius", func() error { _, err := NewCircle(-1); return err }},
		{"edge zero length", func() error { _, err := NewEdge(mgl64.Vec2{1, 1}, mgl64.Vec2{1, 1}); return err }},
		{"box zero extent", func() error { _, err := NewBox(0, 1); return err }},
		{"polygon two vertices", func() error {
			_, err := NewPolygon([]mgl64.Vec2{{0, 0}, {1, 0}})
			return err
		}},
		{"polygon too many vertices", func() error {
			vs := make([]mgl64.Vec2, MaxPolygonVertices+1)
			for i := range vs {
				a := 2 * math.Pi * float64(i) / float64(len(vs))
				vs[i] = mgl64.Vec2{math.Cos(a), math.Sin(a)}
			}
			_, err := NewPolygon(vs)
			return err
		}},
		{"polygon concave", func() error {
			_, err := NewPolygon([]mgl64.Vec2{{0, 0}, {2, 0}, {1, 0.5}, {2, 2}, {0, 2}})
			return err
		}},
		{"polygon repeated vertex", func() error {
			_, err := NewPolygon([]mgl64.Vec2{{0, 0}, {1, 0}, {1, 0}, {0, 1}})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.make(); !errors.Is(err, ErrInvalidShape) {
				t.Errorf("error = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestNewPolygon_ClockwiseIsReversed(t *testing.T) {
	p, err := NewPolygon([]mgl64.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}})
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	if signedArea(p.Vertices) <= 0 {
		t.Errorf("vertices should be counter-clockwise, got %v", p.Vertices)
	}
	if !vec2Equal(p.Centroid, mgl64.Vec2{0.5, 0.5}, 1e-9) {
		t.Errorf("Centroid = %v, want [0.5 0.5]", p.Centroid)
	}
	if !floatEqual(p.Area(), 1, 1e-9) {
		t.Errorf("Area() = %v, want 1", p.Area())
	}
	for i, n := range p.Normals {
		if !floatEqual(n.Len(), 1, 1e-9) {
			t.Errorf("normal %d is not unit: %v", i, n)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindCircle, "circle"},
		{KindEdge, "edge"},
		{KindPolygon, "polygon"},
		{KindCount, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}

// ========== MASS TESTS ==========
func TestComputeMass(t *testing.T) {
	offsetCircle, _ := NewCircleAt(mgl64.Vec2{1, 0}, 1)
	unitCircle, _ := NewCircle(1)
	edge, _ := NewEdge(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})
	box, _ := NewBox(1, 1)
	shifted, _ := NewOrientedBox(1, 1, mgl64.Vec2{2, 0}, 0)

	tests := []struct {
		name           string
		shape          Shape
		mass           float64
		expectedMass   float64
		expectedCenter mgl64.Vec2
		expectedI      float64
	}{
		{"unit circle", unitCircle, 1, 1, mgl64.Vec2{}, 0.5},
		{"offset circle", offsetCircle, 2, 2, mgl64.Vec2{1, 0}, 2 * (0.5 + 1)},
		{"edge has no mass", edge, 5, 0, mgl64.Vec2{}, 0},
		// m*(w²+h²)/12 with w=h=2
		{"box", box, 3, 3, mgl64.Vec2{}, 3 * 8.0 / 12.0},
		{"shifted box", shifted, 3, 3, mgl64.Vec2{2, 0}, 3*8.0/12.0 + 3*4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := tt.shape.ComputeMass(tt.mass)
			if !floatEqual(md.Mass, tt.expectedMass, 1e-9) {
				t.Errorf("Mass = %v, want %v", md.Mass, tt.expectedMass)
			}
			if !vec2Equal(md.Center, tt.expectedCenter, 1e-9) {
				t.Errorf("Center = %v, want %v", md.Center, tt.expectedCenter)
			}
			if !floatEqual(md.I, tt.expectedI, 1e-9) {
				t.Errorf("I = %v, want %v", md.I, tt.expectedI)
			}
		})
	}
}

// ========== AABB TESTS ==========
func TestComputeAABB(t *testing.T) {
	circle, _ := NewCircle(0.5)
	edge, _ := NewEdge(mgl64.Vec2{-2, 0}, mgl64.Vec2{2, 0})
	box, _ := NewBox(1, 0.5)
	r := PolygonRadius

	tests := []struct {
		name     string
		shape    Shape
		xf       geom.Transform
		expected AABB
	}{
		{
			name:     "circle translated",
			shape:    circle,
			xf:       geom.NewTransform(mgl64.Vec2{1, 2}, 0),
			expected: AABB{Lower: mgl64.Vec2{0.5, 1.5}, Upper: mgl64.Vec2{1.5, 2.5}},
		},
		{
			name:     "edge keeps its skin on both sides",
			shape:    edge,
			xf:       geom.IdentityTransform(),
			expected: AABB{Lower: mgl64.Vec2{-2 - r, -r}, Upper: mgl64.Vec2{2 + r, r}},
		},
		{
			name:     "edge rotated a quarter turn",
			shape:    edge,
			xf:       geom.NewTransform(mgl64.Vec2{}, math.Pi/2),
			expected: AABB{Lower: mgl64.Vec2{-r, -2 - r}, Upper: mgl64.Vec2{r, 2 + r}},
		},
		{
			name:     "box rotated a quarter turn",
			shape:    box,
			xf:       geom.NewTransform(mgl64.Vec2{3, 0}, math.Pi/2),
			expected: AABB{Lower: mgl64.Vec2{2.5 - r, -1 - r}, Upper: mgl64.Vec2{3.5 + r, 1 + r}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.ComputeAABB(tt.xf)
			if !vec2Equal(got.Lower, tt.expected.Lower, 1e-9) || !vec2Equal(got.Upper, tt.expected.Upper, 1e-9) {
				t.Errorf("ComputeAABB() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// ========== QUERY TESTS ==========
func TestTestPoint(t *testing.T) {
	circle, _ := NewCircle(1)
	edge, _ := NewEdge(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})
	box := mustBox(t, 1, 1)
	xf := geom.NewTransform(mgl64.Vec2{5, 5}, math.Pi/4)

	tests := []struct {
		name     string
		shape    Shape
		point    mgl64.Vec2
		expected bool
	}{
		{"circle center", circle, mgl64.Vec2{5, 5}, true},
		{"circle outside", circle, mgl64.Vec2{6.1, 5}, false},
		{"edge never contains", edge, mgl64.Vec2{5, 5}, false},
		{"box center", box, mgl64.Vec2{5, 5}, true},
		// the rotated box reaches sqrt(2) along the axes
		{"rotated box along axis", box, mgl64.Vec2{6.3, 5}, true},
		{"rotated box outside corner", box, mgl64.Vec2{6, 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.TestPoint(xf, tt.point); got != tt.expected {
				t.Errorf("TestPoint(%v) = %v, want %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestRayCast(t *testing.T) {
	circle, _ := NewCircle(1)
	edge, _ := NewEdge(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})
	box := mustBox(t, 1, 1)
	xf := geom.NewTransform(mgl64.Vec2{0, 0}, 0)

	tests := []struct {
		name     string
		shape    Shape
		input    RayCastInput
		hit      bool
		fraction float64
		normal   mgl64.Vec2
	}{
		{
			name:     "circle from the left",
			shape:    circle,
			input:    RayCastInput{P1: mgl64.Vec2{-4, 0}, P2: mgl64.Vec2{4, 0}, MaxFraction: 1},
			hit:      true,
			fraction: 3.0 / 8.0,
			normal:   mgl64.Vec2{-1, 0},
		},
		{
			name:  "circle missed",
			shape: circle,
			input: RayCastInput{P1: mgl64.Vec2{-4, 2}, P2: mgl64.Vec2{4, 2}, MaxFraction: 1},
		},
		{
			name:     "edge from above",
			shape:    edge,
			input:    RayCastInput{P1: mgl64.Vec2{0.5, 2}, P2: mgl64.Vec2{0.5, -2}, MaxFraction: 1},
			hit:      true,
			fraction: 0.5,
			normal:   mgl64.Vec2{0, 1},
		},
		{
			name:     "edge from below",
			shape:    edge,
			input:    RayCastInput{P1: mgl64.Vec2{0.5, -2}, P2: mgl64.Vec2{0.5, 2}, MaxFraction: 1},
			hit:      true,
			fraction: 0.5,
			normal:   mgl64.Vec2{0, -1},
		},
		{
			name:  "edge past its end",
			shape: edge,
			input: RayCastInput{P1: mgl64.Vec2{2, 2}, P2: mgl64.Vec2{2, -2}, MaxFraction: 1},
		},
		{
			name:     "box from the right",
			shape:    box,
			input:    RayCastInput{P1: mgl64.Vec2{3, 0.5}, P2: mgl64.Vec2{-1, 0.5}, MaxFraction: 1},
			hit:      true,
			fraction: 0.5,
			normal:   mgl64.Vec2{1, 0},
		},
		{
			name:  "box beyond max fraction",
			shape: box,
			input: RayCastInput{P1: mgl64.Vec2{3, 0.5}, P2: mgl64.Vec2{-1, 0.5}, MaxFraction: 0.4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, hit := tt.shape.RayCast(xf, tt.input)
			if hit != tt.hit {
				t.Fatalf("RayCast() hit = %v, want %v", hit, tt.hit)
			}
			if !hit {
				return
			}
			if !floatEqual(out.Fraction, tt.fraction, 1e-9) {
				t.Errorf("Fraction = %v, want %v", out.Fraction, tt.fraction)
			}
			if !vec2Equal(out.Normal, tt.normal, 1e-9) {
				t.Errorf("Normal = %v, want %v", out.Normal, tt.normal)
			}
		})
	}
}
