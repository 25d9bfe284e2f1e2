// Package scenario loads YAML scenes: a world configuration, the bodies
// to create and how to step them.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	crispy "github.com/saad-KH/CrispyPhysics-sub000"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario reports a scenario that cannot be built.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the decoded form of a scenario file.
type Scenario struct {
	Name   string        `yaml:"name"`
	World  crispy.Config `yaml:"world"`
	Run    Run           `yaml:"run"`
	Bodies []BodySpec    `yaml:"bodies,omitempty"`
}

// Run is the stepping plan: Steps calls to World.Step, each advancing
// StepSize ticks.
type Run struct {
	Steps     uint32 `yaml:"steps"`
	StepSize  uint32 `yaml:"step_size"`
	Foresee   uint32 `yaml:"foresee"`
	Buffering uint32 `yaml:"buffering"`
	Keep      uint32 `yaml:"keep"`
}

type BodySpec struct {
	Name string `yaml:"name"`
	// Type is static, kinematic or dynamic.
	Type            string     `yaml:"type"`
	Position        mgl64.Vec2 `yaml:"position"`
	Angle           float64    `yaml:"angle"`
	Velocity        mgl64.Vec2 `yaml:"velocity"`
	AngularVelocity float64    `yaml:"angular_velocity"`
	Shape           *ShapeSpec `yaml:"shape"`
	Mass            float64    `yaml:"mass"`
	LinearDamping   float64    `yaml:"linear_damping"`
	AngularDamping  float64    `yaml:"angular_damping"`
	// GravityScale defaults to 1.
	GravityScale *float64 `yaml:"gravity_scale"`
	Friction     float64  `yaml:"friction"`
	Restitution  float64  `yaml:"restitution"`
	Sensor       bool     `yaml:"sensor"`
}

// ShapeSpec describes a shape by kind:
//   - circle: radius, optional center
//   - edge: two vertices
//   - box: half_extents
//   - polygon: vertices, counter clockwise
type ShapeSpec struct {
	Kind        string       `yaml:"kind"`
	Radius      float64      `yaml:"radius"`
	Center      mgl64.Vec2   `yaml:"center"`
	HalfExtents mgl64.Vec2   `yaml:"half_extents"`
	Vertices    []mgl64.Vec2 `yaml:"vertices"`
}

// Default returns an empty scenario with the default world and a one
// second run at 60Hz.
func Default() Scenario {
	return Scenario{
		Name:  "scenario",
		World: crispy.DefaultConfig(),
		Run: Run{
			Steps:     60,
			StepSize:  1,
			Foresee:   10,
			Buffering: 10,
			Keep:      60,
		},
	}
}

// Load decodes a scenario. Missing fields keep their default value;
// unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	s := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile decodes the scenario at path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate reports every error of the scenario.
func (s *Scenario) Validate() error {
	var errs []error

	if err := s.World.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Run.StepSize == 0 {
		errs = append(errs, fmt.Errorf("run.step_size must be positive: %w", ErrInvalidScenario))
	}

	names := make(map[string]int, len(s.Bodies))
	for i, b := range s.Bodies {
		name := b.name(i)
		if first, exists := names[name]; exists {
			errs = append(errs, fmt.Errorf("bodies[%d]: name %q already used by bodies[%d]: %w", i, name, first, ErrInvalidScenario))
		}
		names[name] = i

		if _, err := ParseBodyType(b.Type); err != nil {
			errs = append(errs, fmt.Errorf("bodies[%d]: %w", i, err))
		}
		if b.Shape != nil {
			if _, err := b.Shape.Build(); err != nil {
				errs = append(errs, fmt.Errorf("bodies[%d]: %w", i, err))
			}
		}
	}

	return errors.Join(errs...)
}

func (b BodySpec) name(i int) string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("body%d", i)
}

// ParseBodyType parses static, kinematic or dynamic. An empty string is
// dynamic.
func ParseBodyType(s string) (actor.BodyType, error) {
	switch s {
	case "static":
		return actor.BodyTypeStatic, nil
	case "kinematic":
		return actor.BodyTypeKinematic, nil
	case "dynamic", "":
		return actor.BodyTypeDynamic, nil
	default:
		return 0, fmt.Errorf("body type %q: %w", s, ErrInvalidScenario)
	}
}

// Build creates the shape.
func (s *ShapeSpec) Build() (shape.Shape, error) {
	var (
		built shape.Shape
		err   error
	)

	switch s.Kind {
	case "circle":
		built, err = shape.NewCircleAt(s.Center, s.Radius)
	case "edge":
		if len(s.Vertices) != 2 {
			return nil, fmt.Errorf("edge needs 2 vertices, got %d: %w", len(s.Vertices), ErrInvalidScenario)
		}
		built, err = shape.NewEdge(s.Vertices[0], s.Vertices[1])
	case "box":
		built, err = shape.NewBox(s.HalfExtents.X(), s.HalfExtents.Y())
	case "polygon":
		built, err = shape.NewPolygon(s.Vertices)
	default:
		return nil, fmt.Errorf("shape kind %q: %w", s.Kind, ErrInvalidScenario)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Kind, errors.Join(err, ErrInvalidScenario))
	}
	return built, nil
}

// Scene is a world built from a scenario.
type Scene struct {
	World  *crispy.World
	Run    Run
	Bodies []*actor.Body
	Names  []string
}

// Build creates the world and its bodies, with their initial velocities.
func (s *Scenario) Build(opts ...crispy.Option) (*Scene, error) {
	world, err := crispy.NewWorld(s.World, opts...)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		World:  world,
		Run:    s.Run,
		Bodies: make([]*actor.Body, 0, len(s.Bodies)),
		Names:  make([]string, 0, len(s.Bodies)),
	}

	for i, spec := range s.Bodies {
		def, err := spec.Def()
		if err != nil {
			return nil, fmt.Errorf("bodies[%d]: %w", i, err)
		}

		b, err := world.CreateBody(def)
		if err != nil {
			return nil, fmt.Errorf("bodies[%d]: %w", i, err)
		}
		if spec.Velocity != (mgl64.Vec2{}) || spec.AngularVelocity != 0 {
			b.ChangeVelocity(spec.Velocity, spec.AngularVelocity)
		}

		scene.Bodies = append(scene.Bodies, b)
		scene.Names = append(scene.Names, spec.name(i))
	}

	return scene, nil
}

// Def converts the description into a body definition.
func (b BodySpec) Def() (actor.BodyDef, error) {
	bodyType, err := ParseBodyType(b.Type)
	if err != nil {
		return actor.BodyDef{}, err
	}

	def := actor.BodyDef{
		Position:       b.Position,
		Angle:          b.Angle,
		Type:           bodyType,
		Mass:           b.Mass,
		LinearDamping:  b.LinearDamping,
		AngularDamping: b.AngularDamping,
		GravityScale:   1,
		Friction:       b.Friction,
		Restitution:    b.Restitution,
		Sensor:         b.Sensor,
	}
	if b.GravityScale != nil {
		def.GravityScale = *b.GravityScale
	}
	if b.Shape != nil {
		if def.Shape, err = b.Shape.Build(); err != nil {
			return actor.BodyDef{}, err
		}
	}

	return def, nil
}

// Body returns the body created for name.
func (sc *Scene) Body(name string) (*actor.Body, bool) {
	for i, n := range sc.Names {
		if n == name {
			return sc.Bodies[i], true
		}
	}
	return nil, false
}

// Play runs the stepping plan, calling observe after every step. It stops
// at the first error, or when ctx is done.
func (sc *Scene) Play(ctx context.Context, observe func(tick uint32) error) error {
	for range sc.Run.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		run := sc.Run
		if err := sc.World.Step(run.StepSize, run.Foresee, run.Buffering, run.Keep); err != nil {
			return err
		}

		if observe != nil {
			if err := observe(sc.World.Tick()); err != nil {
				return err
			}
		}
	}
	return nil
}
