package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	crispy "github.com/saad-KH/CrispyPhysics-sub000"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
)

// ContactDebugger is notified of the contact transitions of the world.
type ContactDebugger interface {
	DebugForeseen(event actor.Event)
	DebugCommitted(event actor.Event)
	DebugFuturCleared(event actor.FuturClearedEvent)
}

// SimpleDebugger prints every notification.
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugForeseen(event actor.Event) {
	switch e := event.(type) {
	case actor.ContactStartForeseenEvent:
		fmt.Printf("  foreseen start at tick %d\n", e.Momentum.Tick())
	case actor.ContactEndForeseenEvent:
		fmt.Printf("  foreseen end at tick %d\n", e.Momentum.Tick())
	}
}

func (d *SimpleDebugger) DebugCommitted(event actor.Event) {
	switch e := event.(type) {
	case actor.ContactStartedEvent:
		fmt.Printf("  contact started at tick %d, %d point(s)\n", e.Momentum.Tick(), e.Momentum.Manifold.PointCount)
	case actor.ContactEndedEvent:
		fmt.Printf("  contact ended at tick %d\n", e.Momentum.Tick())
	}
}

func (d *SimpleDebugger) DebugFuturCleared(event actor.FuturClearedEvent) {
	fmt.Printf("  futur cleared after tick %d\n", event.Tick)
}

// SetupScene creates a bouncing ball above a flat ground.
func SetupScene(debugger ContactDebugger) (*crispy.World, *actor.Body, error) {
	cfg := crispy.DefaultConfig()
	world, err := crispy.NewWorld(cfg)
	if err != nil {
		return nil, nil, err
	}

	events := world.Events()
	events.Subscribe(actor.CONTACT_START_FORESEEN, debugger.DebugForeseen)
	events.Subscribe(actor.CONTACT_END_FORESEEN, debugger.DebugForeseen)
	events.Subscribe(actor.CONTACT_STARTED, debugger.DebugCommitted)
	events.Subscribe(actor.CONTACT_ENDED, debugger.DebugCommitted)
	events.Subscribe(actor.FUTUR_CLEARED, func(e actor.Event) {
		debugger.DebugFuturCleared(e.(actor.FuturClearedEvent))
	})

	edge, err := shape.NewEdge(mgl64.Vec2{-20, 0}, mgl64.Vec2{20, 0})
	if err != nil {
		return nil, nil, err
	}
	if _, err := world.CreateBody(actor.BodyDef{Type: actor.BodyTypeStatic, Shape: edge, Friction: 0.6}); err != nil {
		return nil, nil, err
	}

	circle, err := shape.NewCircle(0.5)
	if err != nil {
		return nil, nil, err
	}
	ball, err := world.CreateBody(actor.BodyDef{
		Type:         actor.BodyTypeDynamic,
		Shape:        circle,
		Position:     mgl64.Vec2{0, 5},
		Mass:         1,
		GravityScale: 1,
		Friction:     0.6,
		Restitution:  0.8,
	})
	if err != nil {
		return nil, nil, err
	}

	return world, ball, nil
}

func main() {
	world, ball, err := SetupScene(&SimpleDebugger{})
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	const (
		maxSteps  = 240
		foresee   = 30
		buffering = 10
		keep      = 120
	)

	for step := 0; step < maxSteps; step++ {
		if step == 60 {
			fmt.Println("--- kick ---")
			ball.ApplyLinearImpulseToCenter(mgl64.Vec2{2, 0})
		}

		if err := world.Step(1, foresee, buffering, keep); err != nil {
			fmt.Println("step failed:", err)
			return
		}

		m := ball.Current()
		fmt.Printf("tick %3d  position %v  velocity %v  enduring %v  (futur %d)\n",
			world.Tick(), m.Position, m.LinearVelocity, m.EnduringContact, world.FuturTick())
	}

	fmt.Println("--- roll back 100 ticks ---")
	if err := world.RollBack(world.Tick()-100, keep); err != nil {
		fmt.Println("roll back failed:", err)
		return
	}
	fmt.Printf("tick %d  position %v\n", world.Tick(), ball.Current().Position)
}
