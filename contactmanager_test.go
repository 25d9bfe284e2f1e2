package crispy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerFixture struct {
	manager *ContactManager
	events  actor.Events
	bodies  []*actor.Body
}

func newManagerFixture() *managerFixture {
	f := &managerFixture{events: actor.NewEvents()}
	f.manager = NewContactManager(&f.events, nil)
	return f
}

// add creates a body at tick 0, foreseen up to tick 1.
func (f *managerFixture) add(t *testing.T, def actor.BodyDef) *actor.Body {
	t.Helper()
	b, err := actor.NewBody(uint32(len(f.bodies)), 0, 0.1, def)
	require.NoError(t, err)
	b.Foresee(1)
	f.bodies = append(f.bodies, b)
	return b
}

func circleAt(t *testing.T, bodyType actor.BodyType, position mgl64.Vec2, radius float64) actor.BodyDef {
	t.Helper()
	circle, err := shape.NewCircle(radius)
	require.NoError(t, err)
	return actor.BodyDef{Type: bodyType, Shape: circle, Position: position, Mass: 1, GravityScale: 1}
}

func TestContactManager_FindNewContacts(t *testing.T) {
	f := newManagerFixture()
	a := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{1.5, 0}, 1))
	f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{10, 0}, 1))

	f.manager.FindNewContacts(f.bodies, 0, 1)
	f.manager.FindNewContacts(f.bodies, 0, 1)

	require.Equal(t, 1, f.manager.Len())
	c, ok := f.manager.Contact(b, a)
	require.True(t, ok)
	assert.Equal(t, uint32(0), c.Current().Tick())
	assert.Equal(t, uint32(1), c.Futur().Tick())
	assert.False(t, c.Futur().IsTouching)

	assert.Equal(t, []*actor.Contact{c}, f.manager.ContactsOf(a))
	assert.Equal(t, []*actor.Contact{c}, f.manager.ContactsOf(b))
	assert.Empty(t, f.manager.ContactsOf(f.bodies[2]))
}

func TestContactManager_Filters(t *testing.T) {
	tests := []struct {
		name   string
		first  actor.BodyDef
		second actor.BodyDef
		want   int
	}{
		{
			name:   "dynamic pair",
			first:  actor.BodyDef{Type: actor.BodyTypeDynamic, Mass: 1},
			second: actor.BodyDef{Type: actor.BodyTypeDynamic, Mass: 1},
			want:   1,
		},
		{
			name:   "static pair",
			first:  actor.BodyDef{Type: actor.BodyTypeStatic},
			second: actor.BodyDef{Type: actor.BodyTypeStatic},
			want:   0,
		},
		{
			name:   "kinematic and static",
			first:  actor.BodyDef{Type: actor.BodyTypeKinematic},
			second: actor.BodyDef{Type: actor.BodyTypeStatic},
			want:   0,
		},
		{
			name:   "dynamic and kinematic",
			first:  actor.BodyDef{Type: actor.BodyTypeDynamic, Mass: 1},
			second: actor.BodyDef{Type: actor.BodyTypeKinematic},
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture()
			first, second := tt.first, tt.second
			first.Shape, _ = shape.NewCircle(1)
			second.Shape, _ = shape.NewCircle(1)
			f.add(t, first)
			f.add(t, second)

			f.manager.FindNewContacts(f.bodies, 0, 1)
			assert.Equal(t, tt.want, f.manager.Len())
		})
	}

	t.Run("without shape", func(t *testing.T) {
		f := newManagerFixture()
		f.add(t, actor.BodyDef{Type: actor.BodyTypeDynamic, Mass: 1})
		f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{}, 1))

		f.manager.FindNewContacts(f.bodies, 0, 1)
		assert.Zero(t, f.manager.Len())
	})

	t.Run("unsupported kinds", func(t *testing.T) {
		f := newManagerFixture()
		box, err := shape.NewBox(1, 1)
		require.NoError(t, err)
		edge, err := shape.NewEdge(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})
		require.NoError(t, err)
		f.add(t, actor.BodyDef{Type: actor.BodyTypeDynamic, Shape: box, Mass: 1})
		f.add(t, actor.BodyDef{Type: actor.BodyTypeStatic, Shape: edge})

		f.manager.FindNewContacts(f.bodies, 0, 1)
		assert.Zero(t, f.manager.Len())
	})
}

func TestContactManager_MixedMaterial(t *testing.T) {
	f := newManagerFixture()
	defA := circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1)
	defA.Friction, defA.Restitution = 0.4, 0.8
	defB := circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{1.5, 0}, 1)
	defB.Friction, defB.Restitution = 0.2, 0.3
	a := f.add(t, defA)
	b := f.add(t, defB)

	f.manager.FindNewContacts(f.bodies, 0, 1)
	c, ok := f.manager.Contact(a, b)
	require.True(t, ok)

	assert.InDelta(t, 0.283, c.Friction(), 1e-3)
	assert.Equal(t, 0.8, c.Restitution())
}

func TestContactManager_Collide(t *testing.T) {
	f := newManagerFixture()
	a := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{1.5, 0}, 1))

	var started, ended int
	f.events.Subscribe(actor.CONTACT_START_FORESEEN, func(actor.Event) { started++ })
	f.events.Subscribe(actor.CONTACT_END_FORESEEN, func(actor.Event) { ended++ })

	f.manager.FindNewContacts(f.bodies, 0, 1)
	f.manager.Collide()

	c, _ := f.manager.Contact(a, b)
	futur := c.Futur()
	require.True(t, futur.IsTouching)
	require.NotNil(t, futur.Manifold)
	assert.Equal(t, 1, futur.Manifold.PointCount)
	assert.Equal(t, mgl64.Vec2{0, 0}, futur.FirstBodyPosition)
	assert.Equal(t, mgl64.Vec2{1.5, 0}, futur.SecondBodyPosition)
	assert.True(t, a.Futur().EnduringContact)
	assert.True(t, b.Futur().EnduringContact)
	assert.Equal(t, 1, started)

	// unchanged state, no transition
	f.manager.Collide()
	assert.Equal(t, 1, started)

	b.FuturMomentum().Position = mgl64.Vec2{5, 0}
	f.manager.Collide()
	assert.False(t, c.Futur().IsTouching)
	assert.Nil(t, c.Futur().Manifold)
	assert.Equal(t, 1, ended)
}

func TestContactManager_CollideCarriesImpulses(t *testing.T) {
	f := newManagerFixture()
	a := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{1.5, 0}, 1))

	started := 0
	f.events.Subscribe(actor.CONTACT_START_FORESEEN, func(actor.Event) { started++ })

	f.manager.FindNewContacts(f.bodies, 0, 1)
	f.manager.Collide()
	c, ok := f.manager.Contact(a, b)
	require.True(t, ok)
	require.True(t, c.Futur().IsTouching)

	previous := c.FuturMomentum().Manifold
	require.Equal(t, 1, previous.PointCount)
	previous.Points[0].NormalImpulse = 2
	previous.Points[0].TangentImpulse = 0.5

	// foresee one more tick
	for _, body := range f.bodies {
		body.Foresee(1)
	}
	c.Foresee(1)
	f.manager.Collide()

	futur := c.Futur()
	assert.Equal(t, uint32(2), futur.Tick())
	require.True(t, futur.IsTouching)
	assert.Equal(t, 2.0, futur.Manifold.Points[0].NormalImpulse)
	assert.Equal(t, 0.5, futur.Manifold.Points[0].TangentImpulse)
	assert.Equal(t, 1, started)

	// the manifold of the previous tick is not shared
	futur.Manifold.Points[0].NormalImpulse = 7
	atOne, ok := c.MomentumAt(1)
	require.True(t, ok)
	assert.Equal(t, 2.0, atOne.Manifold.Points[0].NormalImpulse)
}

func TestContactManager_Sensor(t *testing.T) {
	f := newManagerFixture()
	a := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	defB := circleAt(t, actor.BodyTypeStatic, mgl64.Vec2{1.5, 0}, 1)
	defB.Sensor = true
	b := f.add(t, defB)

	f.manager.FindNewContacts(f.bodies, 0, 1)
	f.manager.Collide()

	c, ok := f.manager.Contact(a, b)
	require.True(t, ok)
	assert.True(t, c.IsSensor())
	assert.True(t, c.Futur().IsTouching)
	assert.Nil(t, c.Futur().Manifold)
	assert.False(t, a.Futur().EnduringContact)
}

func TestContactManager_Prune(t *testing.T) {
	f := newManagerFixture()
	a := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, 1))
	b := f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{1.99, 0}, 1))
	f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 1.5}, 1))

	f.manager.FindNewContacts(f.bodies, 0, 1)
	require.Equal(t, 3, f.manager.Len())

	// a and b overlap by their boxes only
	b.FuturMomentum().Position = mgl64.Vec2{1.9, 1.9}
	f.manager.Collide()

	dropped := f.manager.Prune()
	require.Len(t, dropped, 1)
	assert.Same(t, a, dropped[0].First())
	assert.Same(t, b, dropped[0].Second())
	assert.Equal(t, 2, f.manager.Len())

	_, ok := f.manager.Contact(a, b)
	assert.False(t, ok)
	assert.Len(t, f.manager.ContactsOf(a), 1)
	assert.Len(t, f.manager.ContactsOf(b), 1)
}

func TestContactManager_SortedByBodyIDs(t *testing.T) {
	f := newManagerFixture()
	for range 4 {
		f.add(t, circleAt(t, actor.BodyTypeDynamic, mgl64.Vec2{}, 1))
	}

	// reversed body order to make creation order differ from id order
	reversed := []*actor.Body{f.bodies[3], f.bodies[2], f.bodies[1], f.bodies[0]}
	f.manager.FindNewContacts(reversed, 0, 1)

	contacts := f.manager.Contacts()
	require.Len(t, contacts, 6)

	var keys []pairKey
	for _, c := range contacts {
		keys = append(keys, contactKey(c))
	}
	assert.Equal(t, []pairKey{
		{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
	}, keys)

	var others []uint32
	for _, c := range f.manager.ContactsOf(f.bodies[2]) {
		others = append(others, c.Other(f.bodies[2]).ID())
	}
	assert.Equal(t, []uint32{0, 1, 3}, others)
}
