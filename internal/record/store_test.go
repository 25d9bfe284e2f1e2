package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	crispy "github.com/saad-KH/CrispyPhysics-sub000"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// groundWorld drops a ball of radius 0.5 from y = 1 on a flat ground.
func groundWorld(t *testing.T) (*crispy.World, *actor.Body) {
	t.Helper()
	cfg := crispy.DefaultConfig()
	cfg.FixedStep = 0.01
	w, err := crispy.NewWorld(cfg)
	require.NoError(t, err)

	edge, err := shape.NewEdge(mgl64.Vec2{-10, 0}, mgl64.Vec2{10, 0})
	require.NoError(t, err)
	_, err = w.CreateBody(actor.BodyDef{Type: actor.BodyTypeStatic, Shape: edge})
	require.NoError(t, err)

	circle, err := shape.NewCircle(0.5)
	require.NoError(t, err)
	ball, err := w.CreateBody(actor.BodyDef{
		Type:         actor.BodyTypeDynamic,
		Shape:        circle,
		Position:     mgl64.Vec2{0, 1},
		Mass:         1,
		GravityScale: 1,
	})
	require.NoError(t, err)

	return w, ball
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	runID, err := s1.BeginRun(ctx, "first", 0.01)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "first", runs[0].Scenario)
	assert.Equal(t, 0.01, runs[0].FixedStep)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestBeginRun_UUIDv7(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.BeginRun(ctx, "a", 0.1)
	require.NoError(t, err)
	second, err := s.BeginRun(ctx, "b", 0.1)
	require.NoError(t, err)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, first, second)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].Scenario)
}

func TestWriteMomentums_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	w, ball := groundWorld(t)

	runID, err := s.BeginRun(ctx, "ground", 0.01)
	require.NoError(t, err)
	for _, b := range w.Bodies() {
		require.NoError(t, s.WriteBody(ctx, runID, b.ID(), "b", b.Type()))
	}
	// registering twice is a no-op
	require.NoError(t, s.WriteBody(ctx, runID, 0, "b", actor.BodyTypeStatic))

	require.NoError(t, s.WriteMomentums(ctx, runID, w.Bodies()))
	ball.ChangeSituation(mgl64.Vec2{3, 4}, 0.5)
	require.NoError(t, s.WriteMomentums(ctx, runID, w.Bodies()))

	records, err := s.Trajectory(ctx, runID, ball.ID())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, MomentumRecord{BodyID: 1, Tick: 0, X: 3, Y: 4, Angle: 0.5}, records[0])
}

func TestWriteMomentums_UnknownBody(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	w, _ := groundWorld(t)

	runID, err := s.BeginRun(ctx, "ground", 0.01)
	require.NoError(t, err)

	err = s.WriteMomentums(ctx, runID, w.Bodies())
	require.Error(t, err)

	records, err := s.Trajectory(ctx, runID, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecorder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	w, ball := groundWorld(t)

	r, err := NewRecorder(ctx, s, "ground", w, []string{"ground"})
	require.NoError(t, err)

	for range 100 {
		require.NoError(t, w.Step(1, 10, 10, 100))
		require.NoError(t, r.Commit(ctx))
	}
	require.NoError(t, r.Err())

	trajectory, err := s.Trajectory(ctx, r.RunID(), ball.ID())
	require.NoError(t, err)
	require.Len(t, trajectory, 100)
	assert.Equal(t, uint32(1), trajectory[0].Tick)
	assert.Equal(t, uint32(100), trajectory[99].Tick)
	assert.Less(t, trajectory[99].Y, trajectory[0].Y)
	assert.True(t, trajectory[99].EnduringContact)

	events, err := s.ContactEvents(ctx, r.RunID())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "started", events[0].Kind)
	assert.Equal(t, uint32(0), events[0].FirstBodyID)
	assert.Equal(t, uint32(1), events[0].SecondBodyID)
	assert.Equal(t, 1, events[0].PointCount)

	var name string
	require.NoError(t, s.db.QueryRow(
		"SELECT name FROM bodies WHERE run_id = ? AND body_id = 1", r.RunID(),
	).Scan(&name))
	assert.Equal(t, "body1", name)
}

func TestRecorder_ReplayAfterRollBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	w, ball := groundWorld(t)

	r, err := NewRecorder(ctx, s, "ground", w, nil)
	require.NoError(t, err)

	for range 60 {
		require.NoError(t, w.Step(1, 10, 10, 100))
		require.NoError(t, r.Commit(ctx))
	}
	require.NoError(t, w.RollBack(20, 100))
	for range 40 {
		require.NoError(t, w.Step(1, 10, 10, 100))
		require.NoError(t, r.Commit(ctx))
	}
	require.NoError(t, r.Err())

	trajectory, err := s.Trajectory(ctx, r.RunID(), ball.ID())
	require.NoError(t, err)
	assert.Len(t, trajectory, 60)

	// started, ended by the rollback, started again
	events, err := s.ContactEvents(ctx, r.RunID())
	require.NoError(t, err)
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"started", "ended", "started"}, kinds)
}
