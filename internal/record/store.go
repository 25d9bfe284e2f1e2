// Package record stores simulation runs in SQLite: the committed momentum
// of every body at every tick, and the committed contact transitions.
package record

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for simulation runs.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path, applying
// pragmas and schema. It is safe to open an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// RunInfo describes a recorded run.
type RunInfo struct {
	ID        string
	Scenario  string
	FixedStep float64
	CreatedAt time.Time
}

// BeginRun registers a new run and returns its id, a UUIDv7.
func (s *Store) BeginRun(ctx context.Context, scenario string, fixedStep float64) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, fixed_step, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), scenario, fixedStep, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	return id.String(), nil
}

// Runs lists the recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, fixed_step, created_at FROM runs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			run       RunInfo
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Scenario, &run.FixedStep, &createdAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// WriteBody registers a body of a run. Writing it twice is a no-op.
func (s *Store) WriteBody(ctx context.Context, runID string, bodyID uint32, name string, bodyType actor.BodyType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bodies (run_id, body_id, name, body_type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, body_id) DO NOTHING
	`, runID, bodyID, name, bodyType.String())
	if err != nil {
		return fmt.Errorf("write body %d: %w", bodyID, err)
	}
	return nil
}

// WriteMomentums stores the current momentum of every body in one
// transaction. A tick already recorded is overwritten.
func (s *Store) WriteMomentums(ctx context.Context, runID string, bodies []*actor.Body) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write momentums: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO momentums
		(run_id, body_id, tick, x, y, angle, vx, vy, angular_velocity, enduring_contact)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, body_id, tick) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			angle = excluded.angle,
			vx = excluded.vx,
			vy = excluded.vy,
			angular_velocity = excluded.angular_velocity,
			enduring_contact = excluded.enduring_contact
	`)
	if err != nil {
		return fmt.Errorf("write momentums: %w", err)
	}
	defer stmt.Close()

	for _, b := range bodies {
		m := b.Current()
		_, err = stmt.ExecContext(ctx,
			runID,
			b.ID(),
			m.Tick(),
			m.Position.X(),
			m.Position.Y(),
			m.Angle,
			m.LinearVelocity.X(),
			m.LinearVelocity.Y(),
			m.AngularVelocity,
			m.EnduringContact,
		)
		if err != nil {
			return fmt.Errorf("write momentum of body %d: %w", b.ID(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write momentums: %w", err)
	}
	return nil
}

// MomentumRecord is a stored body state.
type MomentumRecord struct {
	BodyID          uint32
	Tick            uint32
	X, Y            float64
	Angle           float64
	VX, VY          float64
	AngularVelocity float64
	EnduringContact bool
}

// Trajectory returns the recorded momentums of a body, by tick.
func (s *Store) Trajectory(ctx context.Context, runID string, bodyID uint32) ([]MomentumRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body_id, tick, x, y, angle, vx, vy, angular_velocity, enduring_contact
		FROM momentums
		WHERE run_id = ? AND body_id = ?
		ORDER BY tick
	`, runID, bodyID)
	if err != nil {
		return nil, fmt.Errorf("trajectory of body %d: %w", bodyID, err)
	}
	defer rows.Close()

	var records []MomentumRecord
	for rows.Next() {
		var r MomentumRecord
		if err := rows.Scan(&r.BodyID, &r.Tick, &r.X, &r.Y, &r.Angle, &r.VX, &r.VY, &r.AngularVelocity, &r.EnduringContact); err != nil {
			return nil, fmt.Errorf("trajectory of body %d: %w", bodyID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ContactEventRecord is a stored contact transition.
type ContactEventRecord struct {
	Seq          int64
	Tick         uint32
	Kind         string
	FirstBodyID  uint32
	SecondBodyID uint32
	PointCount   int
}

// WriteContactEvent appends a contact transition.
func (s *Store) WriteContactEvent(ctx context.Context, runID string, e ContactEventRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_events (run_id, tick, kind, first_body_id, second_body_id, point_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, e.Tick, e.Kind, e.FirstBodyID, e.SecondBodyID, e.PointCount)
	if err != nil {
		return fmt.Errorf("write contact event: %w", err)
	}
	return nil
}

// ContactEvents returns the contact transitions of a run in emission
// order.
func (s *Store) ContactEvents(ctx context.Context, runID string) ([]ContactEventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, tick, kind, first_body_id, second_body_id, point_count
		FROM contact_events
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("contact events: %w", err)
	}
	defer rows.Close()

	var records []ContactEventRecord
	for rows.Next() {
		var r ContactEventRecord
		if err := rows.Scan(&r.Seq, &r.Tick, &r.Kind, &r.FirstBodyID, &r.SecondBodyID, &r.PointCount); err != nil {
			return nil, fmt.Errorf("contact events: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
