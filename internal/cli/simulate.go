package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	crispy "github.com/saad-KH/CrispyPhysics-sub000"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/internal/record"
	"github.com/saad-KH/CrispyPhysics-sub000/internal/scenario"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database string
	Every    uint32
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a scenario and print the final state",
		Long: `Run a YAML scenario: build its world, step it following its run plan
and print the committed state of every body.

With --db, every committed momentum and contact transition is stored in a
SQLite database under a new run id.

Example:
  crispy simulate ./ground.yaml
  crispy simulate --db ./runs.db --every 10 --format json ./ground.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite database recording the run")
	cmd.Flags().Uint32Var(&opts.Every, "every", 0, "also print the bodies every N ticks")

	return cmd
}

// BodySummary is the committed state of a body.
type BodySummary struct {
	ID              uint32     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Position        mgl64.Vec2 `json:"position"`
	Angle           float64    `json:"angle"`
	Velocity        mgl64.Vec2 `json:"velocity"`
	AngularVelocity float64    `json:"angular_velocity"`
	EnduringContact bool       `json:"enduring_contact"`
}

// Snapshot lists the bodies at a tick.
type Snapshot struct {
	Tick   uint32        `json:"tick"`
	Bodies []BodySummary `json:"bodies"`
}

// SimulateResult is the output of the simulate command.
type SimulateResult struct {
	Scenario        string        `json:"scenario"`
	RunID           string        `json:"run_id,omitempty"`
	Tick            uint32        `json:"tick"`
	PastTick        uint32        `json:"past_tick"`
	FuturTick       uint32        `json:"futur_tick"`
	ContactsStarted int           `json:"contacts_started"`
	ContactsEnded   int           `json:"contacts_ended"`
	Snapshots       []Snapshot    `json:"snapshots,omitempty"`
	Bodies          []BodySummary `json:"bodies"`
}

func (r SimulateResult) String() string {
	var sb strings.Builder

	for _, s := range r.Snapshots {
		fmt.Fprintf(&sb, "tick %d\n", s.Tick)
		writeBodies(&sb, s.Bodies)
	}

	fmt.Fprintf(&sb, "scenario %s", r.Scenario)
	if r.RunID != "" {
		fmt.Fprintf(&sb, " (run %s)", r.RunID)
	}
	fmt.Fprintf(&sb, "\ntick %d (past %d, futur %d), contacts started %d, ended %d\n",
		r.Tick, r.PastTick, r.FuturTick, r.ContactsStarted, r.ContactsEnded)
	writeBodies(&sb, r.Bodies)

	return strings.TrimSuffix(sb.String(), "\n")
}

func writeBodies(sb *strings.Builder, bodies []BodySummary) {
	for _, b := range bodies {
		fmt.Fprintf(sb, "  %-12s %-9s position (%.4f, %.4f) angle %.4f velocity (%.4f, %.4f) w %.4f",
			b.Name, b.Type, b.Position.X(), b.Position.Y(), b.Angle,
			b.Velocity.X(), b.Velocity.Y(), b.AngularVelocity)
		if b.EnduringContact {
			sb.WriteString(" resting")
		}
		sb.WriteString("\n")
	}
}

func summarize(scene *scenario.Scene) []BodySummary {
	summaries := make([]BodySummary, 0, len(scene.Bodies))
	for i, b := range scene.Bodies {
		m := b.Current()
		summaries = append(summaries, BodySummary{
			ID:              b.ID(),
			Name:            scene.Names[i],
			Type:            b.Type().String(),
			Position:        m.Position,
			Angle:           m.Angle,
			Velocity:        m.LinearVelocity,
			AngularVelocity: m.AngularVelocity,
			EnduringContact: m.EnduringContact,
		})
	}
	return summaries
}

func runSimulate(ctx context.Context, opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(opts.RootOptions, cmd)

	s, err := scenario.LoadFile(path)
	if err != nil {
		_ = formatter.Error(err.Error())
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	scene, err := s.Build(crispy.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(err.Error())
		return WrapExitError(ExitCommandError, "failed to build scenario", err)
	}

	result := SimulateResult{Scenario: s.Name}
	events := scene.World.Events()
	events.Subscribe(actor.CONTACT_STARTED, func(actor.Event) { result.ContactsStarted++ })
	events.Subscribe(actor.CONTACT_ENDED, func(actor.Event) { result.ContactsEnded++ })

	var recorder *record.Recorder
	if opts.Database != "" {
		logger.Debug("opening database", "path", opts.Database)
		store, err := record.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(err.Error())
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer store.Close()

		recorder, err = record.NewRecorder(ctx, store, s.Name, scene.World, scene.Names)
		if err != nil {
			_ = formatter.Error(err.Error())
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}
		result.RunID = recorder.RunID()
	}

	logger.Info("simulating", "scenario", s.Name, "bodies", len(scene.Bodies), "steps", s.Run.Steps)

	err = scene.Play(ctx, func(tick uint32) error {
		if recorder != nil {
			if err := recorder.Commit(ctx); err != nil {
				return err
			}
		}
		if opts.Every > 0 && tick%opts.Every == 0 {
			result.Snapshots = append(result.Snapshots, Snapshot{Tick: tick, Bodies: summarize(scene)})
		}
		return nil
	})
	if err == nil && recorder != nil {
		err = recorder.Err()
	}
	if err != nil {
		_ = formatter.Error(err.Error())
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	result.Tick = scene.World.Tick()
	result.PastTick = scene.World.PastTick()
	result.FuturTick = scene.World.FuturTick()
	result.Bodies = summarize(scene)

	logger.Info("simulation done", "tick", result.Tick, "contacts_started", result.ContactsStarted)
	return formatter.Success(result)
}
