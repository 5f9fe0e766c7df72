package simulation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	logging "grafica-energia/internal/infra/log"

	"go.uber.org/zap"
)

// Options controls one simulation run.
type Options struct {
	Step        float64
	Steps       int
	SampleEvery int // write a sample every SampleEvery steps
}

func (o Options) validate() error {
	if o.Steps < 0 {
		return fmt.Errorf("invalid steps %d: must not be negative", o.Steps)
	}
	if o.SampleEvery <= 0 {
		return fmt.Errorf("invalid sample interval %d: must be positive", o.SampleEvery)
	}
	return nil
}

// Report describes a finished run.
type Report struct {
	Rows          int
	Duration      float64 // simulated time
	InitialEnergy float64
	FinalEnergy   float64
}

// Simulate integrates bodies and writes a "time energy" row to energies every
// SampleEvery steps and once more for the final state. When trajectory is not
// nil, the positions of every body are written there as "x,y" lines with a
// blank line after each sample.
func Simulate(ctx context.Context, bodies []Body, opts Options, energies, trajectory io.Writer) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	sys, err := NewSystem(bodies, opts.Step)
	if err != nil {
		return nil, err
	}

	report := &Report{InitialEnergy: sys.Energy()}
	sample := func() error {
		e := sys.Energy()
		report.Rows++
		report.FinalEnergy = e
		if _, err := fmt.Fprintf(energies, "%s %s\n", formatFloat(sys.Time()), formatFloat(e)); err != nil {
			return fmt.Errorf("failed to write energy sample: %w", err)
		}
		if trajectory == nil {
			return nil
		}
		for _, b := range sys.bodies {
			if _, err := fmt.Fprintf(trajectory, "%s,%s\n", formatFloat(b.Pos.X), formatFloat(b.Pos.Y)); err != nil {
				return fmt.Errorf("failed to write trajectory sample: %w", err)
			}
		}
		_, err := io.WriteString(trajectory, "\n")
		return err
	}

	for j := 0; j < opts.Steps; j++ {
		if j%opts.SampleEvery == 0 {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("simulation cancelled at step %d: %w", j, ctx.Err())
			}
			if err := sample(); err != nil {
				return nil, err
			}
		}
		sys.Step()
	}
	if err := sample(); err != nil {
		return nil, err
	}

	report.Duration = sys.Time()
	return report, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFiles loads the initial conditions, runs the simulation and saves the
// energy table to energyPath and, when trajectoryPath is set, the positions.
// Files are replaced only after the run succeeds.
func WriteFiles(ctx context.Context, conditionsPath string, siUnits bool, opts Options, energyPath, trajectoryPath string) (*Report, error) {
	startTime := time.Now()

	bodies, err := LoadConditions(conditionsPath, siUnits)
	if err != nil {
		return nil, err
	}
	logging.LogInfo("Initial conditions loaded",
		zap.String("path", conditionsPath),
		zap.Int("bodies", len(bodies)),
		zap.Int("steps", opts.Steps),
		zap.Float64("step", opts.Step))

	energyOut, err := createTemp(energyPath)
	if err != nil {
		return nil, err
	}
	defer energyOut.discard()

	var trajectoryOut *tempFile
	var trajectory io.Writer
	if trajectoryPath != "" {
		trajectoryOut, err = createTemp(trajectoryPath)
		if err != nil {
			return nil, err
		}
		defer trajectoryOut.discard()
		trajectory = trajectoryOut.w
	}

	report, err := Simulate(ctx, bodies, opts, energyOut.w, trajectory)
	if err != nil {
		logging.LogError("Simulation failed", zap.String("conditions", conditionsPath), zap.Error(err))
		return nil, err
	}

	if err := energyOut.commit(); err != nil {
		return nil, err
	}
	if trajectoryOut != nil {
		if err := trajectoryOut.commit(); err != nil {
			return nil, err
		}
	}

	drift := 0.0
	if report.InitialEnergy != 0 {
		drift = (report.FinalEnergy - report.InitialEnergy) / report.InitialEnergy
	}
	logging.LogSuccess("Simulation finished",
		zap.String("filename", energyPath),
		zap.Int("rows", report.Rows),
		zap.Float64("relativeDrift", drift),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return report, nil
}

// tempFile is written next to its target and renamed over it on commit.
type tempFile struct {
	f      *os.File
	w      *bufio.Writer
	target string
	done   bool
}

func createTemp(target string) (*tempFile, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(target + ".tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file for %s: %w", target, err)
	}
	return &tempFile{f: f, w: bufio.NewWriter(f), target: target}, nil
}

func (t *tempFile) commit() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.target, err)
	}
	if err := t.f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.target, err)
	}
	if err := os.Rename(t.f.Name(), t.target); err != nil {
		os.Remove(t.f.Name())
		return fmt.Errorf("failed to rename temporary file to %s: %w", t.target, err)
	}
	t.done = true
	return nil
}

func (t *tempFile) discard() {
	if t.done {
		return
	}
	t.f.Close()
	os.Remove(t.f.Name())
}
