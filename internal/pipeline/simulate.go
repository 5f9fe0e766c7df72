package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"grafica-energia/internal/config"
	logging "grafica-energia/internal/infra/log"
	"grafica-energia/internal/simulation"

	"go.uber.org/zap"
)

// Simulate runs the orbit simulation described by cfg and writes the energy
// table to cfg.Input.Path.
func Simulate(ctx context.Context, cfg *config.Config) (*simulation.Report, error) {
	sim := cfg.Simulation
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	report, err := simulation.WriteFiles(ctx, sim.ConditionsPath, sim.SIUnits, simulation.Options{
		Step:        sim.Step,
		Steps:       sim.Steps,
		SampleEvery: sim.SampleEvery,
	}, cfg.Input.Path, sim.TrajectoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate: %w", err)
	}
	return report, nil
}

// simulateIfStale regenerates the data file when the initial conditions are
// newer than it. Without a conditions file the data file is used as is.
func simulateIfStale(ctx context.Context, cfg *config.Config) error {
	condInfo, err := os.Stat(cfg.Simulation.ConditionsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogDebug("No initial conditions, using data file as is",
				zap.String("conditions", cfg.Simulation.ConditionsPath))
			return nil
		}
		return fmt.Errorf("failed to stat initial conditions: %w", err)
	}

	if dataInfo, err := os.Stat(cfg.Input.Path); err == nil && !dataInfo.ModTime().Before(condInfo.ModTime()) {
		logging.LogDebug("Data file is up to date",
			zap.String("path", cfg.Input.Path),
			zap.String("conditions", cfg.Simulation.ConditionsPath))
		return nil
	}

	_, err = Simulate(ctx, cfg)
	return err
}
