package pipeline

// Render pipeline: data generation (external command or the built-in
// simulation), load, chart, export.
// Any failing step aborts the run; nothing is written unless every step
// before the export succeeded.

import (
	"context"
	"fmt"
	"time"

	"grafica-energia/internal/config"
	"grafica-energia/internal/dataset"
	"grafica-energia/internal/features/chart"
	"grafica-energia/internal/infra/exec"
	"grafica-energia/internal/infra/fs"
	logging "grafica-energia/internal/infra/log"

	"go.uber.org/zap"
)

// Result describes a rendered chart.
type Result struct {
	OutputPath string
	Size       int64
	Summary    dataset.Summary
}

// Run renders the chart described by cfg.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	startTime := time.Now()

	switch {
	case cfg.Input.GenerateCommand != "":
		if err := generate(ctx, cfg.Input); err != nil {
			return nil, err
		}
	case cfg.Simulation.Enabled:
		if err := simulateIfStale(ctx, cfg); err != nil {
			return nil, err
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	ds, err := dataset.Load(cfg.Input.Path)
	if err != nil {
		logging.LogError("Failed to load data", zap.String("path", cfg.Input.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	summary := dataset.Summarize(ds)
	logging.LogInfo("Data loaded",
		zap.String("path", cfg.Input.Path),
		zap.Int("rows", summary.Rows),
		zap.Float64("energyMin", summary.EnergyMin),
		zap.Float64("energyMax", summary.EnergyMax))

	if summary.EnergyMin < chart.YMin || summary.EnergyMax > chart.YMax {
		logging.LogWarn("Energy values fall outside the fixed y range and will be clipped",
			zap.Float64("yMin", chart.YMin),
			zap.Float64("yMax", chart.YMax))
	}

	p, err := chart.NewEnergyChart(ds, cfg.Chart.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}

	size, err := fs.ExportPNG(p, cfg.Output.Path)
	if err != nil {
		logging.LogError("Failed to export chart", zap.String("path", cfg.Output.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to export chart: %w", err)
	}

	logging.LogSuccess("Energy chart generated",
		zap.String("filename", cfg.Output.Path),
		zap.Int64("fileSize", size),
		zap.Int("pointsCount", summary.Rows),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return &Result{OutputPath: cfg.Output.Path, Size: size, Summary: summary}, nil
}

func generate(ctx context.Context, in config.InputConfig) error {
	startTime := time.Now()
	output, err := exec.RunCommand(ctx, in.GenerateCommand, in.GenerateTimeoutDuration())
	if err != nil {
		logging.LogError("Data generation failed",
			zap.String("command", in.GenerateCommand),
			zap.String("output", string(output)),
			zap.Error(err))
		return fmt.Errorf("failed to generate data: %w", err)
	}
	logging.LogSuccess("Data generated",
		zap.String("command", in.GenerateCommand),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}
