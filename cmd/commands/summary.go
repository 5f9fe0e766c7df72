package commands

import (
	"fmt"

	"grafica-energia/internal/dataset"
	logging "grafica-energia/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print row count, ranges and relative energy drift of the data file",
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(cfg.Input.Path)
	if err != nil {
		logging.LogError("Failed to load data", zap.String("path", cfg.Input.Path), zap.Error(err))
		return fmt.Errorf("failed to load data: %w", err)
	}

	s := dataset.Summarize(ds)
	logging.LogInfo("Data summary",
		zap.String("path", cfg.Input.Path),
		zap.Int("rows", s.Rows),
		zap.Float64("relativeDrift", s.RelativeDrift))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:           %s\n", cfg.Input.Path)
	fmt.Fprintf(out, "rows:           %d\n", s.Rows)
	fmt.Fprintf(out, "time:           %g .. %g\n", s.TimeStart, s.TimeEnd)
	fmt.Fprintf(out, "energy:         %g .. %g\n", s.EnergyMin, s.EnergyMax)
	fmt.Fprintf(out, "first/last:     %g / %g\n", s.EnergyFirst, s.EnergyLast)
	fmt.Fprintf(out, "relative drift: %.3e\n", s.RelativeDrift)
	return nil
}
