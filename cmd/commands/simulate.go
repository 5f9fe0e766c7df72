package commands

// Command to run the orbit simulation and write the energy table
// It always integrates, even when the table is newer than the conditions.

import (
	"fmt"

	"grafica-energia/internal/pipeline"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Integrate the planetary system and write the (time, energy) table",
	Long: `Read the initial conditions (mass, x, vy per body), integrate the orbits with
velocity Verlet in units where G = 1 and write the total energy every
simulation.sample_every steps to input.path.`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	report, err := pipeline.Simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows, t = %g, energy %.6e -> %.6e)\n",
		cfg.Input.Path, report.Rows, report.Duration, report.InitialEnergy, report.FinalEnergy)
	return nil
}
