package commands

// Root command for Cobra CLI
// Running the binary without a subcommand renders the chart.
// Registers subcommands (render, simulate, summary, publish)

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grafica-energia/internal/config"
	logging "grafica-energia/internal/infra/log"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "grafica-energia",
	Short: "Render the energy-versus-time chart of the orbit simulation",
	Long: `grafica-energia reads the (time, energy) table written by the orbit simulator
and renders it as a line chart with a fixed energy scale at 300 DPI.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runRender,
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer logging.Sync()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(publishCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Init(loaded.App.LogDir); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
