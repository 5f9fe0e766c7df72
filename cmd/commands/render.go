package commands

import (
	"fmt"

	"grafica-energia/internal/pipeline"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the energy chart to PNG",
	Long:  `Load the data file, draw energy against time on the fixed [-0.0002, 0.0002] scale and save the chart at 300 DPI.`,
	RunE:  runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	res, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes, %d points)\n", res.OutputPath, res.Size, res.Summary.Rows)
	return nil
}
