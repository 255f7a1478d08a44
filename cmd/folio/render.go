package main

import (
	"io"
	"os"

	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/spf13/cobra"
)

var (
	renderView   viewFlags
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the commit chart as SVG",
	Long: `Render the scatterplot at a slider position as a standalone SVG.

Examples:
  # Full history to stdout
  folio render

  # Commits up to the midpoint, with a brushed region, to a file
  folio render --progress 50 --brush 100,50,400,300 -o chart.svg`,
	RunE: runRender,
}

func init() {
	renderView.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := validate(config.ValidationContextRender); err != nil {
		return err
	}

	commits, err := loadCommits(cmd.Context())
	if err != nil {
		return err
	}
	u, err := renderView.view(cmd, commits)
	if err != nil {
		return err
	}

	if renderOutput != "" {
		err = writeChartFile(renderOutput, u.Frame)
	} else {
		err = writeChart(cmd.OutOrStdout(), u.Frame)
	}
	if err != nil {
		return err
	}
	logger.WithField("marks", len(u.Marks)).Debug("Rendered chart")
	return nil
}

func writeChart(w io.Writer, frame *chart.Frame) error {
	if err := chart.WriteSVG(w, frame); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityMedium, "render chart")
	}
	return nil
}

// writeChartFile writes the chart to path, reporting a failed close
func writeChartFile(path string, frame *chart.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.FileSystemError(err, "create chart file").WithContext("path", path)
	}
	if err := writeChart(f, frame); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.FileSystemError(err, "close chart file").WithContext("path", path)
	}
	return nil
}
