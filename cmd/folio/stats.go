package main

import (
	"os"

	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/output"
	"github.com/spf13/cobra"
)

var (
	statsView    viewFlags
	statsFormat  string
	statsNoColor bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary, files and language breakdown",
	Long: `Print the summary statistics, the per-file line counts and the language
breakdown of the brushed commits for one slider position.

Formats: text (default), quiet (one line), json (the full view).`,
	RunE: runStats,
}

func init() {
	statsView.register(statsCmd)
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text, quiet or json")
	statsCmd.Flags().BoolVar(&statsNoColor, "no-color", false, "disable colored output")
}

func runStats(cmd *cobra.Command, args []string) error {
	level, err := output.ParseVerbosity(statsFormat)
	if err != nil {
		return err
	}
	if err := validate(config.ValidationContextRender); err != nil {
		return err
	}

	commits, err := loadCommits(cmd.Context())
	if err != nil {
		return err
	}
	u, err := statsView.view(cmd, commits)
	if err != nil {
		return err
	}

	color := !statsNoColor && output.IsTerminal(os.Stdout)
	return output.NewFormatter(level, color).Format(cmd.OutOrStdout(), u)
}
