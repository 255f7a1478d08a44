package main

import (
	"os"

	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/output"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/spf13/cobra"
)

var scrubStep float64

var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Scrub through commit history in the terminal",
	Long: `Open a terminal slider over the commit history. Left/right move the cutoff,
shift moves faster, home/end jump to either end, q quits.`,
	RunE: runScrub,
}

func init() {
	scrubCmd.Flags().Float64Var(&scrubStep, "step", 1, "slider change per key press")
}

func runScrub(cmd *cobra.Command, args []string) error {
	if !output.IsTerminal(os.Stdout) {
		return errors.ConfigErrorf("scrub needs a terminal; use folio stats instead")
	}
	if err := validate(config.ValidationContextRender); err != nil {
		return err
	}

	commits, err := loadCommits(cmd.Context())
	if err != nil {
		return err
	}

	ctrl := page.New(commits, page.Options{
		Layout:            chart.LayoutFromConfig(cfg.Chart),
		ThrottlePerSecond: cfg.Interaction.ThrottlePerSecond,
		Burst:             cfg.Interaction.Burst,
		InitialProgress:   cfg.Interaction.InitialProgress,
		Logger:            logger,
	})
	return output.RunScrubber(output.NewScrubber(ctrl, scrubStep, true))
}
