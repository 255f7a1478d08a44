package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/loader"
	"github.com/rohankatakam/codefolio/internal/logging"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/rohankatakam/codefolio/internal/selection"
	"github.com/rohankatakam/codefolio/internal/temporal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile    string
	dataSource string
	verbose    bool
	logger     *logrus.Logger
	appLogger  *logging.Logger
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - interactive commit history scatterplot",
	Long: `Folio plots every commit of a repository by date and time of day, sized
by the number of lines it touched. A slider limits the plot to commits up to
a cutoff; brushing a region breaks the selected lines down by language.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dataSource != "" {
			cfg.Data.Source = dataSource
		}

		appLogger, err = logging.New(cfg.Log, verbose)
		if err != nil {
			return err
		}
		logger = appLogger.Logger
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .folio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataSource, "data", "", "line log: path, http(s) URL, sqlite://path or postgres://dsn")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`Folio {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(scrubCmd)
	rootCmd.AddCommand(configCmd)
}

// validate logs warnings and fails on errors for the given command context
func validate(ctx config.ValidationContext) error {
	result := cfg.Validate(ctx)
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	return result.Err()
}

// loadCommits reads the configured line log and groups it into commits
func loadCommits(ctx context.Context) ([]models.Commit, error) {
	lines, err := loader.Load(ctx, cfg.Data.Source, loader.Options{
		Strict: cfg.Data.Strict,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	commits := temporal.Aggregate(lines, cfg.Data.CommitURLBase)
	logger.WithFields(logrus.Fields{
		"source":  cfg.Data.Source,
		"lines":   len(lines),
		"commits": len(commits),
	}).Debug("Loaded commits")
	return commits, nil
}

// viewFlags are shared by the one-shot view commands
type viewFlags struct {
	progress float64
	brush    string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.progress, "progress", 100, "slider position in [0, 100] (default: interaction.initial_progress)")
	cmd.Flags().StringVar(&f.brush, "brush", "", "brush rectangle in chart pixels: x0,y0,x1,y1")
}

// view runs the pipeline once at the requested slider position and brush
func (f *viewFlags) view(cmd *cobra.Command, commits []models.Commit) (*page.Update, error) {
	progress := cfg.Interaction.InitialProgress
	if cmd.Flags().Changed("progress") {
		progress = f.progress
	}

	ctrl := page.New(commits, page.Options{
		Layout:          chart.LayoutFromConfig(cfg.Chart),
		InitialProgress: progress,
		Logger:          logger,
	})
	if f.brush == "" {
		return ctrl.Snapshot(), nil
	}

	r, err := selection.ParseRect(f.brush)
	if err != nil {
		return nil, err
	}
	return ctrl.Dispatch(page.Event{Kind: page.KindBrush, Brush: &r})
}
