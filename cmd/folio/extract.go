package main

import (
	"io"
	"os"

	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/git"
	"github.com/rohankatakam/codefolio/internal/loader"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	extractInclude     []string
	extractExclude     []string
	extractConcurrency int
	extractOutput      string
)

var extractCmd = &cobra.Command{
	Use:   "extract [repo]",
	Short: "Build a line log from a git repository",
	Long: `Blame every text file at HEAD and write one CSV row per line, attributed
to the commit that last touched it.

Examples:
  # Current repository, only JavaScript and CSS
  folio extract --include '**/*.js' --include '**/*.css' -o loc.csv

  # Skip vendored code
  folio extract ../site --exclude 'vendor/**' --exclude 'node_modules/**'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringSliceVar(&extractInclude, "include", nil, "only blame files matching these globs")
	extractCmd.Flags().StringSliceVar(&extractExclude, "exclude", nil, "skip files matching these globs")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "files blamed at once (default: GOMAXPROCS)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) == 1 {
		repoPath = args[0]
	}
	if err := git.ValidatePatterns(append(append([]string{}, extractInclude...), extractExclude...)); err != nil {
		return err
	}

	ex, err := git.Open(repoPath, git.ExtractOptions{
		Include:     extractInclude,
		Exclude:     extractExclude,
		Concurrency: extractConcurrency,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	lines, err := ex.Extract(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return errors.FileSystemError(err, "create line log").WithContext("path", extractOutput)
		}
		defer f.Close()
		w = f
	}
	if err := loader.Write(w, lines); err != nil {
		return errors.FileSystemError(err, "write line log")
	}

	logger.WithFields(logrus.Fields{"head": ex.Head(), "lines": len(lines)}).Info("Extracted line log")

	if remote, err := git.RemoteURL(repoPath, "origin"); err == nil {
		if base, err := git.CommitURLBase(remote); err == nil {
			cmd.PrintErrf("Commit URL base: %s\n", base)
		}
	}
	return nil
}
