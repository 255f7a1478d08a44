package main

import (
	"fmt"

	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/loader"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [source]",
	Short: "Copy a line log into the SQL line store",
	Long: `Read a CSV line log (path or URL, default: data.source) and replace the
contents of the configured line store with it. Afterwards the store can be
used as a data source, e.g. --data sqlite://~/.folio/lines.db.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	source := cfg.Data.Source
	if len(args) == 1 {
		source = args[0]
	}
	if err := validate(config.ValidationContextImport); err != nil {
		return err
	}

	lines, err := loader.Load(cmd.Context(), source, loader.Options{Strict: cfg.Data.Strict, Logger: logger})
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveLines(cmd.Context(), lines); err != nil {
		return err
	}
	n, err := store.CountLines(cmd.Context())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"source": source, "store": cfg.Storage.Type, "lines": n}).Info("Imported line log")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d lines into %s storage\n", n, cfg.Storage.Type)
	return nil
}
