package main

import (
	"fmt"

	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [auto|light|dark]",
	Short: "Show or set the stored color scheme",
	Long: `Without an argument, print the stored color scheme. With one, store it;
the served page picks it up on the next load.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"auto", "light", "dark"},
	RunE:      runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	if cfg.Storage.PrefsPath == "" {
		return errors.ConfigErrorf("storage.prefs_path is not set")
	}
	store, err := storage.NewBoltPrefsStore(cfg.Storage.PrefsPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		scheme, err := store.GetColorScheme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), scheme)
		return nil
	}

	scheme := models.ColorScheme(args[0])
	if args[0] == "auto" {
		scheme = models.ColorSchemeAuto
	}
	if err := store.SetColorScheme(cmd.Context(), scheme); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Color scheme set to %q\n", scheme)
	return nil
}
