package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/rohankatakam/codefolio/internal/cache"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/server"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive commit chart",
	Long: `Serve the commit chart page. Each browser tab gets its own session over a
websocket; moving the slider, brushing and hovering are handled server side.

With data.watch set, edits to a local line log are picked up and pushed to
every open tab.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the page in a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveOpen {
		cfg.Server.OpenBrowser = true
	}
	if err := validate(config.ValidationContextServe); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prefs storage.PrefsStore
	if cfg.Storage.PrefsPath != "" {
		store, err := storage.NewBoltPrefsStore(cfg.Storage.PrefsPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		prefs = store
	}

	srv, err := server.New(server.Options{
		Config: cfg,
		Logger: logger,
		Prefs:  prefs,
		Cache:  cache.NewManager(cfg.Cache.TTL, cfg.Cache.Cleanup, logger),
	})
	if err != nil {
		return err
	}
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.NetworkError(err, "listen").WithContext("addr", cfg.Server.Addr)
	}

	url := "http://" + ln.Addr().String()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving commit chart at %s\n", url)
	if cfg.Server.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			logger.WithError(errors.ExternalError(err, "open browser")).Warn("Could not open browser")
		}
	}

	return srv.Serve(ctx, ln)
}
