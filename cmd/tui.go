package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/beetle/internal/app"
	"github.com/jfmyers9/beetle/internal/config"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/transport/mpv"
	"github.com/jfmyers9/beetle/internal/tui"
	"github.com/jfmyers9/beetle/internal/view"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui [query...]",
	Short: "Browse the library in a terminal UI",
	Long: `Open the interactive library browser.

The optional query is run on startup; without one the whole library
is listed. Queries use beets syntax, for example "artist:debussy".

Keys:
  /        search
  enter    select, press again to play
  p        play selected
  space    pause or resume
  g        toggle album grid
  r        shuffle the album grid
  [ ]      back and forward through searches
  q        quit

Logs are written to the configured log file, or to beetle.log in the
data directory.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().String("view", "", "Initial layout: list or grid (overrides config)")
	tuiCmd.Flags().Int("columns", 0, "Album tiles per grid row (overrides config)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("view"); v != "" {
		cfg.UI.DefaultView = v
	}
	if c, _ := cmd.Flags().GetInt("columns"); c > 0 {
		cfg.UI.GridColumns = c
	}

	mode, err := view.ParseMode(cfg.UI.DefaultView)
	if err != nil {
		return err
	}

	// Logging to stderr would corrupt the screen
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(config.GetDataDir(), "beetle.log")
	}
	logger := setupLogger(logFile, cfg.Logging.Level)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := tui.New(tui.Config{GridColumns: cfg.UI.GridColumns, Logger: logger})

	player, err := mpv.Start(ctx, mpv.Config{
		Path:      cfg.Player.MPVPath,
		ExtraArgs: cfg.Player.ExtraArgs,
		Loop:      ui.Loop(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}
	defer player.Close()

	tracker, closeTracker := openTracker(cfg, logger)
	defer closeTracker()

	hist := route.NewHistory(route.Encode(strings.Join(args, " ")))

	core, err := app.New(app.Config{
		Library:   app.ClientLibrary{Client: client},
		Transport: player,
		Location:  hist,
		Loop:      ui.Loop(),
		Logger:    logger,
		Tracker:   tracker,
		Mode:      mode,
		OnError:   ui.ShowError,
		OnChange:  ui.Refresh,
	})
	if err != nil {
		return err
	}
	defer core.Close()

	ui.Bind(core, hist)
	if mode == view.ModeGrid {
		core.BrowseAlbums(ctx)
	}

	logger.Info().Str("server", client.BaseURL()).Msg("Starting browser")
	return ui.Run(ctx)
}
