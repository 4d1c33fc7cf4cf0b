package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/beetle/internal/app"
	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/playback"
	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/transport/mpv"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <query...>",
	Short: "Play the results of a query without the browser",
	Long: `Run a query and play every matching item in order through mpv.

Playback advances to the next result when a track ends and stops after
the last one, or on the first playback error. Press Ctrl+C to stop early.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.File, cfg.Logging.Level)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	lp := loop.NewSerial()

	player, err := mpv.Start(ctx, mpv.Config{
		Path:      cfg.Player.MPVPath,
		ExtraArgs: cfg.Player.ExtraArgs,
		Loop:      lp,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}
	defer player.Close()

	tracker, closeTracker := openTracker(cfg, logger)
	defer closeTracker()

	session := &playSession{
		logger: logger.With().Str("component", "play").Logger(),
		loop:   lp,
		cancel: cancel,
	}

	core, err := app.New(app.Config{
		Library:   app.ClientLibrary{Client: client},
		Transport: player,
		Location:  route.NewHistory(route.Encode(strings.Join(args, " "))),
		Loop:      lp,
		Logger:    logger,
		Tracker:   tracker,
		OnError:   session.failed,
		OnChange:  session.changed,
	})
	if err != nil {
		return err
	}
	defer core.Close()
	session.core = core

	core.Items.Subscribe(session.resultsChanged)

	lp.Post(core.Start)
	go func() {
		select {
		case <-player.Done():
			cancel(errors.New("mpv exited"))
		case <-ctx.Done():
		}
	}()

	_ = lp.Run(ctx)

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, errQueueFinished) && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

var errQueueFinished = errors.New("queue finished")

// playSession drives headless playback. All methods run on the loop.
type playSession struct {
	logger zerolog.Logger
	loop   loop.Loop
	core   *app.App
	cancel context.CancelCauseFunc

	started  bool
	finished bool
	lastID   beets.ID
}

// resultsChanged starts playback with the first result of the query.
func (s *playSession) resultsChanged(c results.Change) {
	if s.started || c.Kind != results.Reset {
		return
	}
	first, ok := s.core.Items.At(0)
	if !ok {
		s.logger.Warn().Msg("No matching items")
		s.cancel(errQueueFinished)
		return
	}
	s.started = true
	s.logger.Info().Int("count", s.core.Items.Size()).Msg("Queued results")
	if err := s.core.Controller.Play(first); err != nil {
		s.failed(err)
	}
}

// changed logs track transitions and stops once playback goes idle.
func (s *playSession) changed() {
	if !s.started {
		return
	}
	ctrl := s.core.Controller
	if item, ok := ctrl.Current(); ok && item.ID != s.lastID && ctrl.State() == playback.Playing {
		s.lastID = item.ID
		s.logger.Info().
			Str("artist", item.Artist).
			Str("title", item.Title).
			Int("position", ctrl.CurrentIndex()+1).
			Msg("Now playing")
	}
	if ctrl.State() == playback.Idle && !s.finished {
		s.finished = true
		// A failure reported in the same callback wins over a clean finish.
		s.loop.Post(func() {
			s.logger.Info().Msg("Playback finished")
			s.cancel(errQueueFinished)
		})
	}
}

func (s *playSession) failed(err error) {
	s.logger.Error().Err(err).Msg("Playback stopped")
	s.cancel(err)
}
