package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/beetle/internal/history"
	"github.com/jfmyers9/beetle/internal/view"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long: `Print the most recent plays from the local history database,
newest first. Plays that counted as a listen are marked with "✓",
failed plays with "!".`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Number of plays to show")
	historyCmd.Flags().Bool("clean", false, "Delete plays older than 90 days first")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(cfg.History.DB)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	if clean, _ := cmd.Flags().GetBool("clean"); clean {
		removed, err := store.Cleanup(ctx, 90*24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to clean history: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Removed %d old plays\n", removed)
	}

	plays, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	listened, err := store.Count(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to count plays: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, p := range plays {
		fmt.Fprintln(out, formatPlay(p, time.Now()))
	}
	fmt.Fprintf(out, "%d listens\n", listened)
	return nil
}

// formatPlay renders one history line relative to now.
func formatPlay(p history.Play, now time.Time) string {
	mark := " "
	switch {
	case p.Error != "":
		mark = "!"
	case p.Completed:
		mark = "✓"
	}
	return fmt.Sprintf("%s %-14s %s - %s  %s/%s",
		mark,
		humanize.RelTime(p.StartedAt, now, "ago", "from now"),
		p.Artist,
		p.Title,
		view.FormatClock(p.Played),
		view.FormatClock(p.Duration),
	)
}
