package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// albumsCmd represents the albums command
var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "Print a random selection of albums",
	Long: `Ask the beets server for a random selection of albums and print
one line per album: id, album artist and title. Albums without cover
art are marked with "-".`,
	Args: cobra.NoArgs,
	RunE: runAlbums,
}

func init() {
	rootCmd.AddCommand(albumsCmd)

	albumsCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")

	client, err := newClient(cfg, setupLogger(cfg.Logging.File, cfg.Logging.Level))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	defer cancel()

	albums, err := client.Albums().Random(ctx)
	if err != nil {
		return fmt.Errorf("failed to load albums: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, a := range albums {
		art := "-"
		if a.HasArt() {
			art = "*"
		}
		line := fmt.Sprintf("%s %-6s %s - %s", art, a.ID, a.AlbumArtist, a.Album)
		fmt.Fprintln(out, padToWidth(line, width))
	}
	return nil
}
