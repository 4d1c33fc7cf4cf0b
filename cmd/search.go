package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/beetle/internal/view"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Print items matching a query",
	Long: `Query the beets library and print one line per matching item.

The output format can be customized in ~/.config/beetle/config.yaml
using a Go template. Available fields: .ID, .Title, .Artist, .Album, .Length

Without a query every item in the library is printed.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	// Add format flag to override config
	searchCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	searchCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
}

// searchRow is the data the output template sees.
type searchRow struct {
	ID     string
	Title  string
	Artist string
	Album  string
	Length string
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}
	width, _ := cmd.Flags().GetInt("width")

	tmpl, err := template.New("output").Parse(cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	client, err := newClient(cfg, setupLogger(cfg.Logging.File, cfg.Logging.Level))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	defer cancel()

	items, err := client.Items().Query(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, item := range items {
		line, err := formatItem(item, tmpl)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, padToWidth(line, width))
	}
	return nil
}

// formatItem applies the template to an item
func formatItem(item beets.Item, tmpl *template.Template) (string, error) {
	row := searchRow{
		ID:     item.ID.String(),
		Title:  item.Title,
		Artist: item.Artist,
		Album:  item.Album,
		Length: view.FormatLength(item.Length),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, row); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// padToWidth pads or truncates text to exactly width display columns.
// Truncated text ends in "...". A width of zero or less disables padding.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "...")
	}
	return runewidth.FillRight(text, width)
}
