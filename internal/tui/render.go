package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/jfmyers9/beetle/internal/view"
)

// detailText turns a detail tree into tview-formatted text.
func detailText(n *view.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range n.Children {
		switch c.Kind {
		case view.KindEmpty:
			sb.WriteString(fmt.Sprintf("\n[gray]%s[-]", tview.Escape(c.Text)))
		case view.KindField:
			value := ""
			if len(c.Children) > 0 {
				value = c.Children[0].Text
			}
			sb.WriteString(fmt.Sprintf("[yellow]%s:[-] %s\n", tview.Escape(c.Text), tview.Escape(value)))
		case view.KindButton:
			sb.WriteString("\n[gray]p:play[-]")
		}
	}
	if n.Playing {
		sb.WriteString("  [green]\u25B6 playing[-]")
	}
	return sb.String()
}

// transportText turns a transport tree into a single status line.
func transportText(n *view.Node, width int) string {
	if n == nil {
		return ""
	}
	toggle := n.Find(view.KindButton, "toggle")
	now := n.Find(view.KindText, "now")
	elapsed := n.Find(view.KindText, "elapsed")
	total := n.Find(view.KindText, "total")
	played := n.Find(view.KindProgress, "played")
	buffered := n.Find(view.KindProgress, "buffered")

	icon := "[yellow]\u23F8[-]" // Pause icon
	if toggle != nil && toggle.Text == "Pause" {
		icon = "[green]\u25B6[-]" // Play triangle
	}
	if n.Attr("state") == "Idle" {
		icon = "[gray]\u25A0[-]"
	}

	title := ""
	if now != nil {
		title = runewidth.Truncate(now.Text, 40, "...")
	}

	barWidth := width - runewidth.StringWidth(title) - 24
	if barWidth < 10 {
		barWidth = 10
	}
	bar := buildProgressBar(value(played), value(buffered), barWidth)

	return fmt.Sprintf("%s %s  %s %s %s",
		icon, tview.Escape(title), text(elapsed), bar, text(total))
}

// buildProgressBar draws played and buffered fractions.
func buildProgressBar(played, buffered float64, width int) string {
	if width <= 0 {
		return ""
	}
	played = clamp(played)
	buffered = clamp(buffered)
	if buffered < played {
		buffered = played
	}

	filled := int(played * float64(width))
	cached := int(buffered*float64(width)) - filled
	empty := width - filled - cached

	return "[green]" + strings.Repeat("\u2588", filled) + "[-]" +
		"[gray]" + strings.Repeat("\u2592", cached) + strings.Repeat("\u2591", empty) + "[-]"
}

// intersectionRatio returns how much of the tile rectangle lies inside the
// viewport rectangle.
func intersectionRatio(tx, ty, tw, th, vx, vy, vw, vh int) float64 {
	if tw <= 0 || th <= 0 || vw <= 0 || vh <= 0 {
		return 0
	}
	x0, y0 := max(tx, vx), max(ty, vy)
	x1, y1 := min(tx+tw, vx+vw), min(ty+th, vy+vh)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return float64((x1-x0)*(y1-y0)) / float64(tw*th)
}

// tileRect places tile i of a grid with the given columns scrolled down by
// offset rows, inside a viewport starting at (vx, vy) that is vw wide.
func tileRect(i, columns, offset, vx, vy, vw int) (x, y, w, h int) {
	if columns <= 0 {
		columns = 1
	}
	w = vw / columns
	row, col := i/columns, i%columns
	return vx + col*w, vy + (row-offset)*tileHeight, w, tileHeight
}

func value(n *view.Node) float64 {
	if n == nil {
		return 0
	}
	return n.Value
}

func text(n *view.Node) string {
	if n == nil {
		return ""
	}
	return n.Text
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
