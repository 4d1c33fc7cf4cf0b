package view

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Percent returns min(current/total, 1) rounded to two decimals, or 0 when
// total is unknown.
func Percent(current, total float64) float64 {
	if total <= 0 || current <= 0 {
		return 0
	}
	return math.Round(math.Min(current/total, 1)*100) / 100
}

// FormatClock formats d as m:ss, or h:mm:ss past the hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatLength formats a length in seconds as a clock.
func FormatLength(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return FormatClock(time.Duration(seconds * float64(time.Second)))
}

// FormatField renders an item attribute for display.
//
// Sizes, bitrates and timestamps get human units; everything else is
// printed as is.
func FormatField(name string, value any) string {
	switch name {
	case "filesize", "size":
		if n, ok := number(value); ok && n >= 0 {
			return humanize.Bytes(uint64(n))
		}
	case "bitrate":
		if n, ok := number(value); ok && n > 0 {
			return humanize.SIWithDigits(n, 0, "bps")
		}
	case "samplerate":
		if n, ok := number(value); ok && n > 0 {
			return humanize.SIWithDigits(n, 1, "Hz")
		}
	case "added", "mtime":
		if n, ok := number(value); ok && n > 0 {
			return humanize.Time(time.Unix(int64(n), 0))
		}
	case "length":
		if n, ok := number(value); ok {
			return FormatLength(n)
		}
	}
	return stringify(value)
}

// Label turns a field name into a display label.
func Label(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
