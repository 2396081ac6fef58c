package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"motionberry-cli/internal/status"
)

var labels = map[status.Category]string{
	status.CategoryCamera:    "Camera",
	status.CategoryRecording: "Recording",
	status.CategoryMotion:    "Motion detection",
}

// Label returns the display name of a category.
func Label(cat status.Category) string {
	if l, ok := labels[cat]; ok {
		return l
	}
	return string(cat)
}

// BoardPrinter renders indicator snapshots as one line per category.
type BoardPrinter struct {
	on      *color.Color
	off     *color.Color
	unknown *color.Color
	dim     *color.Color
}

func NewBoardPrinter(colorize bool) *BoardPrinter {
	p := &BoardPrinter{
		on:      color.New(color.FgGreen, color.Bold),
		off:     color.New(color.FgRed),
		unknown: color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.on, p.off, p.unknown, p.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Indicator renders one category's pair, e.g. "● ON  ○ off".
func (p *BoardPrinter) Indicator(st status.IndicatorState) string {
	if !st.Known {
		return p.unknown.Sprint("? unknown")
	}
	if st.On {
		return p.on.Sprint("● ON ") + " " + p.dim.Sprint("○ off")
	}
	return p.dim.Sprint("○ on ") + " " + p.off.Sprint("● OFF")
}

// Lines renders the whole snapshot.
func (p *BoardPrinter) Lines(snap status.Snapshot) []string {
	lines := make([]string, 0, len(snap))
	for _, st := range snap {
		lines = append(lines, fmt.Sprintf("  %-18s %s", Label(st.Category), p.Indicator(st)))
	}
	return lines
}

// Compact renders the snapshot on a single line for streaming output.
func (p *BoardPrinter) Compact(at time.Time, snap status.Snapshot) string {
	parts := make([]string, 0, len(snap))
	for _, st := range snap {
		state := p.unknown.Sprint("?")
		if st.Known && st.On {
			state = p.on.Sprint("on")
		} else if st.Known {
			state = p.off.Sprint("off")
		}
		parts = append(parts, fmt.Sprintf("%s=%s", st.Category, state))
	}
	return fmt.Sprintf("%s  %s", p.dim.Sprint(at.Local().Format("15:04:05")), strings.Join(parts, "  "))
}
