package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pwa/internal/adapters/telemetry"
	"go.trai.ch/pwa/internal/ui/style"
)

func printSpans(w io.Writer, spans []telemetry.SpanTiming) {
	if len(spans) == 0 {
		return
	}
	failed := lipgloss.NewStyle().Foreground(style.Red)
	t := newTable("SPAN", "DURATION", "STATUS")
	for _, s := range spans {
		status := "ok"
		if s.Failed {
			status = failed.Render(style.Cross + " " + s.Status)
		}
		t.Row(s.Name, s.Duration.Round(time.Microsecond).String(), status)
	}
	_, _ = fmt.Fprintln(w, t.Render())
}
