package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var levelColors = map[Level]lipgloss.AdaptiveColor{
	LevelInfo:    {Light: "#0B5CAD", Dark: "#6CB6FF"},
	LevelSuccess: {Light: "#1A7F37", Dark: "#57D364"},
	LevelWarning: {Light: "#9A6700", Dark: "#E3B341"},
	LevelError:   {Light: "#CF222E", Dark: "#FF7B72"},
}

var levelIcons = map[Level]string{
	LevelInfo:    "i",
	LevelSuccess: "✔",
	LevelWarning: "!",
	LevelError:   "✖",
}

// Terminal writes one styled line per notification.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Level]lipgloss.Style
}

var _ Notifier = (*Terminal)(nil)

// NewTerminal builds a Terminal whose colour profile is detected from out.
func NewTerminal(out io.Writer) *Terminal {
	renderer := lipgloss.NewRenderer(out)
	styles := make(map[Level]lipgloss.Style, len(levelColors))
	for level, color := range levelColors {
		styles[level] = renderer.NewStyle().Bold(true).Foreground(color)
	}
	return &Terminal{out: out, styles: styles}
}

// Notify prints message prefixed by the level icon.
func (t *Terminal) Notify(_ context.Context, message string, level Level) {
	if message == "" {
		return
	}
	if !level.Valid() {
		level = LevelInfo
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	icon := t.styles[level].Render(levelIcons[level])
	_, _ = fmt.Fprintf(t.out, "%s %s\n", icon, message)
}
