package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestamp returns a relative timestamp such as "5m ago", falling back
// to a date for anything older than a day.
func HumanTimestamp(t time.Time) string {
	return humanTimestampFrom(t, time.Now())
}

func humanTimestampFrom(t, now time.Time) string {
	if t.IsZero() {
		return "--"
	}
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatAngle renders a degree value compactly: 90°, -12.5°.
func FormatAngle(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64) + "°"
}

func FormatView(v domain.View) string {
	return fmt.Sprintf("yaw %s  pitch %s  fov %s", FormatAngle(v.Yaw), FormatAngle(v.Pitch), FormatAngle(v.FOV))
}

// UsageBar renders how much of a tier limit is used, e.g. [███░░] 3/5.
// Unlimited limits render the count alone. Usage at the limit is yellow and
// over it red.
func UsageBar(used, limit, width int) string {
	if limit == limits.Unlimited {
		return fmt.Sprintf("%d %s", used, Dim("(unlimited)"))
	}
	if width < 2 {
		width = 2
	}
	filled := width
	if limit > 0 && used < limit {
		filled = used * width / limit
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case used > limit:
		style = StyleRed
	case used == limit:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), used, limit)
}
