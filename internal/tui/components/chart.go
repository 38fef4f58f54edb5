package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their minimum and maximum, so a
// PTS series around 5,000 still shows its movement. A flat series renders
// at mid height.
func Sparkline(values []int, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if span > 0 {
			idx = (v - lo) * (len(sparkBlocks) - 1) / span
		}
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// DeltaBars renders one column per value, green above the zero line and
// red below it, scaled to the largest absolute value. height is the number
// of rows on each side of the axis.
func DeltaBars(values []int, width, height int) string {
	if len(values) == 0 || height < 1 {
		return ""
	}
	t := theme.Active

	if len(values) > width {
		values = values[len(values)-width:]
	}

	peak := 1
	for _, v := range values {
		peak = max(peak, abs(v))
	}

	winStyle := lipgloss.NewStyle().Foreground(t.Win).Background(t.Surface)
	lossStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	// rows needed per value, rounded up so any change is visible
	rows := make([]int, len(values))
	for i, v := range values {
		if v != 0 {
			rows[i] = max((abs(v)*height+peak-1)/peak, 1)
		}
	}

	labelW := len(fmt.Sprintf("%+d", peak))
	label := func(s string) string { return axisStyle.Render(fmt.Sprintf("%*s", labelW, s)) }

	var b strings.Builder
	for r := height; r >= 1; r-- {
		if r == height {
			b.WriteString(label(fmt.Sprintf("%+d", peak)))
		} else {
			b.WriteString(label(""))
		}
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if v > 0 && rows[i] >= r {
				b.WriteString(winStyle.Render("█"))
			} else {
				b.WriteString(blank)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(label("0"))
	b.WriteString(axisStyle.Render("┼" + strings.Repeat("─", len(values))))

	for r := 1; r <= height; r++ {
		b.WriteString("\n")
		if r == height {
			b.WriteString(label(fmt.Sprintf("%+d", -peak)))
		} else {
			b.WriteString(label(""))
		}
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if v < 0 && rows[i] >= r {
				b.WriteString(lossStyle.Render("█"))
			} else {
				b.WriteString(blank)
			}
		}
	}

	return b.String()
}

// HBar renders a horizontal bar of value relative to maxValue.
func HBar(value, maxValue, width int, color lipgloss.Color) string {
	t := theme.Active
	n := 0
	if maxValue > 0 {
		n = value * width / maxValue
	}
	n = max(min(n, width), 0)
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n)) +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("░", width-n))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
