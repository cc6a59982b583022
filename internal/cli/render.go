package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette (Flexoki Dark)
var (
	colorBorder = lipgloss.Color("#282726")
	colorDim    = lipgloss.Color("#575653")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	costStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	alertStyle  = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Table is a bordered text table. A row of exactly {"---"} renders as a
// horizontal separator, which report uses before its TOTAL row.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle draws title centered inside a rounded box sized to the content.
func RenderTitle(title string) string {
	width := len(title) + 8
	if width < 55 {
		width = 55
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(width).
		Align(lipgloss.Center)
	return box.Render(titleStyle.Render(title))
}

// RenderTable draws t with box-drawing borders. The first column is
// left-aligned, all others right-aligned.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols && !isSeparator(row) {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if i < cols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}

	var lines []string
	if t.Title != "" {
		lines = append(lines, "  "+headerStyle.Render(t.Title))
	}
	lines = append(lines, rule(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		lines = append(lines, renderRow(t.Headers, widths, headerStyle, false))
		lines = append(lines, rule(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			lines = append(lines, rule(widths, "├", "┼", "┤"))
			continue
		}
		lines = append(lines, renderRow(row, widths, valueStyle, true))
	}

	lines = append(lines, rule(widths, "╰", "┴", "╯"))
	return strings.Join(lines, "\n") + "\n"
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

func rule(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left + strings.Join(parts, mid) + right)
}

func renderRow(cells []string, widths []int, style lipgloss.Style, alignNumeric bool) string {
	sep := dimStyle.Render("│")
	var b strings.Builder
	b.WriteString(sep)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if alignNumeric && i > 0 {
			b.WriteString(style.Render(fmt.Sprintf(" %*s ", w, cell)))
		} else {
			b.WriteString(style.Render(fmt.Sprintf(" %-*s ", w, cell)))
		}
		b.WriteString(sep)
	}
	return b.String()
}

// RenderBudgetBar draws spend against cap as a filled bar with the usage
// percentage. Color shifts at the warning threshold and again at 90%.
func RenderBudgetBar(spent, cap float64, warningThreshold float64, width int) string {
	if cap <= 0 {
		return mutedStyle.Render("no limit")
	}

	usage := spent / cap
	filled := int(min(max(usage, 0), 1) * float64(width))

	style := costStyle
	switch {
	case usage >= 0.9:
		style = alertStyle
	case usage >= warningThreshold:
		style = warnStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %s", bar, FormatPercent(usage))
}

// RenderSparkline draws values as one block rune each, scaled to the series max.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	const blocks = "▁▂▃▄▅▆▇█"
	runes := []rune(blocks)

	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(min(max(v/peak, 0), 1) * float64(len(runes)-1))
		b.WriteRune(runes[idx])
	}
	return b.String()
}

// RenderHorizontalBar draws a labelled bar scaled against maxValue, with the
// value printed after the bar.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(min(max(value/maxValue, 0), 1) * float64(maxWidth))
	}
	bar := strings.Repeat("█", barLen)
	return fmt.Sprintf("  %-14s %s %s", label, costStyle.Render(bar), mutedStyle.Render(FormatUSD(value)))
}
