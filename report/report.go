// Package report renders simulation results for a terminal.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/pattern"
	"github.com/sarchlab/dmcache/tracing"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#4ade80"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	hitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	border     = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))
)

// RenderTitle renders a section heading.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderStats renders the cache statistics with two decimals, one figure per
// line.
func RenderStats(numLines int, s cache.Stats, m cache.Metrics) string {
	rows := [][2]string{
		{"Number of Cache Blocks (N)", strconv.Itoa(numLines)},
		{"Total Memory Accesses", strconv.FormatUint(s.TotalAccesses, 10)},
		{"Cache Hits", strconv.FormatUint(s.Hits, 10)},
		{"Cache Misses", strconv.FormatUint(s.Misses, 10)},
		{"Cache Hit Rate", fmt.Sprintf("%.2f%%", m.HitRate)},
		{"Cache Miss Rate", fmt.Sprintf("%.2f%%", m.MissRate)},
		{"Average Memory Access Time", fmt.Sprintf("%.2f ns", m.AvgAccessTimeNs)},
		{"Total Memory Access Time", fmt.Sprintf("%.2f ns", m.TotalAccessTimeNs)},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(labelStyle.Render(r[0] + ":"))
		sb.WriteString(" ")
		sb.WriteString(r[1])
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderLines renders the content of every cache line as a table. When counts
// is not nil, the per-line hit, miss, and eviction counters are appended.
func RenderLines(lines []cache.Line, counts []tracing.LineCount) string {
	headers := []string{"Cache Block", "Main Memory Block"}
	if counts != nil {
		headers = append(headers, "Hits", "Misses", "Evictions")
	}

	rows := make([][]string, 0, len(lines))
	for i, l := range lines {
		row := []string{strconv.Itoa(i), tagString(l)}

		if counts != nil {
			var c tracing.LineCount
			if i < len(counts) {
				c = counts[i]
			}

			row = append(row,
				strconv.FormatUint(c.Hits, 10),
				strconv.FormatUint(c.Misses, 10),
				strconv.FormatUint(c.Evictions, 10))
		}

		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}

			if col == 1 && row >= 0 && row < len(lines) && !lines[row].Valid {
				return style.Inherit(emptyStyle)
			}

			return style
		})

	return t.String()
}

func tagString(l cache.Line) string {
	if !l.Valid {
		return "None"
	}

	return strconv.Itoa(l.Tag)
}

// RenderEvent renders one access log line, colored by outcome.
func RenderEvent(e cache.AccessEvent) string {
	if e.IsHit() {
		return hitStyle.Render(e.String())
	}

	return missStyle.Render(e.String())
}

// RenderSequence renders a generated pattern on one line.
func RenderSequence(p pattern.Pattern, blocks []int) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = strconv.Itoa(b)
	}

	return fmt.Sprintf("%s (%d accesses): %s",
		titleStyle.Render(p.String()), len(blocks), strings.Join(parts, " "))
}
