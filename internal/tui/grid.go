// Package tui provides the Bubble Tea game interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/avolkov/gridmem/internal/generator"
)

var (
	litCellStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	darkCellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	selectedCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missedCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	wrongCellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cursorCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

const (
	cellGlyph   = "██"
	cursorGlyph = "[]"
)

// renderGrid draws the board for the current phase: the lit pattern
// while showing, the player's selection while recalling, and the
// graded overlay (hits, misses, wrong picks) on the result screen.
func (m *Model) renderGrid() string {
	var b strings.Builder
	for r := 0; r < m.config.GridSize; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < m.config.GridSize; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(m.renderCell(generator.Cell{Row: r, Col: c}))
		}
	}
	return b.String()
}

func (m *Model) renderCell(cell generator.Cell) string {
	inPattern := contains(m.pattern, cell)
	picked := contains(m.selected, cell)

	switch m.phase {
	case phaseShow:
		if inPattern {
			return litCellStyle.Render(cellGlyph)
		}
		return darkCellStyle.Render(cellGlyph)
	case phaseRecall:
		if cell == m.cursor {
			return cursorCellStyle.Render(cursorGlyph)
		}
		if picked {
			return selectedCellStyle.Render(cellGlyph)
		}
		return darkCellStyle.Render(cellGlyph)
	default:
		switch {
		case inPattern && picked:
			return selectedCellStyle.Render(cellGlyph)
		case inPattern:
			return missedCellStyle.Render(cellGlyph)
		case picked:
			return wrongCellStyle.Render(cellGlyph)
		default:
			return darkCellStyle.Render(cellGlyph)
		}
	}
}

func contains(set map[generator.Cell]struct{}, cell generator.Cell) bool {
	_, ok := set[cell]
	return ok
}

// truncateToWidth clips a line to the terminal width, measured in
// display cells. Width 0 means unknown and leaves the line alone.
func truncateToWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
