// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avolkov/gridmem/internal/stats"
	"github.com/avolkov/gridmem/internal/store"
)

var (
	baseStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Model implements the Bubble Tea stats UI: one table of
// configurations with a detail line for the selected row.
type Model struct {
	manager *store.Manager

	rows   []stats.Row
	table  table.Model
	errMsg string

	width  int
	height int
}

// NewModel constructs a stats model and loads the current map.
func NewModel(manager *store.Manager) *Model {
	m := &Model{manager: manager}
	m.reload()
	return m
}

func (m *Model) reload() {
	all, err := m.manager.GetAllStats(context.Background())
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		m.rows = nil
	} else {
		m.errMsg = ""
		m.rows = stats.BuildRows(all)
	}
	m.rebuildTable()
}

func (m *Model) rebuildTable() {
	columns := []table.Column{
		{Title: "Config", Width: 18},
		{Title: "Challenges", Width: 10},
		{Title: "Accuracy", Width: 10},
		{Title: "Best", Width: 6},
		{Title: "Max Streak", Width: 10},
		{Title: "Streak", Width: 6},
	}
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		best := "-"
		if r.HasBest {
			best = fmt.Sprintf("%d%%", r.BestAccuracy)
		}
		rows = append(rows, table.Row{
			r.Fingerprint,
			fmt.Sprintf("%d", r.TotalChallenges),
			fmt.Sprintf("%d%%", r.WindowAccuracy),
			best,
			fmt.Sprintf("%d", r.MaxStreak),
			fmt.Sprintf("%d", r.CurrentStreak),
		})
	}
	height := len(rows)
	if height < 1 {
		height = 1
	}
	if height > 15 {
		height = 15
	}
	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "q":
				return m, tea.Quit
			case "r":
				m.reload()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	info := m.manager.EnvironmentInfo()
	header := headerStyle.Render(fmt.Sprintf("gridmem stats · backend: %s", info.Environment.Kind))
	if m.errMsg != "" {
		return header + "\n" + errorStyle.Render(m.errMsg) + "\n"
	}
	if len(m.rows) == 0 {
		return header + "\n" + detailStyle.Render("No statistics recorded yet.") + "\n"
	}
	body := baseStyle.Render(m.table.View())
	detail := m.renderDetail()
	help := detailStyle.Render("↑/↓ select · r reload · q quit")
	return header + "\n" + body + "\n" + detail + "\n" + help
}

func (m *Model) renderDetail() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return ""
	}
	r := m.rows[idx]
	best := "not enough samples yet"
	if r.HasBest {
		best = fmt.Sprintf("%d%%", r.BestAccuracy)
	}
	return detailStyle.Render(fmt.Sprintf(
		"%s · window %d/%d answers at %d%% · best 100-sample accuracy: %s",
		r.Fingerprint, r.WindowLen, stats.WindowSize, r.WindowAccuracy, best))
}
