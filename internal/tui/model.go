// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avolkov/gridmem/internal/generator"
	"github.com/avolkov/gridmem/internal/model"
	"github.com/avolkov/gridmem/internal/stats"
	"github.com/avolkov/gridmem/internal/store"
)

type phase int

const (
	phaseShow phase = iota
	phaseRecall
	phaseResult
)

type showDoneMsg struct{ round int }

type answerTimeoutMsg struct{ round int }

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	goalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea game UI.
type Model struct {
	config  model.Settings
	manager *store.Manager
	gen     *generator.Generator

	width  int
	height int

	phase    phase
	round    int
	pattern  map[generator.Cell]struct{}
	selected map[generator.Cell]struct{}
	cursor   generator.Cell

	lastCorrect bool
	record      model.StatsRecord
	errMsg      string
}

// NewModel constructs a game model and loads the configuration's
// current statistics for the footer.
func NewModel(cfg model.Settings, manager *store.Manager, gen *generator.Generator) *Model {
	m := &Model{
		config:  cfg,
		manager: manager,
		gen:     gen,
	}
	rec, err := manager.GetStats(context.Background(), cfg)
	if err != nil {
		// The game stays playable on a failed read; start from zeros.
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
	}
	m.record = rec
	m.startRound()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.showTick()
}

func (m *Model) startRound() {
	m.round++
	m.phase = phaseShow
	m.pattern = m.gen.Pattern(m.config.GridSize, m.config.ActiveCells)
	m.selected = map[generator.Cell]struct{}{}
	m.cursor = generator.Cell{}
}

func (m *Model) showTick() tea.Cmd {
	round := m.round
	return tea.Tick(time.Duration(m.config.ShowTimeMs)*time.Millisecond, func(time.Time) tea.Msg {
		return showDoneMsg{round: round}
	})
}

func (m *Model) answerTick() tea.Cmd {
	if m.config.AnswerTimeMs <= 0 {
		return nil
	}
	round := m.round
	return tea.Tick(time.Duration(m.config.AnswerTimeMs)*time.Millisecond, func(time.Time) tea.Msg {
		return answerTimeoutMsg{round: round}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case showDoneMsg:
		if msg.round == m.round && m.phase == phaseShow {
			m.phase = phaseRecall
			return m, m.answerTick()
		}
		return m, nil
	case answerTimeoutMsg:
		if msg.round == m.round && m.phase == phaseRecall {
			m.grade()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.phase {
	case phaseRecall:
		switch msg.Type {
		case tea.KeyUp:
			m.moveCursor(-1, 0)
		case tea.KeyDown:
			m.moveCursor(1, 0)
		case tea.KeyLeft:
			m.moveCursor(0, -1)
		case tea.KeyRight:
			m.moveCursor(0, 1)
		case tea.KeySpace:
			m.toggle()
		case tea.KeyEnter:
			m.grade()
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "k":
				m.moveCursor(-1, 0)
			case "j":
				m.moveCursor(1, 0)
			case "h":
				m.moveCursor(0, -1)
			case "l":
				m.moveCursor(0, 1)
			case "q":
				return m, tea.Quit
			}
		}
	case phaseResult:
		switch msg.Type {
		case tea.KeyEnter, tea.KeySpace:
			m.startRound()
			return m, m.showTick()
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return m, tea.Quit
			}
		}
	case phaseShow:
		if msg.Type == tea.KeyRunes && string(msg.Runes) == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) moveCursor(dr, dc int) {
	r := m.cursor.Row + dr
	c := m.cursor.Col + dc
	if r < 0 || r >= m.config.GridSize || c < 0 || c >= m.config.GridSize {
		return
	}
	m.cursor = generator.Cell{Row: r, Col: c}
}

func (m *Model) toggle() {
	if _, ok := m.selected[m.cursor]; ok {
		delete(m.selected, m.cursor)
		return
	}
	m.selected[m.cursor] = struct{}{}
}

// grade ends the recall phase, persists the outcome, and moves to the
// result phase. Persistence failure keeps the locally updated record
// so the footer stays truthful for the session.
func (m *Model) grade() {
	m.lastCorrect = sameCells(m.pattern, m.selected)
	m.phase = phaseResult
	m.errMsg = ""

	rec, err := m.manager.SaveStats(context.Background(), m.config, m.lastCorrect)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to save stats: %v", err)
		m.record = stats.Update(m.record, m.lastCorrect)
		return
	}
	m.record = rec
}

func sameCells(a, b map[generator.Cell]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for cell := range a {
		if _, ok := b[cell]; !ok {
			return false
		}
	}
	return true
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderHeader()
	grid := m.renderGrid()
	footer := m.renderFooter()

	content := header + "\n\n" + grid + "\n" + m.renderHint()
	if m.errMsg != "" {
		content += "\n" + errStyle.Render(m.errMsg)
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render(fmt.Sprintf("Round %d", m.round))
	switch m.phase {
	case phaseShow:
		return title + "  " + hintStyle.Render("memorize")
	case phaseRecall:
		return title + "  " + hintStyle.Render("recall")
	default:
		if m.lastCorrect {
			return title + "  " + correctStyle.Render("correct")
		}
		return title + "  " + wrongStyle.Render("wrong")
	}
}

func (m *Model) renderHint() string {
	switch m.phase {
	case phaseShow:
		return hintStyle.Render("watch the pattern")
	case phaseRecall:
		return hintStyle.Render("arrows/hjkl move · space toggle · enter submit")
	default:
		if m.config.TargetStreak > 0 && m.record.CurrentStreak >= m.config.TargetStreak {
			return goalStyle.Render(fmt.Sprintf("goal reached: %d in a row!", m.record.CurrentStreak)) +
				"  " + hintStyle.Render("enter next · q quit")
		}
		return hintStyle.Render("enter next · q quit")
	}
}

func (m *Model) renderFooter() string {
	rec := m.record
	best := "best -"
	if stats.WindowFull(rec) {
		best = fmt.Sprintf("best %d%%", rec.BestAccuracy)
	}
	line := fmt.Sprintf("streak %d/%d · max %d · acc %d%% (%d) · %s · total %d",
		rec.CurrentStreak, m.config.TargetStreak, rec.MaxStreak,
		stats.Accuracy(rec.RecentAnswers), len(rec.RecentAnswers), best,
		rec.TotalChallenges)
	return footerStyle.Render(truncateToWidth(line, m.width))
}
