// Package tui is an interactive bubbletea viewer over a finished
// spatialmatch.Engine.Run result: browse the ranked Spatialmatches and drill
// into each one's covers, the way a developer would want to inspect why a
// particular result landed where it did.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carmenstack/spatialmatch/internal/dedup"
	"github.com/carmenstack/spatialmatch/internal/result"
)

// ExplainModel is the bubbletea model for the explain viewer.
type ExplainModel struct {
	output   dedup.Output
	cursor   int
	width    int
	height   int
	quitting bool
	styles   Styles
}

// NewExplainModel builds a model over a finished pipeline result.
func NewExplainModel(out dedup.Output) *ExplainModel {
	return &ExplainModel{output: out, styles: DefaultStyles(), width: 100, height: 30}
}

// Init implements tea.Model.
func (m *ExplainModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *ExplainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.output.Results)-1 {
				m.cursor++
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View implements tea.Model.
func (m *ExplainModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("spatialmatch explain — %d results, %d waste entries", len(m.output.Results), len(m.output.Waste))))
	b.WriteString("\n\n")

	listWidth := m.width / 3
	if listWidth < 24 {
		listWidth = 24
	}

	b.WriteString(m.renderList(listWidth))
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render("↑/↓ select · q quit"))
	return b.String()
}

func (m *ExplainModel) renderList(width int) string {
	var lines []string
	for i, r := range m.output.Results {
		line := fmt.Sprintf("%3d. relev=%.3f scoredist=%.1f covers=%d", i+1, r.Relev, r.Scoredist, len(r.Covers))
		if i == m.cursor {
			line = m.styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	list := strings.Join(lines, "\n")

	detail := m.renderDetail()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(width).Render(list),
		m.styles.Border.Render(" │ "),
		detail,
	)
}

func (m *ExplainModel) renderDetail() string {
	if len(m.output.Results) == 0 || m.cursor >= len(m.output.Results) {
		return m.styles.Dim.Render("no results")
	}
	r := m.output.Results[m.cursor]

	var b strings.Builder
	b.WriteString(m.styles.Label.Render("relev") + fmt.Sprintf(" %.4f\n", r.Relev))
	b.WriteString(m.styles.Label.Render("scoredist") + fmt.Sprintf(" %.2f\n", r.Scoredist))
	if r.PartialNumber {
		b.WriteString(m.styles.Flag.Render("partial_number") + "\n")
	}
	if r.HasAddress() {
		b.WriteString(m.styles.Label.Render("address") + fmt.Sprintf(" %s\n", *r.Address))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Header.Render("covers"))
	b.WriteString("\n")
	for _, c := range r.Covers {
		b.WriteString(renderCoverLine(c))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCoverLine(c result.Cover) string {
	return fmt.Sprintf("  idx=%d zoom=%d x=%d y=%d score=%.2f dist=%.2f lang=%v", c.Idx, c.Zoom, c.X, c.Y, c.Score, c.Distance, c.MatchesLanguage)
}
