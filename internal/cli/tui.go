package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/uxlens/journeyflow/pkg/journey"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// JourneyListModel - Interactive journey selection
// =============================================================================

// JourneyListModel is the bubbletea model for interactive journey selection.
type JourneyListModel struct {
	Journeys []journey.Journey
	Cursor   int
	Selected *journey.Journey
	Height   int
	Offset   int
}

// NewJourneyListModel creates a new journey list model.
func NewJourneyListModel(journeys []journey.Journey) JourneyListModel {
	return JourneyListModel{
		Journeys: journeys,
		Height:   15,
	}
}

func (m JourneyListModel) Init() tea.Cmd {
	return nil
}

func (m JourneyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Journeys)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			j := m.Journeys[m.Cursor]
			m.Selected = &j
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m JourneyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Journey"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Journeys) {
		end = len(m.Journeys)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		j := m.Journeys[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		name := j.Name
		if name == "" {
			name = "(unnamed)"
		}

		rows = append(rows, []string{
			cursor,
			name,
			strconv.Itoa(len(j.Steps)),
			strconv.Itoa(distinctScreens(j)),
			journeyPreview(j, 4),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Journey", "Steps", "Screens", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Journeys))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// distinctScreens counts the unique screen keys in a journey.
func distinctScreens(j journey.Journey) int {
	seen := make(map[string]bool, len(j.Steps))
	for _, key := range j.Keys() {
		seen[key] = true
	}
	return len(seen)
}

// journeyPreview shows the first n screen keys of the journey's path.
func journeyPreview(j journey.Journey, n int) string {
	keys := j.Keys()
	if len(keys) == 0 {
		return "—"
	}
	suffix := ""
	if len(keys) > n {
		keys = keys[:n]
		suffix = " …"
	}
	return strings.Join(keys, " → ") + suffix
}
