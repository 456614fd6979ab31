package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/transitgit/pkg/feed"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RouteBrowserModel - Interactive route browser
// =============================================================================

// RouteBrowserModel is the bubbletea model behind "routes --browse". It
// lists candidates and shows the stops of the one under the cursor.
type RouteBrowserModel struct {
	Routes []feed.Candidate
	Cursor int
	Offset int
	Height int

	// Detail is true while the stop list of Routes[Cursor] is shown.
	Detail bool
}

// NewRouteBrowserModel creates a browser over cands.
func NewRouteBrowserModel(cands []feed.Candidate) RouteBrowserModel {
	return RouteBrowserModel{Routes: cands, Height: 15}
}

func (m RouteBrowserModel) Init() tea.Cmd {
	return nil
}

func (m RouteBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "backspace", "left", "h":
				m.Detail = false
			}
			return m, nil
		}

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
			if m.Cursor < len(m.Routes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			if len(m.Routes) > 0 {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m RouteBrowserModel) View() string {
	if len(m.Routes) == 0 {
		return listDimStyle.Render("No routes in feed") + "\n"
	}
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Routes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ stops  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Routes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		c := m.Routes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, c.Route.ID, c.Route.DisplayName(), strconv.Itoa(len(c.Stops)), firstName(c), lastName(c)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Route", "Name", "Stops", "From", "To").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Routes))))
	return b.String()
}

func (m RouteBrowserModel) detailView() string {
	c := m.Routes[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(c.Route.DisplayName()))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render("trip " + c.Trip))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	for i, s := range c.Stops {
		marker := "│"
		switch i {
		case 0:
			marker = "┬"
		case len(c.Stops) - 1:
			marker = "┴"
		}
		fmt.Fprintf(&b, " %s %s %s\n", StyleHighlight.Render(marker), listNormalStyle.Render(s.Name), listDimStyle.Render(s.ID))
	}
	return b.String()
}

func firstName(c feed.Candidate) string {
	if len(c.Stops) == 0 {
		return "—"
	}
	return c.Stops[0].Name
}

func lastName(c feed.Candidate) string {
	if len(c.Stops) == 0 {
		return "—"
	}
	return c.Stops[len(c.Stops)-1].Name
}
