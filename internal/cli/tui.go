package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/layout"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PersonPickerModel - Interactive person selection
// =============================================================================

// PersonPickerModel is the bubbletea model behind "people pick". Typing
// narrows the list to people whose name contains the filter text.
type PersonPickerModel struct {
	People   []*tree.Person
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *tree.Person

	matches []*tree.Person
}

// NewPersonPickerModel lists people in generation order.
func NewPersonPickerModel(p *tree.TreeProject) PersonPickerModel {
	byID := p.PeopleByID()
	var people []*tree.Person
	for _, row := range layout.Rows(layout.ComputeGenerations(p), p) {
		for _, id := range row.IDs {
			people = append(people, byID[id])
		}
	}
	m := PersonPickerModel{People: people, Height: 15}
	m.matches = people
	return m
}

func (m PersonPickerModel) Init() tea.Cmd {
	return nil
}

func (m PersonPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.matches) == 0 {
				return m, nil
			}
			m.Selected = m.matches[m.Cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.Filter); len(r) > 0 {
				m.setFilter(string(r[:len(r)-1]))
			}
		case tea.KeyRunes, tea.KeySpace:
			m.setFilter(m.Filter + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m *PersonPickerModel) setFilter(filter string) {
	m.Filter = filter
	m.Cursor, m.Offset = 0, 0
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		m.matches = m.People
		return
	}
	m.matches = nil
	for _, p := range m.People {
		if strings.Contains(strings.ToLower(p.DisplayName), needle) ||
			strings.Contains(strings.ToLower(tree.Value(p.FullName)), needle) {
			m.matches = append(m.matches, p)
		}
	}
}

func (m PersonPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Person"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString("  " + iconInfo + " " + StyleValue.Render(m.Filter) + "\n\n")

	end := min(m.Offset+m.Height, len(m.matches))
	for i := m.Offset; i < end; i++ {
		p := m.matches[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-30s %s", cursor, p.Name(), listDimStyle.Render(lifespan(p)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.matches) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.matches)), len(m.matches))))
	return b.String()
}

// pickPerson runs the picker on stderr so stdout carries only the result.
// It returns nil when the user quits without choosing.
func pickPerson(ctx context.Context, p *tree.TreeProject) (*tree.Person, error) {
	prog := tea.NewProgram(NewPersonPickerModel(p), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	return final.(PersonPickerModel).Selected, nil
}
