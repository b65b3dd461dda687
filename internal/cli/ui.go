package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/layout"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printStats prints project counts on one line, e.g. "4 people · 3 relationships".
func printStats(people, relationships int) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d people · %d relationships", people, relationships)))
}

// printCacheStatus reports whether a rendered artifact came from the cache.
func printCacheStatus(cached bool) {
	if cached {
		fmt.Println("  " + styleCached.Render("cached"))
		return
	}
	fmt.Println("  " + styleComputed.Render("fresh"))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Tables
// =============================================================================

// peopleTable renders people grouped by generation, one row per person in
// the order the layout engine places them.
func peopleTable(p *tree.TreeProject) string {
	levels := layout.ComputeGenerations(p)
	byID := p.PeopleByID()

	var rows [][]string
	for _, row := range layout.Rows(levels, p) {
		for _, id := range row.IDs {
			person := byID[id]
			rows = append(rows, []string{
				strconv.Itoa(row.Level),
				id,
				person.Name(),
				lifespan(person),
				tree.Value(person.Gender),
				names(byID, p.ParentsOf(id)),
				names(byID, p.SpousesOf(id)),
				strconv.Itoa(len(p.ChildrenOf(id))),
			})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Gen", "ID", "Name", "Years", "Gender", "Parents", "Spouses", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0 || col == 1:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		})
	return t.Render()
}

// names joins the display names of ids, skipping unknown ones.
func names(byID map[string]*tree.Person, ids []string) string {
	var out []string
	for _, id := range ids {
		if person := byID[id]; person != nil {
			out = append(out, person.Name())
		}
	}
	return strings.Join(out, ", ")
}

func lifespan(p *tree.Person) string {
	birth, death := tree.Value(p.BirthDate), tree.Value(p.DeathDate)
	switch {
	case birth != "" && death != "":
		return birth + " - " + death
	case birth != "":
		return "b. " + birth
	case death != "":
		return "d. " + death
	}
	return ""
}
