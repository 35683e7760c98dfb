package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/rigwall/pkg/catalog"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, pills
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
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
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	stylePill        = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// status is one kind of status line: an icon and how to draw it.
type status struct {
	glyph string
	style lipgloss.Style
	text  *lipgloss.Style // nil leaves the message unstyled
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen), nil}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed), nil}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorYellow), &StyleWarning}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray), nil}
)

func (st status) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if st.text != nil {
		msg = st.text.Render(msg)
	}
	fmt.Println(st.style.Render(st.glyph) + " " + msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path under a status line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints gallery counts on a single line.
func printStats(vehicles, visible, placed int, cached bool) {
	parts := []string{fmt.Sprintf("%d vehicles", vehicles)}
	if visible != vehicles {
		parts = append(parts, fmt.Sprintf("%d match", visible))
	}
	if placed > 0 {
		parts = append(parts, fmt.Sprintf("%d placed", placed))
	}

	source := StyleDim.Render("fresh")
	if cached {
		source = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line + StyleDim.Render(" · ") + source)
}

// =============================================================================
// Tables
// =============================================================================

// vehicleTable renders vehicles as a bordered table in list order.
func vehicleTable(vs []catalog.Vehicle) string {
	rows := make([][]string, len(vs))
	for i, v := range vs {
		rows[i] = []string{
			strconv.Itoa(v.ID),
			strconv.Itoa(v.Year()),
			v.Category.Label(),
			v.Owner,
			v.Sold.Label,
			v.SalesRep,
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Year", "Category", "Owner", "Sold", "Sales Rep").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styleHeader.Padding(0, 1)
			case col == 0 || col == 4:
				return base.Foreground(colorDim)
			case col == 1 || col == 2:
				return base.Foreground(colorYellow)
			case col == 3:
				return base.Foreground(colorBlue)
			}
			return base
		})
	return t.Render()
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
