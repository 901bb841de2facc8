package explore

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

var (
	colorPrimary   = lipgloss.Color("#c0392b") // brick
	colorSecondary = lipgloss.Color("10")      // green
	colorMatch     = lipgloss.Color("#f1c40f") // yellow
	colorMuted     = lipgloss.Color("8")       // gray
	colorHigh      = lipgloss.Color("9")       // red
	colorMedium    = lipgloss.Color("#e67e22") // orange
	colorLow       = lipgloss.Color("#3498db") // blue
	colorAccent    = lipgloss.Color("#1abc9c") // teal
	colorHighlight = lipgloss.Color("15")      // white
)

// Pane border styles
var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted)
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Background(colorPrimary).
	Padding(0, 1)

var (
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(colorHighlight)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)
)

var (
	snippetMatchStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorMatch)

	snippetContextStyle = lipgloss.NewStyle().
				Foreground(colorMuted)
)

var severityStyles = map[types.Severity]lipgloss.Style{
	types.SeverityHigh:   lipgloss.NewStyle().Foreground(colorHigh).Bold(true),
	types.SeverityMedium: lipgloss.NewStyle().Foreground(colorMedium),
	types.SeverityLow:    lipgloss.NewStyle().Foreground(colorLow),
}

var statusBarStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var (
	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

var (
	facetLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	facetSelectedStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	facetCountStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

var (
	fieldLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	fieldValueStyle = lipgloss.NewStyle().Foreground(colorHighlight)
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// renderSeverity returns a styled severity label.
func renderSeverity(sev types.Severity) string {
	style, ok := severityStyles[sev]
	if !ok {
		return snippetContextStyle.Render("-")
	}
	return style.Render(string(sev))
}
