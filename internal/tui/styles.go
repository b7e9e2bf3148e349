package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the explain viewer: a cool blue/teal theme, distinct
// from a progress-bar palette since this tool browses finished results
// rather than tracking a running operation.
const (
	ColorTeal     = "86"  // Primary accent
	ColorTealDim  = "30"  // Dimmed teal for inactive/borders
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorRed      = "196" // Waste/errors
	ColorYellow   = "220" // Partial-number/garbage flags
)

// Styles holds the lipgloss styles the explain viewer renders with.
type Styles struct {
	Header   lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Label    lipgloss.Style
	Waste    lipgloss.Style
	Flag     lipgloss.Style
	Border   lipgloss.Style
}

// DefaultStyles returns the teal-accented style set.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTeal)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)).Background(lipgloss.Color(ColorTealDim)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Waste:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Flag:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}
