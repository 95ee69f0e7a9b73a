package analysis

import "github.com/charmbracelet/lipgloss"

// Theme colors.
var (
	PrimaryColor = lipgloss.Color("#2E86AB")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
)

// Styles contains all styling definitions for report formatting.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style
	Box      lipgloss.Style
	Score    lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(SubtleColor),
		Success:  lipgloss.NewStyle().Foreground(SuccessColor),
		Warning:  lipgloss.NewStyle().Foreground(WarningColor),
		Error:    lipgloss.NewStyle().Foreground(ErrorColor),
		Info:     lipgloss.NewStyle().Foreground(InfoColor),
		Subtle:   lipgloss.NewStyle().Foreground(SubtleColor),
		Normal:   lipgloss.NewStyle(),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1),
		Score:   lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor),
		Income:  lipgloss.NewStyle().Foreground(SuccessColor),
		Expense: lipgloss.NewStyle().Foreground(ErrorColor),
	}
}
