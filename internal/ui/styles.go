package ui

import (
	"excerpter/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// List view styles
	Name     lipgloss.Style
	Path     lipgloss.Style
	Code     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	// Preview styles
	PreviewName   lipgloss.Style
	PreviewPath   lipgloss.Style
	PreviewCode   lipgloss.Style
	PreviewGutter lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Name:          lipgloss.NewStyle().Bold(true),
		Path:          lipgloss.NewStyle(),
		Code:          lipgloss.NewStyle(),
		Selected:      lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:        lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewName:   lipgloss.NewStyle().Bold(true),
		PreviewPath:   lipgloss.NewStyle(),
		PreviewCode:   lipgloss.NewStyle(),
		PreviewGutter: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Border:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:    lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	nameColor := parseANSIColor(config.GetColorName())
	pathColor := parseANSIColor(config.GetColorPath())
	codeColor := parseANSIColor(config.GetColorCode())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorCursor())
	selectedBg := lipgloss.Color(config.GetColorSelected())
	dimColor := lipgloss.Color(config.GetColorDim())

	// List view styles
	s.Name = lipgloss.NewStyle().Foreground(nameColor)
	s.Path = lipgloss.NewStyle().Foreground(pathColor)
	s.Code = lipgloss.NewStyle().Foreground(codeColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	// Preview styles (same colors, name is bold)
	s.PreviewName = lipgloss.NewStyle().Bold(true).Foreground(nameColor)
	s.PreviewPath = lipgloss.NewStyle().Foreground(pathColor)
	s.PreviewCode = lipgloss.NewStyle().Foreground(codeColor)
	s.PreviewGutter = lipgloss.NewStyle().Foreground(dimColor)

	// Chrome styles
	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.SelectedBg = selectedBg
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
