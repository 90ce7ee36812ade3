// Package tui provides an interactive terminal editor for the gitzip configuration.
package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#58A6FF"}
	good   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	bad    = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	muted  = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}

	warnColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
)

var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	DescriptionStyle = lipgloss.NewStyle().Foreground(muted)
	SuccessStyle     = lipgloss.NewStyle().Foreground(good)
	ErrorStyle       = lipgloss.NewStyle().Foreground(bad).Bold(true)
	SelectedStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	UnselectedStyle  = lipgloss.NewStyle()
	HelpStyle        = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
)

// GetTheme is the form theme shared by every category form.
func GetTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(accent).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(bad)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(bad)
	return t
}
