package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantmind-br/gitzip-go/internal/config"
)

type screen int

const (
	screenMenu screen = iota
	screenForm
	screenConfirm
	screenSaved
	screenError
)

// Model is the bubbletea model of the configuration editor
type Model struct {
	screen     screen
	values     *ConfigValues
	cursor     int
	form       *huh.Form
	err        error
	dirty      bool
	save       func(*config.Config) error
	accessible bool
}

type Options struct {
	Config *config.Config
	// Save persists the edited configuration
	Save       func(*config.Config) error
	Accessible bool
}

func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return Model{
		values:     FromConfig(cfg),
		save:       opts.Save,
		accessible: opts.Accessible,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Dirty reports whether a form was completed since the last save
func (m Model) Dirty() bool {
	return m.dirty
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.screen {
		case screenMenu:
			return m.updateMenu(key)
		case screenConfirm:
			return m.updateConfirm(key)
		case screenSaved, screenError:
			return m, tea.Quit
		case screenForm:
			if key.String() == "esc" {
				m.screen = screenMenu
				return m, nil
			}
		}
	}

	if m.screen == screenForm && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		if m.dirty {
			m.screen = screenConfirm
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(Categories) {
			m.cursor++
		}

	case "s":
		return m.handleSave()

	case "enter":
		if m.cursor == len(Categories) {
			return m.handleSave()
		}
		m.form = GetFormForCategory(Categories[m.cursor].ID, m.values)
		if m.accessible {
			m.form = m.form.WithAccessible(true)
		}
		m.screen = screenForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.dirty = true
		m.screen = screenMenu
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m.handleSave()
	case "n", "N":
		return m, tea.Quit
	case "c", "esc":
		m.screen = screenMenu
	}
	return m, nil
}

func (m Model) handleSave() (tea.Model, tea.Cmd) {
	cfg, err := m.values.ToConfig()
	if err == nil && m.save != nil {
		err = m.save(cfg)
	}
	if err != nil {
		m.screen = screenError
		m.err = err
		return m, nil
	}
	m.screen = screenSaved
	m.dirty = false
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(TitleStyle.Render("gitzip configuration"))
	s.WriteString("\n\n")

	switch m.screen {
	case screenMenu:
		s.WriteString(m.renderMenu())
	case screenForm:
		s.WriteString(m.form.View())
	case screenConfirm:
		s.WriteString(lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warnColor).
			Padding(1, 2).
			Render("You have unsaved changes.\n\nSave before quitting?\n\n[y] Yes  [n] No  [c] Cancel"))
	case screenSaved:
		s.WriteString(SuccessStyle.Render("Configuration saved."))
		s.WriteString("\n\nPress any key to exit.")
	case screenError:
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\nPress any key to exit.")
	}
	return s.String()
}

func (m Model) renderMenu() string {
	var s strings.Builder

	line := func(i int, text string) {
		cursor, style := "  ", UnselectedStyle
		if i == m.cursor {
			cursor, style = "> ", SelectedStyle
		}
		s.WriteString(style.Render(cursor + text))
	}

	for i, cat := range Categories {
		line(i, cat.Name)
		if i == m.cursor {
			s.WriteString(DescriptionStyle.Render("  " + cat.Description))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	save := "Save Configuration"
	if m.dirty {
		save += " *"
	}
	line(len(Categories), save)
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("↑/↓ navigate • enter select • s save • q quit"))
	return s.String()
}

// Run starts the editor on the alternate screen
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
