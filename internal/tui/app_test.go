package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitzip-go/internal/config"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_MenuNavigation(t *testing.T) {
	m := NewModel(Options{Config: defaultConfig()})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	for range Categories {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, len(Categories), m.cursor)
	assert.Contains(t, m.View(), "Save Configuration")
}

func TestModel_OpenAndLeaveForm(t *testing.T) {
	m := NewModel(Options{Config: defaultConfig()})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenForm, m.screen)
	require.NotNil(t, m.form)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenMenu, m.screen)
	assert.False(t, m.Dirty())
}

func TestModel_Save(t *testing.T) {
	var saved *config.Config
	m := NewModel(Options{
		Config: defaultConfig(),
		Save: func(cfg *config.Config) error {
			saved = cfg
			return nil
		},
	})
	m.values.Workers = "3"

	m, _ = send(t, m, keyRunes("s"))
	assert.Equal(t, screenSaved, m.screen)
	require.NotNil(t, saved)
	assert.Equal(t, 3, saved.Concurrency.Workers)
	assert.Contains(t, m.View(), "Configuration saved.")

	_, cmd := send(t, m, keyRunes("x"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_SaveError(t *testing.T) {
	m := NewModel(Options{
		Config: defaultConfig(),
		Save:   func(*config.Config) error { return errors.New("disk full") },
	})

	m, _ = send(t, m, keyRunes("s"))
	assert.Equal(t, screenError, m.screen)
	assert.Contains(t, m.View(), "disk full")
}

func TestModel_InvalidValuesFailSave(t *testing.T) {
	m := NewModel(Options{Config: defaultConfig()})
	m.values.TreeStrategy = "sideways"

	m, _ = send(t, m, keyRunes("s"))
	assert.Equal(t, screenError, m.screen)
}

func TestModel_QuitWithUnsavedChanges(t *testing.T) {
	m := NewModel(Options{Config: defaultConfig()})
	m.dirty = true

	m, _ = send(t, m, keyRunes("q"))
	assert.Equal(t, screenConfirm, m.screen)
	assert.Contains(t, m.View(), "unsaved changes")

	m, _ = send(t, m, keyRunes("c"))
	assert.Equal(t, screenMenu, m.screen)

	_, cmd := send(t, m, keyRunes("q"))
	assert.Nil(t, cmd)
}

func TestModel_QuitClean(t *testing.T) {
	m := NewModel(Options{})
	_, cmd := send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
