package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"open", km.Open, []string{"enter"}},
		{"refresh", km.Refresh, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_MatchesKeyMsg(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.Down))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Open))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, km.Quit))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.JobsHelp(), km.Refresh)
	assert.Contains(t, km.ResultHelp(), km.Back)
	assert.NotContains(t, km.ResultHelp(), km.Open)
}
