package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	app, _ := newTestApp(t, 1)

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
	assert.Equal(t, "ctrl+s", app.keyHandler.search)
	assert.Equal(t, "ctrl+r", app.keyHandler.refresh)
}

func TestKeyHandler_CustomBindings(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	cfg.Keys.Bindings.Quit = "x"
	cfg.Keys.Bindings.Search = "/"

	coll := paging.New(sliceSource(testContacts(1)))
	defer coll.Close()
	app := NewApp(coll, cfg)
	defer app.Close()

	assert.Equal(t, "alt+/", app.keyHandler.search)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if assert.NotNil(t, cmd) {
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd, "q is no longer bound")
}

func TestKeyHandler_EmptyBindingsFallBack(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Bindings = config.KeyBindings{}

	coll := paging.New[storage.Contact](sliceSource(nil))
	defer coll.Close()
	kh := NewKeyHandler(NewApp(coll, cfg), cfg)

	assert.Equal(t, "q", kh.quit)
	assert.Equal(t, "esc", kh.back)
	assert.Equal(t, "?", kh.help)
	assert.Equal(t, "ctrl+s", kh.search)
}

func TestKeyHandler_HandleKey_CtrlS(t *testing.T) {
	app, _ := newTestApp(t, 1)
	app.view = ViewContacts

	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	updatedApp := updatedModel.(*App)

	assert.Equal(t, ViewContacts, updatedApp.view)
	assert.True(t, updatedApp.filterInput.Focused(), "Ctrl+S should focus the filter input")
}

func TestKeyHandler_FilterInputCapturesQuitKey(t *testing.T) {
	app, coll := newTestApp(t, 1)
	app.filterInput.Focus()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.Equal(t, "q", app.filterInput.Value())
	assert.Equal(t, "q", coll.State().Filter)
	if cmd != nil {
		assert.NotEqual(t, tea.QuitMsg{}, cmd())
	}
}

func TestKeyHandler_EscBlursFilterInput(t *testing.T) {
	app, _ := newTestApp(t, 1)
	app.filterInput.Focus()
	app.filterInput.SetValue("ada")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, app.filterInput.Focused())
	assert.Equal(t, "ada", app.filterInput.Value(), "blurring keeps the filter")
}

func TestKeyHandler_HelpToggle(t *testing.T) {
	app, _ := newTestApp(t, 1)
	assert.False(t, app.showHelp)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.True(t, app.showHelp)
}

func TestKeyHandler_SanitizeSearchInput(t *testing.T) {
	app, _ := newTestApp(t, 1)
	kh := app.keyHandler

	tests := []struct {
		in, want string
	}{
		{"  ada  ", "ada"},
		{"ada\tlove\nlace", "ada love lace"},
		{"a    b", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kh.sanitizeSearchInput(tt.in))
	}

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, kh.sanitizeSearchInput(string(long)), 256)
}

func TestKeyHandler_HelpForView(t *testing.T) {
	app, _ := newTestApp(t, 1, WithSearcher(&fakeSearcher{}))

	app.view = ViewContacts
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+f: find")

	app.view = ViewDetail
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "esc: back")
}
