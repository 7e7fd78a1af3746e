package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/launch"
	"github.com/pders01/lazyload/internal/search"
	"github.com/pders01/lazyload/internal/storage"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string

	quit    string
	back    string
	help    string
	search  string
	refresh string
	find    string
	mail    string
	call    string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := ""
	if cfg.Keys.Modifier != "" {
		modifierKey = cfg.Keys.Modifier + "+"
	}
	b := cfg.Keys.Bindings
	return &KeyHandler{
		app:         app,
		config:      cfg,
		modifierKey: modifierKey,
		quit:        orDefault(b.Quit, "q"),
		back:        orDefault(b.Back, "esc"),
		help:        orDefault(b.Help, "?"),
		search:      modifierKey + orDefault(b.Search, "s"),
		refresh:     modifierKey + orDefault(b.Refresh, "r"),
		find:        modifierKey + "f",
		mail:        orDefault(b.Mail, "m"),
		call:        orDefault(b.Call, "p"),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewContacts:
		return kh.app.filterInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.app, tea.Quit
	case "esc":
		if kh.app.view == ViewContacts {
			kh.app.filterInput.Blur()
			return kh.app, nil
		}
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		switch kh.app.view {
		case ViewContacts:
			kh.app.filterInput.Blur()
			return kh.app, nil
		case ViewFind:
			if len(kh.app.findList.Items()) > 0 {
				kh.app.findInput.Blur()
				kh.app.findList.Select(0)
			}
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewContacts:
		kh.app.filterInput.Blur()
		return kh.app, nil

	case ViewFind:
		if items := kh.app.findList.Items(); len(items) > 0 {
			if i, ok := items[0].(resultItem); ok {
				return kh.openResult(i)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused input and reacts to
// value changes.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewContacts:
		prev := kh.sanitizeSearchInput(kh.app.filterInput.Value())
		newInput, cmd := kh.app.filterInput.Update(msg)
		kh.app.filterInput = newInput

		filter := kh.sanitizeSearchInput(kh.app.filterInput.Value())
		if filter != prev {
			kh.app.contacts.OnFilterChange(filter)
			return kh.app, tea.Batch(cmd, kh.app.startSpinner())
		}
		return kh.app, cmd

	case ViewFind:
		prev := kh.app.findPending
		newInput, cmd := kh.app.findInput.Update(msg)
		kh.app.findInput = newInput

		query := kh.sanitizeSearchInput(kh.app.findInput.Value())
		if query != prev {
			if query == "" {
				kh.app.findList.SetItems([]list.Item{})
			}
			return kh.app, tea.Batch(cmd, kh.app.scheduleFind(query))
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.quit:
		return kh.app, tea.Quit, true
	case kh.back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.help:
		kh.app.showHelp = !kh.app.showHelp
		return kh.app, nil, true
	case kh.search:
		model, cmd := kh.focusFilter()
		return model, cmd, true
	case kh.find:
		if kh.app.searcher == nil {
			return kh.app, nil, false
		}
		model, cmd := kh.enterFindMode()
		return model, cmd, true
	}

	if kh.app.view == ViewDetail && kh.app.opener != nil && kh.app.current != nil {
		switch key {
		case kh.mail:
			return kh.app, kh.app.openLink(*kh.app.current, launch.KindMail), true
		case kh.call:
			return kh.app, kh.app.openLink(*kh.app.current, launch.KindPhone), true
		}
	}

	if kh.app.view == ViewContacts && key == kh.refresh {
		return kh.app, tea.Batch(
			kh.app.setStatus(MsgRefreshing, StatusInfo, statusLifetime),
			kh.app.startSpinner(),
			kh.app.refresh(),
		), true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewContacts:
		kh.app.contactList, cmd = kh.app.contactList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := kh.app.contactList.SelectedItem().(contactItem); ok {
				c := i.contact
				return kh.openContact(&c, ViewContacts)
			}
		}
		return kh.app, tea.Batch(cmd, kh.app.checkProximity())

	case ViewFind:
		if !kh.app.findInput.Focused() {
			switch msg.String() {
			case "tab", "shift+tab", "/", "i":
				kh.app.findInput.Focus()
				return kh.app, nil
			case "up":
				if kh.app.findList.Index() == 0 {
					kh.app.findInput.Focus()
					return kh.app, nil
				}
			}
		}
		kh.app.findList, cmd = kh.app.findList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := kh.app.findList.SelectedItem().(resultItem); ok {
				return kh.openResult(i)
			}
		}
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) openResult(i resultItem) (tea.Model, tea.Cmd) {
	if i.result == nil || i.result.Contact == nil {
		return kh.app, nil
	}
	kh.app.findInput.Blur()
	return kh.openContact(i.result.Contact, ViewFind)
}

func (kh *KeyHandler) openContact(c *storage.Contact, from View) (tea.Model, tea.Cmd) {
	kh.app.current = c
	kh.app.previousView = from
	kh.app.view = ViewDetail
	kh.app.rendering = true
	return kh.app, tea.Batch(kh.app.startSpinner(), kh.app.renderDetail(*c))
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		kh.app.view = kh.app.previousView
		kh.app.current = nil
		kh.app.rendering = false
		return kh.app, nil

	case ViewFind:
		kh.app.view = ViewContacts
		kh.app.findInput.Reset()
		kh.app.findPending = ""
		kh.app.findSeq++
		kh.app.finding = false
		kh.app.findList.SetItems([]list.Item{})
		return kh.app, nil

	case ViewContacts:
		if kh.app.filterInput.Value() != "" {
			kh.app.filterInput.Reset()
			kh.app.filterInput.Blur()
			kh.app.contacts.OnFilterChange("")
			return kh.app, kh.app.startSpinner()
		}
		return kh.app, tea.Quit

	default:
		return kh.app, tea.Quit
	}
}

func (kh *KeyHandler) focusFilter() (tea.Model, tea.Cmd) {
	kh.app.view = ViewContacts
	kh.app.current = nil
	kh.app.filterInput.Focus()
	return kh.app, nil
}

// enterFindMode transitions to the full-text view
func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	kh.app.previousView = kh.app.view
	kh.app.view = ViewFind
	kh.app.findInput.Reset()
	kh.app.findInput.Focus()
	kh.app.findPending = ""
	kh.app.findList.SetItems([]list.Item{})
	if ds, ok := kh.app.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			return kh.app, kh.app.setStatus(fmt.Sprintf("Index: %d contacts", n), StatusInfo, statusLifetime)
		}
	}
	return kh.app, nil
}

// sanitizeSearchInput sanitizes and limits search input length
func (kh *KeyHandler) sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if len(input) > 256 {
		input = input[:256]
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}

func (kh *KeyHandler) helpHint() string {
	return kh.help + ": keys"
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	switch kh.app.view {
	case ViewContacts:
		help := []string{kh.search + ": filter", kh.refresh + ": refresh"}
		if kh.app.searcher != nil {
			help = append(help, kh.find+": find")
		}
		return append(help, "enter: open", kh.quit+": quit")

	case ViewDetail:
		help := []string{"↑↓: scroll"}
		if kh.app.opener != nil {
			help = append(help, kh.mail+": mail", kh.call+": call")
		}
		return append(help, kh.back+": back")

	case ViewFind:
		return []string{"enter: open", kh.back + ": back"}

	default:
		return []string{}
	}
}
