package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/search"
	"github.com/pders01/lazyload/internal/storage"
)

type View int

const (
	ViewContacts View = iota
	ViewDetail
	ViewFind
)

func (v View) String() string {
	switch v {
	case ViewContacts:
		return "contacts"
	case ViewDetail:
		return "detail"
	case ViewFind:
		return "find"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

type contactItem struct {
	contact storage.Contact
}

func (i contactItem) Title() string {
	return NameStyle.Render(i.contact.DisplayName())
}

func (i contactItem) Description() string {
	desc := truncateMiddle(i.contact.Email, 48)
	if i.contact.Title != "" {
		desc = i.contact.Title + " • " + desc
	}
	if i.contact.Account != "" {
		desc += MetaStyle.Render(" • " + i.contact.Account)
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
}

func (i contactItem) FilterValue() string {
	return i.contact.DisplayName() + " " + i.contact.Email
}

type resultItem struct {
	result *search.Result
}

func (i resultItem) Title() string {
	return NameStyle.Render(i.result.Contact.DisplayName())
}

func (i resultItem) Description() string {
	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(fmt.Sprintf("%s • score %.2f", i.result.Contact.Email, i.result.Score))
}

func (i resultItem) FilterValue() string { return i.result.Contact.DisplayName() }

// stateMsg carries a collection state published off the UI goroutine.
type stateMsg struct {
	state paging.State[storage.Contact]
}

type failureMsg struct {
	failure *paging.Failure
}

type detailRenderedMsg struct {
	id      string
	content string
}

type findResultsMsg struct {
	seq     int
	query   string
	results []*search.Result
	err     error
}

type findDebounceMsg struct {
	seq int
}

type clearStatusMsg struct {
	seq int
}

type linkOpenedMsg struct {
	target string
}

type errorMsg struct {
	err error
}
