package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/lazyload/internal/launch"
	"github.com/pders01/lazyload/internal/storage"
)

func (a *App) initialize() tea.Cmd {
	contacts, ctx := a.contacts, a.ctx
	return func() tea.Msg {
		contacts.Initialize(ctx)
		return nil
	}
}

func (a *App) refresh() tea.Cmd {
	contacts, ctx := a.contacts, a.ctx
	return func() tea.Msg {
		contacts.Refresh(ctx)
		return nil
	}
}

// waitForState blocks until the collection publishes the next state.
func (a *App) waitForState() tea.Cmd {
	ch := a.states
	return func() tea.Msg {
		return stateMsg{state: <-ch}
	}
}

func (a *App) waitForFailure() tea.Cmd {
	if a.failures == nil {
		return nil
	}
	ch := a.failures
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return failureMsg{failure: f}
	}
}

func (a *App) renderDetail(c storage.Contact) tea.Cmd {
	// The renderer is cached on the app and must be resolved on the UI goroutine.
	r, err := a.getRenderer()
	return func() tea.Msg {
		if err != nil {
			return errorMsg{err: wrapErr("initializing renderer", err)}
		}
		rendered, err := r.Render(contactMarkdown(c))
		if err != nil {
			return detailRenderedMsg{
				id:      c.ID,
				content: fmt.Sprintf("# Error\n\nFailed to render contact: %s\n\nPress Escape to go back.", err.Error()),
			}
		}
		return detailRenderedMsg{id: c.ID, content: rendered}
	}
}

func contactMarkdown(c storage.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.DisplayName())

	switch {
	case c.Title != "" && c.Account != "":
		fmt.Fprintf(&b, "**%s** at %s\n\n", c.Title, c.Account)
	case c.Title != "":
		fmt.Fprintf(&b, "**%s**\n\n", c.Title)
	case c.Account != "":
		fmt.Fprintf(&b, "%s\n\n", c.Account)
	}

	if c.Email != "" {
		fmt.Fprintf(&b, "- Email: [%s](mailto:%s)\n", c.Email, c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", c.Phone)
	}
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Added: %s\n", c.CreatedAt.Format("Jan 2, 2006"))
	}

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "`%s`\n", c.ID)
	return b.String()
}

// scheduleFind debounces full-text queries: only the latest sequence
// number survives the wait.
func (a *App) scheduleFind(query string) tea.Cmd {
	a.findSeq++
	a.findPending = query
	seq := a.findSeq
	if query == "" {
		a.finding = false
		return nil
	}
	return tea.Tick(findDebounce, func(time.Time) tea.Msg { return findDebounceMsg{seq: seq} })
}

func (a *App) runFind(seq int, query string) tea.Cmd {
	s := a.searcher
	return func() tea.Msg {
		if s == nil {
			return findResultsMsg{seq: seq, query: query}
		}
		results, err := s.Search(query, findLimit)
		return findResultsMsg{seq: seq, query: query, results: results, err: err}
	}
}

// openLink builds the contact's link on the UI goroutine and launches it in
// the background.
func (a *App) openLink(c storage.Contact, kind launch.Kind) tea.Cmd {
	target, err := launch.Target(c, kind)
	if err != nil {
		return a.setStatus(fmt.Sprintf("Cannot open %s: %v", kind, err), StatusWarn, statusLifetime)
	}
	opener := a.opener
	return func() tea.Msg {
		if err := opener.Open(target); err != nil {
			return errorMsg{err: wrapErr("open link", err)}
		}
		return linkOpenedMsg{target: target}
	}
}
