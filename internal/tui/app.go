// Package tui is the interactive terminal app: a notification inbox and a
// listings browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evtb/evtb/internal/browser"
	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/domain"
	"github.com/evtb/evtb/pkg/token"
)

type view int

const (
	viewInbox view = iota
	viewListings
)

const statusEvery = 15 * time.Second

// Options wires the app to its data sources.
type Options struct {
	Notifications notify.Service
	Market        Market
	User          *domain.User
	// TokenStatus reports the stored token for the header. May be nil.
	TokenStatus func() (token.Status, error)
	BaseURL     string
}

type statusTickMsg time.Time

func statusTickCmd() tea.Cmd {
	return tea.Tick(statusEvery, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// App is the root Bubbletea model.
type App struct {
	opts       Options
	view       view
	inbox      inboxModel
	listings   listingsModel
	status     token.Status
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int
}

// NewApp creates the TUI. It opens on the inbox when a user is signed in and
// on the listings otherwise.
func NewApp(opts Options) App {
	var userID int64
	if opts.User != nil {
		userID = opts.User.ID
	}
	a := App{
		opts:     opts,
		inbox:    newInboxModel(opts.Notifications, userID),
		listings: newListingsModel(opts.Market, userID),
	}
	if opts.User == nil {
		a.view = viewListings
	}
	a.status = a.readStatus()
	return a
}

func (a App) readStatus() token.Status {
	if a.opts.TokenStatus == nil {
		return token.Status{}
	}
	st, err := a.opts.TokenStatus()
	if err != nil {
		return token.Status{}
	}
	return st
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd(), statusTickCmd()}
	if a.view == viewInbox {
		cmds = append(cmds, a.inbox.Init())
	} else {
		cmds = append(cmds, a.listings.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.inbox, _ = a.inbox.Update(body)
		a.listings, _ = a.listings.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case statusTickMsg:
		a.status = a.readStatus()
		return a, statusTickCmd()

	case inboxLoadedMsg, markReadResultMsg, markAllResultMsg, deleteResultMsg:
		var cmd tea.Cmd
		a.inbox, cmd = a.inbox.Update(msg)
		return a, cmd

	case listingsLoadedMsg, favoriteResultMsg:
		var cmd tea.Cmd
		a.listings, cmd = a.listings.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "1":
				return a.switchTo(viewInbox)
			case "2":
				return a.switchTo(viewListings)
			case "tab":
				if a.view == viewInbox {
					return a.switchTo(viewListings)
				}
				return a.switchTo(viewInbox)
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewInbox:
		a.inbox, cmd = a.inbox.Update(msg)
	case viewListings:
		a.listings, cmd = a.listings.Update(msg)
	}
	return a, cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "?", "esc":
		a.helpOpen = false
	case "q", "ctrl+c":
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(helpItems)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		if a.opts.BaseURL != "" {
			browser.Open(a.opts.BaseURL + helpItems[a.helpCursor].path) //nolint:errcheck // best-effort browser open
		}
	}
	return a, nil
}

func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	if v == viewInbox && a.opts.User == nil {
		a.listings.statusMsg = "sign in to see notifications -- run: evtb login"
		return a, nil
	}
	a.view = v
	if v == viewInbox {
		a.inbox.loading = true
		return a, a.inbox.load()
	}
	a.listings.loading = true
	return a, a.listings.load()
}

func (a App) isEditing() bool {
	return a.view == viewListings && a.listings.editing
}

func (a App) header() string {
	logo := renderShimmerLogo(a.frame)

	var parts []string
	if u := a.opts.User; u != nil {
		name := selectedStyle.Render(u.DisplayName())
		if u.IsAdmin() {
			name += " " + sectionHeaderStyle.Render("admin")
		}
		parts = append(parts, name)
	}
	parts = append(parts, TokenBadge(a.status, time.Now()))
	info := strings.Join(parts, metaStyle.Render(" · "))

	pad := a.width - lipgloss.Width(logo) - lipgloss.Width(info) - 2
	if pad < 2 {
		pad = 2
	}
	return " " + logo + strings.Repeat(" ", pad) + info + "\n"
}

func (a App) tabs() string {
	type tab struct {
		key  string
		name string
		v    view
	}
	var b strings.Builder
	b.WriteString(" ")
	for _, t := range []tab{{"1", "Inbox", viewInbox}, {"2", "Listings", viewListings}} {
		label := t.name
		if t.v == viewInbox && a.inbox.unread > 0 {
			label += fmt.Sprintf(" (%d)", a.inbox.unread)
		}
		if t.v == a.view {
			b.WriteString(accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(label) + "   ")
		} else {
			b.WriteString(metaStyle.Render(t.key) + " " + dimStyle.Render(label) + "   ")
		}
	}
	return b.String()
}

func (a App) View() string {
	var body, help string
	switch a.view {
	case viewInbox:
		body = a.inbox.View()
		help = " " + helpEntry("1-2", "tabs") + "  " + a.inbox.helpKeys() + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewListings:
		body = a.listings.View()
		help = " " + helpEntry("1-2", "tabs") + "  " + a.listings.helpKeys() + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView(a.opts.BaseURL, a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", a.header(), a.tabs(), body, help)
}
