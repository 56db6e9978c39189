package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/domain"
)

type inboxModel struct {
	svc       notify.Service
	userID    int64
	items     []domain.Notification
	total     int
	unread    int
	page      int
	pages     int
	cursor    int
	loading   bool
	err       error
	statusMsg string
	width     int
	height    int
}

type inboxLoadedMsg struct {
	page   *domain.NotificationPage
	unread int
	err    error
}

type markReadResultMsg struct {
	id  int64
	err error
}

type markAllResultMsg struct {
	count int
	err   error
}

type deleteResultMsg struct {
	id      int64
	deleted bool
	err     error
}

type copyResultMsg struct{ err error }

func newInboxModel(svc notify.Service, userID int64) inboxModel {
	return inboxModel{svc: svc, userID: userID, page: 1, loading: true}
}

func (m inboxModel) Init() tea.Cmd {
	return m.load()
}

func (m inboxModel) load() tea.Cmd {
	svc, userID, page := m.svc, m.userID, m.page
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		p, err := svc.UserNotifications(ctx, userID, page, pageSize)
		if err != nil {
			return inboxLoadedMsg{err: err}
		}
		unread, _ := svc.UnreadCount(ctx, userID)
		return inboxLoadedMsg{page: p, unread: unread}
	}
}

func (m inboxModel) Update(msg tea.Msg) (inboxModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case inboxLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.items = msg.page.Notifications
		m.total = msg.page.TotalCount
		m.pages = msg.page.TotalPages
		m.unread = msg.unread
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}
		return m, nil

	case markReadResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("mark read failed: %v", msg.err)
			return m, nil
		}
		for i := range m.items {
			if m.items[i].ID == msg.id && !m.items[i].IsRead {
				m.items[i].IsRead = true
				m.unread = max(m.unread-1, 0)
			}
		}
		return m, nil

	case markAllResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("mark all failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("marked %d as read", msg.count)
		return m, m.load()

	case deleteResultMsg:
		switch {
		case msg.err != nil:
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		case !msg.deleted:
			m.statusMsg = "already gone"
		default:
			m.statusMsg = "deleted"
		}
		return m, m.load()

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m inboxModel) updateKeys(msg tea.KeyMsg) (inboxModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.page < m.pages {
			m.page++
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "left":
		if m.page > 1 {
			m.page--
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "enter", "m":
		if n, ok := m.selected(); ok && !n.IsRead {
			svc, id := m.svc, n.ID
			return m, func() tea.Msg {
				_, err := svc.MarkAsRead(context.Background(), id)
				return markReadResultMsg{id: id, err: err}
			}
		}
	case "a":
		svc, userID := m.svc, m.userID
		return m, func() tea.Msg {
			count, err := svc.MarkAllAsRead(context.Background(), userID)
			return markAllResultMsg{count: count, err: err}
		}
	case "d", "x":
		if n, ok := m.selected(); ok {
			svc, id := m.svc, n.ID
			return m, func() tea.Msg {
				deleted, err := svc.Delete(context.Background(), id)
				return deleteResultMsg{id: id, deleted: deleted, err: err}
			}
		}
	case "c":
		if n, ok := m.selected(); ok {
			text := n.Title + "\n" + n.Content
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m inboxModel) selected() (domain.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return domain.Notification{}, false
	}
	return m.items[m.cursor], true
}

func (m inboxModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "read") + "  " + helpEntry("a", "all read") + "  " +
		helpEntry("d", "delete") + "  " + helpEntry("c", "copy") + "  " + helpEntry("r", "reload")
}

func (m inboxModel) View() string {
	var b strings.Builder

	header := " " + sectionHeaderStyle.Render("INBOX")
	if m.unread > 0 {
		header += "  " + unreadDotStyle.Render(fmt.Sprintf("● %d unread", m.unread))
	}
	if m.pages > 1 {
		header += "  " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.page, m.pages))
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != nil:
		msg := m.err.Error()
		if errors.Is(m.err, notify.ErrNotFound) {
			msg = "notification not found"
		}
		b.WriteString(" " + errorStyle.Render("error: "+msg) + "\n")
		return b.String()
	case len(m.items) == 0:
		b.WriteString(" " + dimStyle.Render("no notifications yet") + "\n")
		return b.String()
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, n := range m.items {
		dot := "  "
		if !n.IsRead {
			dot = unreadDotStyle.Render("●") + " "
		}
		title := truncStr(oneLine(n.Title), max(width-20, 10))
		when := metaStyle.Render(formatTime(n.CreatedAt))

		var line string
		if i == m.cursor {
			line = " " + accentStyle.Render(">") + " " + dot + selectedStyle.Render(title) + "  " + when
			line = selectedRowBg.Render(line)
		} else if n.IsRead {
			line = "   " + dot + dimStyle.Render(title) + "  " + when
		} else {
			line = "   " + dot + normalStyle.Render(title) + "  " + when
		}
		b.WriteString(line + "\n")

		if i == m.cursor && n.Content != "" {
			b.WriteString("     " + typeStyle(n.Type).Render(n.Type) + "  " + dimStyle.Render(truncStr(oneLine(n.Content), max(width-8, 10))) + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}
