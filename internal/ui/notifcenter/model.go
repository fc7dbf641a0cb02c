package notifcenter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/keys"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/notify"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// requestTimeout bounds panel-initiated server calls.
const requestTimeout = 10 * time.Second

// NavigateMsg signals the parent to open the entity a notification points
// at.
type NavigateMsg struct {
	Type        model.NotificationType
	ReferenceID string
}

// CloseMsg signals the parent that the panel was dismissed.
type CloseMsg struct{}

// refreshMsg triggers a re-render after a mutation completed.
type refreshMsg struct{}

// Model is the notification center panel. All state lives in the notify
// engine; the panel only tracks its cursor and renders.
type Model struct {
	center  *notify.Center
	keys    *keys.KeyMap
	cursor  int
	loading bool
	width   int
	height  int
}

// New creates a notification panel over the given center.
func New(center *notify.Center, k *keys.KeyMap, width, height int) Model {
	return Model{
		center: center,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Open marks the panel visible and returns the list fetch command. It
// reuses stale data for rendering until the fresh page arrives.
func (m *Model) Open() tea.Cmd {
	m.center.Open()
	m.cursor = 0
	m.loading = true
	return m.fetchList()
}

// Close hides the panel without clearing loaded data.
func (m *Model) Close() tea.Cmd {
	m.center.Close()
	return func() tea.Msg { return CloseMsg{} }
}

// fetchList returns a command that loads the first notification page.
func (m *Model) fetchList() tea.Cmd {
	center := m.center
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return center.FetchList(ctx)
	}
}

// Update handles messages for the notification panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notify.ListResultMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case refreshMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.center.Visible()

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.cursor >= len(visible) {
			return m, nil
		}
		n := visible[m.cursor]
		cmds := []tea.Cmd{m.markRead(n.ID)}
		if n.ReferenceID != "" {
			refType := n.Type
			refID := n.ReferenceID
			cmds = append(cmds, func() tea.Msg {
				return NavigateMsg{Type: refType, ReferenceID: refID}
			})
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Delete):
		if m.cursor >= len(visible) {
			return m, nil
		}
		return m, m.delete(visible[m.cursor].ID)

	case key.Matches(msg, m.keys.CycleFilter):
		m.center.CycleFilter()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetchList()

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Notifications):
		return m, m.Close()
	}

	return m, nil
}

// markRead marks one notification read after server confirmation. Failures
// stay silent here; the engine logs them.
func (m Model) markRead(id string) tea.Cmd {
	center := m.center
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = center.MarkAsRead(ctx, id)
		return refreshMsg{}
	}
}

func (m Model) markAllRead() tea.Cmd {
	center := m.center
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = center.MarkAllAsRead(ctx)
		return refreshMsg{}
	}
}

func (m Model) delete(id string) tea.Cmd {
	center := m.center
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = center.Delete(ctx, id)
		return refreshMsg{}
	}
}

func (m *Model) clampCursor() {
	if n := len(m.center.Visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the notification panel.
func (m Model) View() string {
	title := fmt.Sprintf("Notifications (%d unread)", m.center.UnreadCount())

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(title)

	body := header + "\n" + m.renderTabs() + "\n\n"

	switch {
	case m.loading:
		body += theme.HelpStyle.Render("Loading...")
	case m.center.FetchError() != nil:
		body += theme.ErrorStyle.Render("Failed to load notifications.") + "\n" +
			theme.HelpStyle.Render("Press r to retry.")
	default:
		body += m.renderItems()
	}

	body += "\n\n" + theme.HelpStyle.Render(
		"enter open · a mark all read · d delete · tab filter · esc close",
	)

	return theme.BorderStyle.
		Width(m.panelWidth()).
		Padding(1, 2).
		Render(body)
}

// renderTabs draws the All/Unread/Read filter tabs.
func (m Model) renderTabs() string {
	active := m.center.Filter()

	tabs := make([]string, 0, 3)
	for _, f := range []notify.Filter{notify.FilterAll, notify.FilterUnread, notify.FilterRead} {
		label := f.String()
		if f == active {
			tabs = append(tabs, theme.SelectedItemStyle.Render(label))
		} else {
			tabs = append(tabs, theme.HelpStyle.Render(label))
		}
	}
	return strings.Join(tabs, "  ")
}

// renderItems draws the filtered list, newest first as the server returned
// it.
func (m Model) renderItems() string {
	visible := m.center.Visible()
	if len(visible) == 0 {
		return theme.HelpStyle.Render("No notifications.")
	}

	lines := make([]string, 0, len(visible))
	for i, n := range visible {
		icon := theme.NotificationStyle(n.Type).Render(theme.NotificationIcon(n.Type))

		title := n.Title
		if !n.IsRead() {
			title = lipgloss.NewStyle().Bold(true).Render(title)
		} else {
			title = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(title)
		}

		when := theme.HelpStyle.Render(relativeTime(n.CreatedDate))
		line := fmt.Sprintf("%s %s  %s", icon, title, when)

		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) panelWidth() int {
	w := m.width - 8
	if w < 44 {
		w = 44
	}
	if w > 90 {
		w = 90
	}
	return w
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
