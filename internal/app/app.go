package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/keys"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/notify"
	"github.com/chickenlazy/taskadmin/internal/session"
	"github.com/chickenlazy/taskadmin/internal/theme"
	"github.com/chickenlazy/taskadmin/internal/ui"
	helpview "github.com/chickenlazy/taskadmin/internal/ui/help"
	"github.com/chickenlazy/taskadmin/internal/ui/notifcenter"
	"github.com/chickenlazy/taskadmin/internal/ui/taskdetail"
	"github.com/chickenlazy/taskadmin/internal/ui/userform"
	"github.com/chickenlazy/taskadmin/internal/ui/userlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewUsers ViewState = iota
	ViewUserCreate
	ViewUserEdit
	ViewTaskDetail
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the shared notification engine.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	client       *api.Client
	keys         *keys.KeyMap
	log          *zap.Logger

	userList   userlist.Model
	userForm   userform.Model
	taskDetail taskdetail.Model
	helpView   helpview.Model
	notifPanel notifcenter.Model

	center *notify.Center

	ready         bool
	unreadCount   int
	statusMessage string
}

// New creates the root application model.
func New(client *api.Client, sess session.Accessor, cfg *model.AppConfig, log *zap.Logger) Model {
	k := keys.DefaultKeyMap()

	center := notify.New(client, sess, log,
		notify.WithPollInterval(time.Duration(cfg.Notifications.PollIntervalSec)*time.Second),
		notify.WithPageSize(cfg.Notifications.PageSize),
	)

	debounce := time.Duration(cfg.Form.DebounceMs) * time.Millisecond

	return Model{
		currentView: ViewUsers,
		client:      client,
		keys:        k,
		log:         log,
		userList:    userlist.New(client, k, 80, 24),
		userForm:    userform.New(client, debounce, log, 80, 24),
		taskDetail:  taskdetail.New(client, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		notifPanel:  notifcenter.New(center, k, 80, 24),
		center:      center,
	}
}

// Init loads the user list and starts the notification poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.userList.Init(),
		m.center.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.userList.SetSize(contentWidth, contentHeight)
		m.userForm.SetSize(contentWidth, contentHeight)
		m.taskDetail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.notifPanel.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can size themselves.
		return m.updateActiveView(msg)

	case notify.CountMsg:
		m.unreadCount = msg.Count
		return m, m.center.WaitForNextMsg()

	case userlist.NewUserMsg:
		m.previousView = m.currentView
		m.currentView = ViewUserCreate
		m.statusMessage = ""
		return m, m.userForm.StartCreate()

	case userlist.EditUserMsg:
		m.previousView = m.currentView
		m.currentView = ViewUserEdit
		m.statusMessage = ""
		return m, m.userForm.StartEdit(msg.UserID)

	case userform.DoneMsg:
		m.currentView = ViewUsers
		if msg.Created {
			m.statusMessage = fmt.Sprintf("Created user %s", msg.User.Username)
		} else {
			m.statusMessage = fmt.Sprintf("Updated user %s", msg.User.Username)
		}
		// A saved user may have generated notifications server-side.
		m.center.RefreshCount()
		return m, m.userList.LoadUsers()

	case userform.CancelMsg:
		m.currentView = ViewUsers
		return m, nil

	case taskdetail.BackMsg:
		m.currentView = ViewUsers
		return m, nil

	case notifcenter.CloseMsg:
		return m, nil

	case notifcenter.NavigateMsg:
		return m.navigateToReference(msg)

	case tea.KeyMsg:
		return m.handleGlobalKeys(msg)
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys intercepts keys that work regardless of the active
// view, then delegates the rest.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""

	// ctrl+c always quits.
	if msg.String() == "ctrl+c" {
		m.center.Stop()
		return m, tea.Quit
	}

	// The notification panel swallows everything else while open.
	if m.center.IsOpen() {
		return m.updateActiveView(msg)
	}

	// Forms own their keystrokes; plain characters must reach the
	// focused input.
	if m.currentView == ViewUserCreate || m.currentView == ViewUserEdit {
		return m.updateActiveView(msg)
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewUsers {
			m.center.Stop()
			return m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case "n":
		return m, m.notifPanel.Open()
	}

	return m.updateActiveView(msg)
}

// navigateToReference opens the entity a notification points at.
func (m Model) navigateToReference(msg notifcenter.NavigateMsg) (tea.Model, tea.Cmd) {
	if msg.ReferenceID == "" {
		return m, nil
	}

	m.center.Close()

	switch msg.Type {
	case model.NotificationTypeTask, model.NotificationTypeProject:
		m.previousView = m.currentView
		m.currentView = ViewTaskDetail
		return m, m.taskDetail.Load(msg.ReferenceID)

	case model.NotificationTypeUser:
		m.previousView = m.currentView
		m.currentView = ViewUserEdit
		return m, m.userForm.StartEdit(msg.ReferenceID)
	}

	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.center.IsOpen() {
		m.notifPanel, cmd = m.notifPanel.Update(msg)
		return m, cmd
	}

	switch m.currentView {
	case ViewUsers:
		m.userList, cmd = m.userList.Update(msg)
	case ViewUserCreate, ViewUserEdit:
		m.userForm, cmd = m.userForm.Update(msg)
	case ViewTaskDetail:
		m.taskDetail, cmd = m.taskDetail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	badge := ""
	if m.unreadCount > 0 {
		badge = theme.BadgeStyle.Render(fmt.Sprintf("%d unread", m.unreadCount))
	}
	header := m.layout.RenderHeader("Task Admin", badge)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	if m.center.IsOpen() {
		return m.notifPanel.View()
	}

	switch m.currentView {
	case ViewUsers:
		return m.userList.View()
	case ViewUserCreate, ViewUserEdit:
		return m.userForm.View()
	case ViewTaskDetail:
		return m.taskDetail.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	if m.center.IsOpen() {
		return "enter open | a mark all read | d delete | tab filter | esc close"
	}

	switch m.currentView {
	case ViewUserCreate:
		return "enter submit | esc cancel"
	case ViewUserEdit:
		return "enter submit | esc cancel"
	case ViewTaskDetail:
		return "space toggle subtask | j/k move | esc back"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help | c new user | e edit | n notifications | r refresh"
	}
}
