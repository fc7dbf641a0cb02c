package userlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/keys"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// listPageSize is how many users are fetched for the admin list.
const listPageSize = 50

// UsersLoadedMsg is sent when the user page has been fetched.
type UsersLoadedMsg struct {
	Users []model.User
	Err   error
}

// EditUserMsg signals the parent to open the edit form for a user.
type EditUserMsg struct {
	UserID string
}

// NewUserMsg signals the parent to open the create form.
type NewUserMsg struct{}

// Model is the admin user list view.
type Model struct {
	list    list.Model
	client  *api.Client
	keys    *keys.KeyMap
	loadErr error
	width   int
	height  int
}

// New creates a new user list model.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Users"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		client: client,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the initial set of users.
func (m Model) Init() tea.Cmd {
	return m.LoadUsers()
}

// Update handles messages for the user list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case UsersLoadedMsg:
		m.loadErr = msg.Err
		items := make([]list.Item, len(msg.Users))
		for i, u := range msg.Users {
			items[i] = UserItem{User: u}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.EditUser):
			item, ok := m.list.SelectedItem().(UserItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return EditUserMsg{UserID: item.User.ID}
			}

		case key.Matches(msg, m.keys.NewUser):
			return m, func() tea.Msg { return NewUserMsg{} }

		case key.Matches(msg, m.keys.Refresh):
			return m, m.LoadUsers()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the user list view.
func (m Model) View() string {
	if m.loadErr != nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(theme.ErrorStyle.Render("Failed to load users.") +
				"\n" + theme.HelpStyle.Render("Press r to retry."))
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No users found.\n\nPress c to create one.")
	}

	return m.list.View()
}

// LoadUsers returns a tea.Cmd that fetches the first page of users.
func (m Model) LoadUsers() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		users, err := client.ListUsers(context.Background(), 1, listPageSize)
		return UsersLoadedMsg{Users: users, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
