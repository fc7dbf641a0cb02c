package userlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// UserItem wraps a model.User so it can be used in a bubbles/list.
type UserItem struct {
	User model.User
}

// FilterValue returns the string used for fuzzy filtering.
func (i UserItem) FilterValue() string {
	return i.User.FullName + " " + i.User.Username + " " + i.User.Email
}

// Title returns the user's display name for the list.
func (i UserItem) Title() string { return i.User.FullName }

// Description returns a short summary line for the list.
func (i UserItem) Description() string {
	return fmt.Sprintf("%s | %s | %s", i.User.Username, i.User.Email, i.User.Role)
}

// ItemDelegate implements list.ItemDelegate for rendering user rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single user row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ui, ok := item.(UserItem)
	if !ok {
		return
	}

	u := ui.User
	roleBadge := theme.RoleStyle(u.Role).Render(u.Role)
	statusDot := theme.UserStatusStyle(u.Status).Render("●")

	contact := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("@%s  %s", u.Username, u.Email))

	line := fmt.Sprintf("%s %s %s  %s", statusDot, roleBadge, u.FullName, contact)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
