package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/keys"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// section is one labeled group of bindings in the help overlay.
type section struct {
	title    string
	bindings []key.Binding
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   keys,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// sections groups the keymap by the screens the bindings apply to.
func (m Model) sections() []section {
	k := m.keys
	return []section{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}},
		{"Users & Tasks", []key.Binding{k.NewUser, k.EditUser, k.ToggleSubTask, k.Refresh}},
		{"Notifications", []key.Binding{k.Notifications, k.MarkAllRead, k.Delete, k.CycleFilter}},
	}
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	keyStyle := lipgloss.NewStyle().
		Foreground(theme.ColorYellow)

	descStyle := lipgloss.NewStyle().
		Foreground(theme.ColorGray)

	sections := m.sections()

	keyWidth := 0
	for _, s := range sections {
		for _, b := range s.bindings {
			if w := lipgloss.Width(b.Help().Key); w > keyWidth {
				keyWidth = w
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n")
	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render(s.title))
		sb.WriteString("\n")
		for _, b := range s.bindings {
			h := b.Help()
			pad := strings.Repeat(" ", keyWidth-lipgloss.Width(h.Key))
			sb.WriteString("  ")
			sb.WriteString(keyStyle.Render(h.Key))
			sb.WriteString(pad)
			sb.WriteString("  ")
			sb.WriteString(descStyle.Render(h.Desc))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(descStyle.Render("Press ? or esc to close"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(sb.String())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
