package taskdetail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/keys"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// requestTimeout bounds detail-view server calls.
const requestTimeout = 10 * time.Second

// BackMsg signals the parent to navigate back.
type BackMsg struct{}

// TaskLoadedMsg carries the fetched task, or the load failure.
type TaskLoadedMsg struct {
	Task *model.Task
	Err  error
}

// subTaskToggledMsg carries the server-confirmed subtask state.
type subTaskToggledMsg struct {
	SubTask *model.SubTask
	Err     error
}

// Model is the task detail view: the task body in a viewport plus its
// subtask checklist.
type Model struct {
	client   *api.Client
	keys     *keys.KeyMap
	task     *model.Task
	viewport viewport.Model
	cursor   int
	loading  bool
	loadErr  error
	width    int
	height   int
}

// New creates a new task detail model.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		client:   client,
		keys:     k,
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// Load returns a command that fetches the task with its subtasks.
func (m *Model) Load(taskID string) tea.Cmd {
	m.task = nil
	m.loadErr = nil
	m.loading = true
	m.cursor = 0

	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		task, err := client.GetTask(ctx, taskID)
		return TaskLoadedMsg{Task: task, Err: err}
	}
}

// Update handles messages for the task detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TaskLoadedMsg:
		m.loading = false
		m.task = msg.Task
		m.loadErr = msg.Err
		if m.task != nil {
			m.viewport.SetContent(m.renderBody())
			m.viewport.GotoTop()
		}
		return m, nil

	case subTaskToggledMsg:
		// Confirmation-gated: only a server-acknowledged toggle mutates
		// the local checklist.
		if msg.Err != nil || msg.SubTask == nil || m.task == nil {
			return m, nil
		}
		for i := range m.task.SubTasks {
			if m.task.SubTasks[i].ID == msg.SubTask.ID {
				m.task.SubTasks[i] = *msg.SubTask
				break
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.task != nil && m.cursor < len(m.task.SubTasks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleSubTask):
		return m, m.toggleSelected()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// toggleSelected flips the selected subtask on the server; the local flip
// follows in subTaskToggledMsg once confirmed.
func (m Model) toggleSelected() tea.Cmd {
	if m.task == nil || m.cursor >= len(m.task.SubTasks) {
		return nil
	}

	id := m.task.SubTasks[m.cursor].ID
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		st, err := client.ToggleSubTask(ctx, id)
		return subTaskToggledMsg{SubTask: st, Err: err}
	}
}

// View renders the task detail view.
func (m Model) View() string {
	switch {
	case m.loading:
		return theme.HelpStyle.Render("Loading task...")
	case m.loadErr != nil:
		return theme.ErrorStyle.Render("Failed to load task: "+m.loadErr.Error()) +
			"\n" + theme.HelpStyle.Render("Press esc to go back.")
	case m.task == nil:
		return ""
	}

	header := m.renderHeader()
	subtasks := m.renderSubTasks()

	m.viewport.Height = m.height - lipgloss.Height(header) - lipgloss.Height(subtasks) - 2
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		subtasks,
	)
}

func (m Model) renderHeader() string {
	t := m.task

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(t.Name)

	status := theme.TaskStatusStyle(t.Status).Render(t.Status)

	dates := ""
	if t.DueDate != nil {
		dates = theme.HelpStyle.Render("due " + t.DueDate.Format("Jan 02, 2006"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", status, " ", dates)
}

func (m Model) renderBody() string {
	if m.task.Description == "" {
		return theme.HelpStyle.Render("No description.")
	}
	return m.task.Description
}

func (m Model) renderSubTasks() string {
	t := m.task
	if len(t.SubTasks) == 0 {
		return theme.HelpStyle.Render("No subtasks.")
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Subtasks (%d/%d)", t.CompletedCount(), len(t.SubTasks)))

	lines := []string{header}
	for i, st := range t.SubTasks {
		mark := "○"
		name := st.Name
		if st.Completed {
			mark = "✓"
			name = lipgloss.NewStyle().
				Foreground(theme.ColorGray).
				Strikethrough(true).
				Render(name)
		}

		line := fmt.Sprintf("%s %s", mark, name)
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
}
