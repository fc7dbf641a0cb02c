package userform

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/chickenlazy/taskadmin/internal/form"
	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/theme"
)

// submitTimeout bounds the validate+submit round-trips.
const submitTimeout = 30 * time.Second

// DoneMsg signals the parent that the form was submitted successfully and
// the view should navigate back.
type DoneMsg struct {
	User    *model.User
	Created bool
}

// CancelMsg signals the parent that the user abandoned the form.
type CancelMsg struct{}

// initializedMsg carries the engine's load result.
type initializedMsg struct {
	ev form.Event
}

// submitResultMsg carries the engine's submit outcome.
type submitResultMsg struct {
	ev form.Event
}

// engineEventMsg carries async events from the engine's channel, such as
// debounced uniqueness outcomes.
type engineEventMsg struct {
	ev form.Event
}

// fieldOrder fixes the display order of field-scoped error messages.
var fieldOrder = []string{
	form.FieldFullName,
	form.FieldEmail,
	form.FieldUsername,
	form.FieldPhoneNumber,
	form.FieldRole,
	form.FieldStatus,
	form.FieldDepartment,
	form.FieldPosition,
	form.FieldAddress,
	form.FieldPassword,
	form.FieldConfirmPassword,
}

// fieldLabels maps field names to their display labels.
var fieldLabels = map[string]string{
	form.FieldFullName:        "Full name",
	form.FieldEmail:           "Email",
	form.FieldUsername:        "Username",
	form.FieldPhoneNumber:     "Phone number",
	form.FieldRole:            "Role",
	form.FieldStatus:          "Status",
	form.FieldDepartment:      "Department",
	form.FieldPosition:        "Position",
	form.FieldAddress:         "Address",
	form.FieldPassword:        "Password",
	form.FieldConfirmPassword: "Confirm password",
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	fullName        string
	email           string
	username        string
	phoneNumber     string
	role            string
	status          string
	department      string
	position        string
	address         string
	password        string
	confirmPassword string
}

// asMap flattens the bindings into the engine's field-name keyed map.
func (fb *formBindings) asMap() map[string]string {
	return map[string]string{
		form.FieldFullName:        fb.fullName,
		form.FieldEmail:           fb.email,
		form.FieldUsername:        fb.username,
		form.FieldPhoneNumber:     fb.phoneNumber,
		form.FieldRole:            fb.role,
		form.FieldStatus:          fb.status,
		form.FieldDepartment:      fb.department,
		form.FieldPosition:        fb.position,
		form.FieldAddress:         fb.address,
		form.FieldPassword:        fb.password,
		form.FieldConfirmPassword: fb.confirmPassword,
	}
}

// Model is the user create/edit form view. It renders a huh form and keeps
// the form engine's field map in sync with every edit so debounced
// uniqueness checks fire as the user types.
type Model struct {
	engine    *form.Engine
	client    form.Client
	log       *zap.Logger
	debounce  time.Duration
	fb        *formBindings
	last      formBindings
	huhForm   *huh.Form
	submitErr string
	width     int
	height    int
}

// New creates a user form view. The engine is created per Start call; one
// view instance is reused across form sessions.
func New(client form.Client, debounce time.Duration, log *zap.Logger, width, height int) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		client:   client,
		log:      log,
		debounce: debounce,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// StartCreate initializes the form for creating a new user.
func (m *Model) StartCreate() tea.Cmd {
	m.closeEngine()
	*m.fb = formBindings{
		role:   model.RoleUser,
		status: model.UserStatusActive,
	}
	m.submitErr = ""
	m.engine = form.NewEngine(
		m.client, form.ModeCreate, "",
		form.WithDebounceWindow(m.debounce),
		form.WithLogger(m.log),
	)
	return m.initialize()
}

// StartEdit initializes the form for editing an existing user. Field
// values arrive asynchronously from the server.
func (m *Model) StartEdit(userID string) tea.Cmd {
	m.closeEngine()
	*m.fb = formBindings{}
	m.submitErr = ""
	m.engine = form.NewEngine(
		m.client, form.ModeEdit, userID,
		form.WithDebounceWindow(m.debounce),
		form.WithLogger(m.log),
	)
	return m.initialize()
}

// Cancel tears down the engine, cancelling pending debounce timers and
// discarding in-flight check results.
func (m *Model) Cancel() tea.Cmd {
	m.closeEngine()
	return func() tea.Msg { return CancelMsg{} }
}

func (m *Model) closeEngine() {
	if m.engine != nil {
		m.engine.Close()
		m.engine = nil
	}
	m.huhForm = nil
}

// initialize runs the engine's load step and subscribes to its events.
func (m *Model) initialize() tea.Cmd {
	eng := m.engine
	loadCmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return initializedMsg{ev: eng.Initialize(ctx)}
	}
	return tea.Batch(loadCmd, m.waitForEngineEvent())
}

// waitForEngineEvent subscribes to the engine's event channel.
func (m *Model) waitForEngineEvent() tea.Cmd {
	eng := m.engine
	if eng == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-eng.Events()
		if !ok {
			return nil
		}
		return engineEventMsg{ev: ev}
	}
}

// Update handles messages for the user form view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.engine == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case initializedMsg:
		switch ev := msg.ev.(type) {
		case form.LoadedEvent:
			m.applyFields(ev.Fields)
			m.huhForm = m.buildForm()
			m.last = *m.fb
			return m, m.huhForm.Init()
		case form.LoadFailedEvent:
			// Blocking: the form renders the load error instead of fields.
			return m, nil
		}
		return m, nil

	case engineEventMsg:
		// Debounced uniqueness outcomes land here; the error map is read
		// live at render time, so only the resubscription matters.
		return m, m.waitForEngineEvent()

	case submitResultMsg:
		switch ev := msg.ev.(type) {
		case form.SubmittedEvent:
			m.closeEngine()
			created := ev.Created
			user := ev.User
			return m, func() tea.Msg {
				return DoneMsg{User: user, Created: created}
			}
		case form.ValidationFailedEvent:
			m.submitErr = ""
			m.huhForm = m.buildForm()
			return m, m.huhForm.Init()
		case form.SubmitFailedEvent:
			m.submitErr = ev.Message
			m.huhForm = m.buildForm()
			return m, m.huhForm.Init()
		}
		return m, nil
	}

	if m.huhForm == nil {
		// No form to drive yet (loading, or load failed); esc still backs
		// out.
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			return m, m.Cancel()
		}
		return m, nil
	}

	mdl, cmd := m.huhForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.huhForm = f
	}

	m.syncChangedFields()

	if m.huhForm.State == huh.StateCompleted {
		return m, m.submit()
	}
	if m.huhForm.State == huh.StateAborted {
		return m, m.Cancel()
	}

	return m, cmd
}

// syncChangedFields pushes edited values into the engine, which clears
// field errors and schedules uniqueness checks as appropriate.
func (m *Model) syncChangedFields() {
	current := m.fb.asMap()
	previous := m.last.asMap()

	for name, value := range current {
		if previous[name] != value {
			m.engine.SetField(name, value)
		}
	}
	m.last = *m.fb
}

// submit runs the engine's validate+submit pipeline off the UI loop.
func (m *Model) submit() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return submitResultMsg{ev: eng.Submit(ctx)}
	}
}

// applyFields copies engine-loaded values into the huh bindings.
func (m *Model) applyFields(fields map[string]string) {
	m.fb.fullName = fields[form.FieldFullName]
	m.fb.email = fields[form.FieldEmail]
	m.fb.username = fields[form.FieldUsername]
	m.fb.phoneNumber = fields[form.FieldPhoneNumber]
	m.fb.department = fields[form.FieldDepartment]
	m.fb.position = fields[form.FieldPosition]
	m.fb.address = fields[form.FieldAddress]
	if v := fields[form.FieldRole]; v != "" {
		m.fb.role = v
	}
	if v := fields[form.FieldStatus]; v != "" {
		m.fb.status = v
	}
	// Credential fields are never populated from the server.
	m.fb.password = ""
	m.fb.confirmPassword = ""

	// Seed the engine with defaulted select values so the payload carries
	// them even when the user never touches the selectors.
	for name, value := range m.fb.asMap() {
		if value != "" && fields[name] != value {
			m.engine.SetField(name, value)
		}
	}
}

// buildForm constructs the huh form over the current bindings.
func (m *Model) buildForm() *huh.Form {
	passwordTitle := "Password"
	confirmTitle := "Confirm password"
	if m.engine.Mode() == form.ModeEdit {
		passwordTitle = "New password (leave blank to keep)"
		confirmTitle = "Confirm new password"
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Full name").
			Value(&m.fb.fullName),
		huh.NewInput().
			Title("Email").
			Value(&m.fb.email),
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username),
		huh.NewInput().
			Title("Phone number").
			Placeholder("digits only, optional").
			Value(&m.fb.phoneNumber),
		huh.NewSelect[string]().
			Title("Role").
			Options(
				huh.NewOption("Administrator", model.RoleAdmin),
				huh.NewOption("Manager", model.RoleManager),
				huh.NewOption("User", model.RoleUser),
			).
			Value(&m.fb.role),
		huh.NewSelect[string]().
			Title("Status").
			Options(
				huh.NewOption("Active", model.UserStatusActive),
				huh.NewOption("Inactive", model.UserStatusInactive),
			).
			Value(&m.fb.status),
		huh.NewInput().
			Title("Department").
			Value(&m.fb.department),
		huh.NewInput().
			Title("Position").
			Value(&m.fb.position),
		huh.NewInput().
			Title("Address").
			Value(&m.fb.address),
		huh.NewInput().
			Title(passwordTitle).
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password),
		huh.NewInput().
			Title(confirmTitle).
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.confirmPassword),
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

// View renders the user form.
func (m Model) View() string {
	if m.engine == nil {
		return ""
	}

	titleText := "New User"
	if m.engine.Mode() == form.ModeEdit {
		titleText = "Edit User"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	if err := m.engine.LoadError(); err != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			titleStyle.Render(titleText) + "\n" +
				theme.ErrorStyle.Render("Failed to load user: "+err.Error()) + "\n" +
				theme.HelpStyle.Render("Press esc to go back."),
		)
	}

	if m.huhForm == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			titleStyle.Render(titleText) + "\n" +
				theme.HelpStyle.Render("Loading..."),
		)
	}

	content := titleStyle.Render(titleText) + "\n" + m.huhForm.View()

	if banner := m.renderErrors(); banner != "" {
		content += "\n" + banner
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// renderErrors shows the submit failure banner and field-scoped messages.
func (m Model) renderErrors() string {
	out := ""
	if m.submitErr != "" {
		out += theme.ErrorStyle.Render(m.submitErr)
	}

	errs := m.engine.Errors()
	for _, name := range fieldOrder {
		msg, ok := errs[name]
		if !ok {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += theme.FieldErrorStyle.Render(fieldLabels[name] + ": " + msg)
	}
	return out
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}
