// Package form implements the user create/edit workflow: a mutable field
// map, synchronous rule validation, debounced server-side uniqueness
// checks, and a submit pipeline that is blocked by validation failures.
// The engine is independent of rendering; the UI drives it and drains its
// event channel.
package form

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/debounce"
	"github.com/chickenlazy/taskadmin/internal/model"
)

// Mode distinguishes creating a new user from editing an existing one.
// It is fixed for the lifetime of an engine.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// defaultDebounceWindow is the inactivity window before a uniqueness check
// fires for a changed field.
const defaultDebounceWindow = 500 * time.Millisecond

// checkTimeout bounds a background uniqueness request.
const checkTimeout = 10 * time.Second

// fallbackSubmitMessage is shown when the server rejects a submission
// without a usable message.
const fallbackSubmitMessage = "Username or email already exists"

// uniqueFields are the fields subject to server-side uniqueness checks.
var uniqueFields = []string{FieldUsername, FieldEmail}

// Client is the API surface the engine needs. *api.Client satisfies it.
type Client interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	CheckUnique(ctx context.Context, field, value, excludeID string) (bool, error)
	Register(ctx context.Context, payload api.UserPayload) (*model.User, error)
	UpdateUser(ctx context.Context, id string, payload api.UserPayload) (*model.User, error)
}

// Engine owns the state of one user form. All exported methods are safe
// for concurrent use; every read-modify-write happens under the engine's
// mutex.
type Engine struct {
	client Client
	log    *zap.Logger
	mode   Mode

	// entityID identifies the remote record in Edit mode.
	entityID string

	mu      sync.Mutex
	fields  map[string]string
	errors  map[string]string
	unique  map[string]string // uniqueness collisions recorded by checks
	loaded  bool
	loadErr error
	closed  bool

	sched  *debounce.Scheduler
	window time.Duration

	events chan Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounceWindow overrides the uniqueness-check debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithLogger attaches a logger for the engine's silent failure paths.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates a form engine. entityID must be set iff mode is
// ModeEdit.
func NewEngine(client Client, mode Mode, entityID string, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		log:      zap.NewNop(),
		mode:     mode,
		entityID: entityID,
		fields:   make(map[string]string),
		errors:   make(map[string]string),
		unique:   make(map[string]string),
		sched:    debounce.NewScheduler(),
		window:   defaultDebounceWindow,
		events:   make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Events returns the channel on which async results (uniqueness outcomes,
// load results, submit results) are published.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Mode returns the engine's fixed mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Initialize prepares the form. In Create mode the field map starts empty
// and the form is immediately ready. In Edit mode the entity is fetched
// from the server and its values populate the fields; credential fields
// are never returned by the server and stay empty. A fetch failure blocks
// the form.
func (e *Engine) Initialize(ctx context.Context) Event {
	if e.mode == ModeCreate {
		e.mu.Lock()
		e.loaded = true
		fields := copyMap(e.fields)
		e.mu.Unlock()

		ev := LoadedEvent{Fields: fields}
		e.publish(ev)
		return ev
	}

	user, err := e.client.GetUser(ctx, e.entityID)
	if err != nil {
		loadErr := fmt.Errorf("loading user %s: %w", e.entityID, err)

		e.mu.Lock()
		e.loadErr = loadErr
		e.mu.Unlock()

		ev := LoadFailedEvent{Err: loadErr}
		e.publish(ev)
		return ev
	}

	e.mu.Lock()
	e.fields = fieldsFromUser(user)
	e.loaded = true
	e.loadErr = nil
	fields := copyMap(e.fields)
	e.mu.Unlock()

	ev := LoadedEvent{Fields: fields}
	e.publish(ev)
	return ev
}

// Ready reports whether the form can render editable fields.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// LoadError returns the blocking load failure, if any.
func (e *Engine) LoadError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// SetField records a new value for a field and clears any existing error
// on it. For username and email a non-empty value schedules a debounced
// uniqueness check; a newer value for the same field supersedes any
// pending or in-flight check.
func (e *Engine) SetField(name, value string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	e.fields[name] = value
	delete(e.errors, name)
	delete(e.unique, name)
	e.mu.Unlock()

	if !isUniqueField(name) {
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		e.sched.Cancel(name)
		return
	}

	e.sched.Schedule(name, e.window, func(seq uint64) {
		e.runUniquenessCheck(name, trimmed, seq)
	})
}

// runUniquenessCheck performs one server round-trip for a debounced check
// and merges the result back, unless the field has moved on in the
// meantime.
func (e *Engine) runUniquenessCheck(field, value string, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	isUnique, err := e.client.CheckUnique(ctx, field, value, e.excludeID())

	e.mu.Lock()
	if e.closed || e.stale(field, value, seq) {
		e.mu.Unlock()
		return
	}

	if err != nil {
		// Fail-open: a transport failure must not block the user. The
		// server revalidates on submit anyway.
		e.mu.Unlock()
		e.log.Warn("uniqueness check failed, assuming unique",
			zap.String("field", field),
			zap.Error(err),
		)
		return
	}

	if isUnique {
		if e.errors[field] == e.unique[field] {
			delete(e.errors, field)
		}
		delete(e.unique, field)
	} else {
		msg := collisionMessage(field)
		e.errors[field] = msg
		e.unique[field] = msg
	}
	e.mu.Unlock()

	e.publish(UniquenessEvent{Field: field, Value: value, Unique: isUnique})
}

// stale reports whether a check result no longer applies: the field value
// changed, or a newer check was scheduled. Must be called with e.mu held.
func (e *Engine) stale(field, value string, seq uint64) bool {
	if strings.TrimSpace(e.fields[field]) != value {
		return true
	}
	return e.sched.Seq(field) != seq
}

// Field returns the current value of one field.
func (e *Engine) Field(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields[name]
}

// Fields returns a copy of the current field map.
func (e *Engine) Fields() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyMap(e.fields)
}

// FieldError returns the current error message for one field, or "".
func (e *Engine) FieldError(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors[name]
}

// Errors returns a copy of the current error map.
func (e *Engine) Errors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyMap(e.errors)
}

// Validate runs the synchronous rule pass and then a final uniqueness
// confirmation for email and username, skipping fields that already carry
// a collision from a debounced check. It replaces the error map and
// reports whether the form is valid. Uniqueness transport failures are
// fail-open.
func (e *Engine) Validate(ctx context.Context) bool {
	e.mu.Lock()
	fields := copyMap(e.fields)
	recorded := copyMap(e.unique)
	e.mu.Unlock()

	errs := ValidateFields(fields, e.mode)

	for _, field := range uniqueFields {
		if errs[field] != "" {
			continue
		}
		if msg := recorded[field]; msg != "" {
			errs[field] = msg
			continue
		}

		value := strings.TrimSpace(fields[field])
		if value == "" {
			continue
		}

		isUnique, err := e.client.CheckUnique(ctx, field, value, e.excludeID())
		if err != nil {
			e.log.Warn("final uniqueness check failed, assuming unique",
				zap.String("field", field),
				zap.Error(err),
			)
			continue
		}
		if !isUnique {
			msg := collisionMessage(field)
			errs[field] = msg
			recorded[field] = msg
		}
	}

	e.mu.Lock()
	e.errors = errs
	e.unique = recorded
	e.mu.Unlock()

	return len(errs) == 0
}

// Submit validates the form and, when valid, issues the create or update
// request. An invalid form aborts without any network call. On failure the
// field values are preserved and the server's message is surfaced when
// available.
func (e *Engine) Submit(ctx context.Context) Event {
	if !e.Ready() {
		ev := SubmitFailedEvent{Message: "Form is not ready"}
		e.publish(ev)
		return ev
	}

	if !e.Validate(ctx) {
		ev := ValidationFailedEvent{Errors: e.Errors()}
		e.publish(ev)
		return ev
	}

	payload := e.buildPayload()

	var (
		user *model.User
		err  error
	)
	if e.mode == ModeCreate {
		user, err = e.client.Register(ctx, payload)
	} else {
		user, err = e.client.UpdateUser(ctx, e.entityID, payload)
	}

	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = fallbackSubmitMessage
		}
		e.log.Warn("user submission rejected",
			zap.String("mode", e.modeString()),
			zap.Error(err),
		)
		ev := SubmitFailedEvent{Message: msg}
		e.publish(ev)
		return ev
	}

	ev := SubmittedEvent{User: user, Created: e.mode == ModeCreate}
	e.publish(ev)
	return ev
}

// buildPayload assembles the submission body: confirmPassword is never
// sent, and an empty password is omitted in Edit mode so the server does
// not overwrite credentials with a blank.
func (e *Engine) buildPayload() api.UserPayload {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload := make(api.UserPayload, len(e.fields))
	for name, value := range e.fields {
		payload[name] = value
	}

	delete(payload, FieldConfirmPassword)
	if e.mode == ModeEdit && payload[FieldPassword] == "" {
		delete(payload, FieldPassword)
	}
	return payload
}

// Close cancels pending debounce timers, stops the engine, and closes the
// event channel. In-flight check results targeting the discarded form are
// dropped.
func (e *Engine) Close() {
	e.sched.Stop()

	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	e.mu.Unlock()
}

// excludeID returns the record to exclude from uniqueness checks: the
// edited entity, so a user does not collide with itself.
func (e *Engine) excludeID() string {
	if e.mode == ModeEdit {
		return e.entityID
	}
	return ""
}

func (e *Engine) modeString() string {
	if e.mode == ModeEdit {
		return "edit"
	}
	return "create"
}

// publish sends an event without blocking; if the UI has fallen behind the
// buffered channel, the event is dropped rather than stalling the engine.
// Publishing is serialized with Close so a closed engine never sends.
func (e *Engine) publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
	}
}

func isUniqueField(name string) bool {
	for _, f := range uniqueFields {
		if f == name {
			return true
		}
	}
	return false
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fieldsFromUser maps a fetched user onto form fields. Credential fields
// are intentionally absent; the server never returns them.
func fieldsFromUser(u *model.User) map[string]string {
	return map[string]string{
		FieldFullName:    u.FullName,
		FieldEmail:       u.Email,
		FieldUsername:    u.Username,
		FieldPhoneNumber: u.PhoneNumber,
		FieldRole:        u.Role,
		FieldStatus:      u.Status,
		FieldDepartment:  u.Department,
		FieldPosition:    u.Position,
		FieldAddress:     u.Address,
	}
}
