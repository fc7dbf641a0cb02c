package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chickenlazy/taskadmin/internal/api"
	"github.com/chickenlazy/taskadmin/internal/model"
)

const testWindow = 20 * time.Millisecond

// settle waits long enough for a scheduled debounced check to fire and
// complete against the fake client.
func settle() {
	time.Sleep(10 * testWindow)
}

type checkCall struct {
	Field     string
	Value     string
	ExcludeID string
}

// fakeClient is an in-memory Client. Collisions are declared per value;
// everything else reports unique.
type fakeClient struct {
	mu         sync.Mutex
	checks     []checkCall
	taken      map[string]bool // values that collide
	checkErr   error
	checkGate  chan struct{} // when set, CheckUnique blocks until closed
	user       *model.User
	getErr     error
	submitErr  error
	registered []api.UserPayload
	updated    []api.UserPayload
}

func newFakeClient() *fakeClient {
	return &fakeClient{taken: make(map[string]bool)}
}

func (f *fakeClient) GetUser(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeClient) CheckUnique(ctx context.Context, field, value, excludeID string) (bool, error) {
	f.mu.Lock()
	gate := f.checkGate
	f.checks = append(f.checks, checkCall{Field: field, Value: value, ExcludeID: excludeID})
	err := f.checkErr
	unique := !f.taken[value]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return false, err
	}
	return unique, nil
}

func (f *fakeClient) Register(ctx context.Context, payload api.UserPayload) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.registered = append(f.registered, payload)
	return &model.User{ID: "u-new", Username: payload[FieldUsername]}, nil
}

func (f *fakeClient) UpdateUser(ctx context.Context, id string, payload api.UserPayload) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.updated = append(f.updated, payload)
	return &model.User{ID: id, Username: payload[FieldUsername]}, nil
}

func (f *fakeClient) checkCalls() []checkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]checkCall, len(f.checks))
	copy(out, f.checks)
	return out
}

func newTestEngine(t *testing.T, client Client, mode Mode, entityID string) *Engine {
	t.Helper()
	e := NewEngine(client, mode, entityID, WithDebounceWindow(testWindow))
	t.Cleanup(e.Close)
	return e
}

func fillValid(e *Engine) {
	e.SetField(FieldFullName, "Jane Smith")
	e.SetField(FieldEmail, "jane@example.com")
	e.SetField(FieldUsername, "jane_smith")
	e.SetField(FieldPassword, "secret1")
	e.SetField(FieldConfirmPassword, "secret1")
}

func TestInitializeCreateIsImmediatelyReady(t *testing.T) {
	client := newFakeClient()
	e := newTestEngine(t, client, ModeCreate, "")

	ev := e.Initialize(context.Background())

	loaded, ok := ev.(LoadedEvent)
	require.True(t, ok)
	assert.Empty(t, loaded.Fields)
	assert.True(t, e.Ready())
}

func TestInitializeEditPopulatesFields(t *testing.T) {
	client := newFakeClient()
	client.user = &model.User{
		ID:       "u-1",
		FullName: "Jane Smith",
		Email:    "jane@example.com",
		Username: "jane_smith",
		Role:     model.RoleManager,
		Status:   model.UserStatusActive,
	}
	e := newTestEngine(t, client, ModeEdit, "u-1")

	ev := e.Initialize(context.Background())

	loaded, ok := ev.(LoadedEvent)
	require.True(t, ok)
	assert.Equal(t, "jane_smith", loaded.Fields[FieldUsername])
	assert.Equal(t, model.RoleManager, loaded.Fields[FieldRole])

	// Credentials never come back from the server.
	assert.Empty(t, loaded.Fields[FieldPassword])
	assert.Empty(t, loaded.Fields[FieldConfirmPassword])
}

func TestInitializeEditFetchFailureBlocksForm(t *testing.T) {
	client := newFakeClient()
	client.getErr = errors.New("boom")
	e := newTestEngine(t, client, ModeEdit, "u-1")

	ev := e.Initialize(context.Background())

	_, ok := ev.(LoadFailedEvent)
	require.True(t, ok)
	assert.False(t, e.Ready())
	assert.Error(t, e.LoadError())
}

func TestSubmitEmptyCreateFormCollectsAllErrors(t *testing.T) {
	client := newFakeClient()
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	ev := e.Submit(context.Background())

	failed, ok := ev.(ValidationFailedEvent)
	require.True(t, ok)
	assert.Len(t, failed.Errors, 5)
	assert.Empty(t, client.registered, "invalid form must not reach the server")
}

func TestDebounceCoalescesKeystrokes(t *testing.T) {
	client := newFakeClient()
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	e.SetField(FieldUsername, "a")
	e.SetField(FieldUsername, "ab")
	e.SetField(FieldUsername, "abc")
	settle()

	calls := client.checkCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, FieldUsername, calls[0].Field)
	assert.Equal(t, "abc", calls[0].Value)
	assert.Empty(t, calls[0].ExcludeID)
}

func TestClearingFieldCancelsPendingCheck(t *testing.T) {
	client := newFakeClient()
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	e.SetField(FieldEmail, "jane@example.com")
	e.SetField(FieldEmail, "")
	settle()

	assert.Empty(t, client.checkCalls())
}

func TestCollisionBlocksSubmit(t *testing.T) {
	client := newFakeClient()
	client.taken["jane_smith"] = true
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	fillValid(e)
	settle()

	assert.Equal(t, "This username is already in use", e.FieldError(FieldUsername))

	ev := e.Submit(context.Background())
	failed, ok := ev.(ValidationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "This username is already in use", failed.Errors[FieldUsername])
	assert.Empty(t, client.registered)
}

func TestCollisionClearsWhenValueChanges(t *testing.T) {
	client := newFakeClient()
	client.taken["jane_smith"] = true
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	e.SetField(FieldUsername, "jane_smith")
	settle()
	require.Equal(t, "This username is already in use", e.FieldError(FieldUsername))

	e.SetField(FieldUsername, "jane_smith2")
	assert.Empty(t, e.FieldError(FieldUsername))
	settle()
	assert.Empty(t, e.FieldError(FieldUsername))
}

func TestUniquenessCheckFailsOpen(t *testing.T) {
	client := newFakeClient()
	client.checkErr = errors.New("connection refused")
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	fillValid(e)
	settle()

	// A transport failure records no error and does not block submission.
	assert.Empty(t, e.FieldError(FieldUsername))
	assert.Empty(t, e.FieldError(FieldEmail))

	ev := e.Submit(context.Background())
	_, ok := ev.(SubmittedEvent)
	require.True(t, ok)
	require.Len(t, client.registered, 1)
}

func TestStaleCheckResultIsDiscarded(t *testing.T) {
	client := newFakeClient()
	client.taken["jane_smith"] = true
	gate := make(chan struct{})
	client.checkGate = gate
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	e.SetField(FieldUsername, "jane_smith")
	time.Sleep(3 * testWindow) // let the check start and block on the gate

	// The value moves on while the old check is in flight.
	e.SetField(FieldUsername, "jane_smith2")
	client.mu.Lock()
	client.checkGate = nil
	client.mu.Unlock()
	close(gate)
	settle()

	// The collision for the superseded value must not surface.
	assert.Empty(t, e.FieldError(FieldUsername))
}

func TestSubmitCreatePayloadShape(t *testing.T) {
	client := newFakeClient()
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	fillValid(e)
	e.SetField(FieldPhoneNumber, "0123456789")
	settle()

	ev := e.Submit(context.Background())
	submitted, ok := ev.(SubmittedEvent)
	require.True(t, ok)
	assert.True(t, submitted.Created)

	require.Len(t, client.registered, 1)
	payload := client.registered[0]
	assert.Equal(t, "secret1", payload[FieldPassword])
	assert.Equal(t, "0123456789", payload[FieldPhoneNumber])
	assert.NotContains(t, payload, FieldConfirmPassword)
}

func TestSubmitEditOmitsBlankPassword(t *testing.T) {
	client := newFakeClient()
	client.user = &model.User{
		ID:       "u-1",
		FullName: "Jane Smith",
		Email:    "jane@example.com",
		Username: "jane_smith",
	}
	e := newTestEngine(t, client, ModeEdit, "u-1")
	e.Initialize(context.Background())

	e.SetField(FieldFullName, "Jane A. Smith")
	settle()

	ev := e.Submit(context.Background())
	submitted, ok := ev.(SubmittedEvent)
	require.True(t, ok)
	assert.False(t, submitted.Created)

	require.Len(t, client.updated, 1)
	payload := client.updated[0]
	assert.Equal(t, "Jane A. Smith", payload[FieldFullName])
	assert.NotContains(t, payload, FieldPassword)
	assert.NotContains(t, payload, FieldConfirmPassword)
}

func TestEditChecksExcludeOwnRecord(t *testing.T) {
	client := newFakeClient()
	client.user = &model.User{ID: "u-1", Username: "jane_smith", Email: "jane@example.com", FullName: "Jane"}
	e := newTestEngine(t, client, ModeEdit, "u-1")
	e.Initialize(context.Background())

	e.SetField(FieldUsername, "jane_smith9")
	settle()

	calls := client.checkCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "u-1", calls[0].ExcludeID)
}

func TestSubmitFallbackMessage(t *testing.T) {
	client := newFakeClient()
	client.submitErr = errors.New("read tcp: reset")
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	fillValid(e)
	settle()

	ev := e.Submit(context.Background())
	failed, ok := ev.(SubmitFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "Username or email already exists", failed.Message)
}

func TestSubmitSurfacesServerMessage(t *testing.T) {
	client := newFakeClient()
	client.submitErr = &api.Error{Status: 400, Message: "Email domain is not allowed"}
	e := newTestEngine(t, client, ModeCreate, "")
	e.Initialize(context.Background())

	fillValid(e)
	settle()

	ev := e.Submit(context.Background())
	failed, ok := ev.(SubmitFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "Email domain is not allowed", failed.Message)
}

func TestCloseDropsLateEvents(t *testing.T) {
	client := newFakeClient()
	e := NewEngine(client, ModeCreate, "", WithDebounceWindow(testWindow))
	e.Initialize(context.Background())

	e.SetField(FieldUsername, "jane_smith")
	e.Close()
	settle()

	// The channel is closed and drained without a send-on-closed panic.
	for range e.Events() {
	}
}
