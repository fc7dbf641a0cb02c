package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/session"
)

// fakeAPI is an in-memory notification backend keyed by the same state
// transitions the server performs.
type fakeAPI struct {
	mu           sync.Mutex
	items        []model.Notification
	countErr     error
	listErr      error
	markErr      error
	markAllErr   error
	deleteErr    error
	countCalls   int
	markAllCalls int
}

func (f *fakeAPI) CountUnread(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, item := range f.items {
		if !item.IsRead() {
			n++
		}
	}
	return n, nil
}

func (f *fakeAPI) ListNotifications(ctx context.Context, userID string, pageNo, pageSize int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Notification, len(f.items))
	copy(out, f.items)
	if len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return nil, f.markErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = model.NotificationStatusRead
			n := f.items[i]
			return &n, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) MarkAllRead(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls++
	if f.markAllErr != nil {
		return f.markAllErr
	}
	for i := range f.items {
		f.items[i].Status = model.NotificationStatusRead
	}
	return nil
}

func (f *fakeAPI) DeleteNotification(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func seedNotifications() []model.Notification {
	now := time.Now()
	return []model.Notification{
		{ID: "n-1", Type: model.NotificationTypeTask, Title: "Task assigned", Status: model.NotificationStatusUnread, CreatedDate: now, ReferenceID: "t-1"},
		{ID: "n-2", Type: model.NotificationTypeProject, Title: "Project updated", Status: model.NotificationStatusUnread, CreatedDate: now.Add(-time.Hour)},
		{ID: "n-3", Type: model.NotificationTypeSystem, Title: "Maintenance window", Status: model.NotificationStatusRead, CreatedDate: now.Add(-2 * time.Hour)},
	}
}

func newTestCenter(t *testing.T, api *fakeAPI) *Center {
	t.Helper()
	c := New(api, session.Static{ID: "u-1", AccessToken: "tok"}, nil)
	t.Cleanup(c.Stop)
	return c
}

func TestFetchListReplacesItemsAndRefreshesCount(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)

	msg := c.FetchList(context.Background())

	require.NoError(t, msg.Err)
	assert.Len(t, msg.Items, 3)
	assert.Len(t, c.Items(), 3)
	assert.Equal(t, 2, c.UnreadCount())
	assert.NoError(t, c.FetchError())
}

func TestFetchListFailureKeepsExistingItems(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	api.mu.Lock()
	api.listErr = errors.New("gateway timeout")
	api.mu.Unlock()

	msg := c.FetchList(context.Background())

	require.Error(t, msg.Err)
	assert.Len(t, c.Items(), 3, "stale list survives a failed refresh")
	assert.Error(t, c.FetchError())
	assert.Equal(t, 2, c.UnreadCount(), "count untouched by list failure")
}

func TestMarkAsReadFlipsAfterAck(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	require.NoError(t, c.MarkAsRead(context.Background(), "n-1"))

	items := c.Items()
	assert.True(t, items[0].IsRead())
	assert.Equal(t, 1, c.UnreadCount())
}

func TestMarkAsReadAlreadyReadSkipsServer(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	api.mu.Lock()
	before := api.countCalls
	api.mu.Unlock()

	require.NoError(t, c.MarkAsRead(context.Background(), "n-3"))

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, before, api.countCalls, "already-read mark must not hit the network")
}

func TestMarkAsReadFailureLeavesStateUnchanged(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	api.mu.Lock()
	api.markErr = errors.New("boom")
	api.mu.Unlock()

	err := c.MarkAsRead(context.Background(), "n-1")

	require.Error(t, err)
	assert.False(t, c.Items()[0].IsRead())
	assert.Equal(t, 2, c.UnreadCount())
}

func TestMarkAllAsReadZeroesCountWithoutRefetch(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	api.mu.Lock()
	countBefore := api.countCalls
	api.mu.Unlock()

	require.NoError(t, c.MarkAllAsRead(context.Background()))

	for _, n := range c.Items() {
		assert.True(t, n.IsRead())
	}
	assert.Equal(t, 0, c.UnreadCount())

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.markAllCalls)
	assert.Equal(t, countBefore, api.countCalls, "bulk mark sets the count directly")
}

func TestMarkAllAsReadFailureLeavesStateUnchanged(t *testing.T) {
	api := &fakeAPI{items: seedNotifications(), markAllErr: errors.New("boom")}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	require.Error(t, c.MarkAllAsRead(context.Background()))
	assert.Equal(t, 2, c.UnreadCount())
	assert.False(t, c.Items()[0].IsRead())
}

func TestDeleteRemovesAfterAck(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	require.NoError(t, c.Delete(context.Background(), "n-1"))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "n-2", items[0].ID)
	assert.Equal(t, 1, c.UnreadCount())
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	require.NoError(t, c.Delete(context.Background(), "n-404"))
	assert.Len(t, c.Items(), 3)
}

func TestVisibleAppliesFilterInServerOrder(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	assert.Len(t, c.Visible(), 3)

	c.SetFilter(FilterUnread)
	unread := c.Visible()
	require.Len(t, unread, 2)
	assert.Equal(t, "n-1", unread[0].ID)
	assert.Equal(t, "n-2", unread[1].ID)

	c.SetFilter(FilterRead)
	read := c.Visible()
	require.Len(t, read, 1)
	assert.Equal(t, "n-3", read[0].ID)
}

func TestCycleFilterWrapsAround(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCenter(t, api)

	assert.Equal(t, FilterUnread, c.CycleFilter())
	assert.Equal(t, FilterRead, c.CycleFilter())
	assert.Equal(t, FilterAll, c.CycleFilter())
}

func TestOpenCloseKeepsLoadedData(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())

	assert.True(t, c.Open())
	assert.False(t, c.Open(), "reopening an open panel does not refetch")
	assert.True(t, c.IsOpen())

	c.Close()
	assert.False(t, c.IsOpen())
	assert.Len(t, c.Items(), 3)
}

func TestPollDeliversCountMsg(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := New(api, session.Static{ID: "u-1", AccessToken: "tok"}, nil,
		WithPollInterval(10*time.Millisecond))
	defer c.Stop()

	cmd := c.Start()
	require.NotNil(t, cmd)

	msg := cmd()
	count, ok := msg.(CountMsg)
	require.True(t, ok)
	assert.Equal(t, 2, count.Count)
}

func TestStartWithoutSessionIsInert(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, session.Static{}, nil)

	assert.Nil(t, c.Start())
}

func TestRefreshCountNudgesPollLoop(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := New(api, session.Static{ID: "u-1", AccessToken: "tok"}, nil,
		WithPollInterval(time.Hour))
	defer c.Stop()

	cmd := c.Start()
	require.NotNil(t, cmd)

	// Drain the initial fetch so the next message reflects the nudge.
	msg := cmd()
	count, ok := msg.(CountMsg)
	require.True(t, ok)
	require.Equal(t, 2, count.Count)

	api.mu.Lock()
	for i := range api.items {
		api.items[i].Status = model.NotificationStatusRead
	}
	api.mu.Unlock()

	c.RefreshCount()

	msg = c.WaitForNextMsg()()
	count, ok = msg.(CountMsg)
	require.True(t, ok)
	assert.Equal(t, 0, count.Count, "nudge fetches without waiting for the tick")
}

func TestStopIsOneShot(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := New(api, session.Static{ID: "u-1", AccessToken: "tok"}, nil,
		WithPollInterval(time.Hour))

	require.NotNil(t, c.Start())
	c.Stop()
	c.Stop() // second stop must not panic on the closed channel

	c.Start()
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.False(t, c.running, "a stopped center cannot be restarted")
}

func TestPollFailureKeepsLastCount(t *testing.T) {
	api := &fakeAPI{items: seedNotifications()}
	c := newTestCenter(t, api)
	c.FetchList(context.Background())
	require.Equal(t, 2, c.UnreadCount())

	api.mu.Lock()
	api.countErr = errors.New("boom")
	api.mu.Unlock()

	c.pollOnce()
	assert.Equal(t, 2, c.UnreadCount(), "failed poll leaves the last count standing")
}
