// Package notify maintains the current user's notifications: a background
// unread-count poll, on-demand list fetches, and confirmation-gated
// mutations. Local state only changes after the server acknowledges a
// mutation, so the client never shows a state the server rejected.
package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chickenlazy/taskadmin/internal/model"
	"github.com/chickenlazy/taskadmin/internal/session"
)

// Filter is the pure view filter over the loaded notification list.
type Filter int

const (
	FilterAll Filter = iota
	FilterUnread
	FilterRead
)

// String returns the tab label for a filter.
func (f Filter) String() string {
	switch f {
	case FilterUnread:
		return "Unread"
	case FilterRead:
		return "Read"
	default:
		return "All"
	}
}

// defaults applied when the config supplies zero values.
const (
	defaultPollInterval = 60 * time.Second
	defaultPageSize     = 10
	requestTimeout      = 10 * time.Second
)

// Client is the API surface the center needs. *api.Client satisfies it.
type Client interface {
	CountUnread(ctx context.Context, userID string) (int, error)
	ListNotifications(ctx context.Context, userID string, pageNo, pageSize int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id string) error
}

// Center owns notification state for one user. Items keep server order
// (newest first); the unread count is fetched independently and the two
// may transiently disagree until the next synchronization point. All
// exported methods are safe for concurrent use.
type Center struct {
	client  Client
	session session.Accessor
	log     *zap.Logger

	mu       sync.Mutex
	items    []model.Notification
	unread   int
	filter   Filter
	open     bool
	fetchErr error
	running  bool
	stopped  bool

	pollInterval time.Duration
	pageSize     int

	resultCh  chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
}

// Option configures a Center.
type Option func(*Center)

// WithPollInterval overrides the unread-count poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPageSize overrides the list fetch page size.
func WithPageSize(n int) Option {
	return func(c *Center) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a notification center for the session's user.
func New(client Client, sess session.Accessor, log *zap.Logger, opts ...Option) *Center {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Center{
		client:       client,
		session:      sess,
		log:          log,
		pollInterval: defaultPollInterval,
		pageSize:     defaultPageSize,
		resultCh:     make(chan tea.Msg, 16),
		triggerCh:    make(chan struct{}, 16),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the unread-count poll loop and returns a command that
// subscribes to the center's messages. The loop runs for the component's
// lifetime regardless of whether the panel is open. Without a session
// nothing is started.
func (c *Center) Start() tea.Cmd {
	if c.session.UserID() == "" {
		return nil
	}

	c.mu.Lock()
	if c.running || c.stopped {
		c.mu.Unlock()
		return c.waitForMsg()
	}
	c.running = true
	c.mu.Unlock()

	go c.pollLoop()

	return c.waitForMsg()
}

// Stop halts the poll loop permanently. It is idempotent, and a Center
// cannot be restarted after stopping.
func (c *Center) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || !c.running {
		return
	}
	c.stopped = true
	c.running = false
	close(c.stopCh)
}

// WaitForNextMsg returns a command that waits for the next center message.
// Call it after processing one to keep the subscription alive.
func (c *Center) WaitForNextMsg() tea.Cmd {
	return c.waitForMsg()
}

// RefreshCount nudges the poll loop to fetch the unread count now.
func (c *Center) RefreshCount() {
	select {
	case c.triggerCh <- struct{}{}:
	default:
	}
}

// pollLoop periodically fetches the unread count. Failures are logged and
// skipped; polling continues on the next tick.
func (c *Center) pollLoop() {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// Initial fetch so the badge appears without waiting a full interval.
	c.pollOnce()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.pollOnce()
		case <-c.triggerCh:
			c.pollOnce()
		}
	}
}

// pollOnce fetches the unread count and overwrites local state with the
// fresh authoritative value. Concurrent refreshes are last-writer-wins.
func (c *Center) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	count, err := c.client.CountUnread(ctx, c.session.UserID())
	if err != nil {
		c.log.Warn("unread count poll failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()

	c.send(CountMsg{Count: count})
}

// Open shows the panel and reports whether a list fetch should follow.
func (c *Center) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return false
	}
	c.open = true
	return true
}

// Close hides the panel. Loaded data is kept; the next open refetches.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

// IsOpen reports whether the panel is visible.
func (c *Center) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// FetchList fetches the first page of notifications, replacing the local
// list wholesale, then refreshes the unread count. On failure the list is
// left untouched and a retryable error is recorded for the open panel;
// the unread count is unaffected.
func (c *Center) FetchList(ctx context.Context) ListResultMsg {
	items, err := c.client.ListNotifications(ctx, c.session.UserID(), 1, c.pageSize)
	if err != nil {
		c.mu.Lock()
		c.fetchErr = err
		c.mu.Unlock()

		c.log.Warn("notification list fetch failed", zap.Error(err))
		return ListResultMsg{Err: err}
	}

	c.mu.Lock()
	c.items = items
	c.fetchErr = nil
	c.mu.Unlock()

	c.refreshCountNow(ctx)
	return ListResultMsg{Items: items}
}

// FetchError returns the retryable list fetch error, if any.
func (c *Center) FetchError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchErr
}

// MarkAsRead marks one notification read. The local flip happens only
// after the server acknowledges; a failure leaves state unchanged and is
// logged, never surfaced. Calling it on an already-read notification is a
// no-op.
func (c *Center) MarkAsRead(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 || c.items[idx].IsRead() {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if _, err := c.client.MarkRead(ctx, id); err != nil {
		c.log.Warn("mark notification read failed",
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.items[idx].Status = model.NotificationStatusRead
	}
	c.mu.Unlock()

	c.refreshCountNow(ctx)
	return nil
}

// MarkAllAsRead marks every notification read via the bulk endpoint. On
// success all local items flip to read and the unread count is set to
// zero directly, without a refetch. On failure state is unchanged.
func (c *Center) MarkAllAsRead(ctx context.Context) error {
	if err := c.client.MarkAllRead(ctx, c.session.UserID()); err != nil {
		c.log.Warn("mark all notifications read failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		c.items[i].Status = model.NotificationStatusRead
	}
	c.unread = 0
	c.mu.Unlock()

	c.send(CountMsg{Count: 0})
	return nil
}

// Delete removes one notification after server acknowledgement and then
// refreshes the unread count. An id not present locally is a defensive
// no-op.
func (c *Center) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.client.DeleteNotification(ctx, id); err != nil {
		c.log.Warn("delete notification failed",
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.mu.Unlock()

	c.refreshCountNow(ctx)
	return nil
}

// SetFilter switches the active view filter. Pure local derivation.
func (c *Center) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// CycleFilter advances All -> Unread -> Read -> All and returns the new
// filter.
func (c *Center) CycleFilter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = (c.filter + 1) % 3
	return c.filter
}

// Filter returns the active view filter.
func (c *Center) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Items returns a copy of the full loaded list in server order.
func (c *Center) Items() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Visible returns the loaded list narrowed by the active filter, keeping
// server order.
func (c *Center) Visible() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, 0, len(c.items))
	for _, n := range c.items {
		switch c.filter {
		case FilterUnread:
			if n.IsRead() {
				continue
			}
		case FilterRead:
			if !n.IsRead() {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// UnreadCount returns the last known authoritative unread count.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// refreshCountNow fetches the unread count synchronously after a mutation
// and overwrites local state. Failures are logged and the stale count
// stands until the next poll tick; last-writer-wins either way.
func (c *Center) refreshCountNow(ctx context.Context) {
	count, err := c.client.CountUnread(ctx, c.session.UserID())
	if err != nil {
		c.log.Warn("unread count refresh failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()

	c.send(CountMsg{Count: count})
}

// indexOf returns the local index of id, or -1. Must be called with c.mu
// held.
func (c *Center) indexOf(id string) int {
	for i, n := range c.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// send publishes a message without blocking; messages are dropped rather
// than stalling the poll loop when the UI falls behind.
func (c *Center) send(msg tea.Msg) {
	select {
	case c.resultCh <- msg:
	default:
	}
}

// waitForMsg returns a command that waits for the next message on the
// result channel.
func (c *Center) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-c.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}
