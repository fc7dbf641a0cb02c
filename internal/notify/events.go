package notify

import "github.com/chickenlazy/taskadmin/internal/model"

// CountMsg carries a freshly fetched unread count. Emitted by the
// background poll loop; the UI updates its badge from it.
type CountMsg struct {
	Count int
}

// ListResultMsg carries the outcome of a full list fetch.
type ListResultMsg struct {
	Items []model.Notification
	Err   error
}
