package model

import "time"

// NotificationType identifies what kind of event a notification describes.
type NotificationType string

const (
	NotificationTypeProject NotificationType = "PROJECT"
	NotificationTypeTask    NotificationType = "TASK"
	NotificationTypeUser    NotificationType = "USER"
	NotificationTypeSystem  NotificationType = "SYSTEM"
)

// NotificationStatus is the read state of a notification. Status only ever
// moves UNREAD -> READ, and only through an explicit mark-as-read action.
type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "UNREAD"
	NotificationStatusRead   NotificationStatus = "READ"
)

// Notification is an alert surfaced to the user about activity on the server.
type Notification struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// Type is one of the NotificationType* constants.
	Type NotificationType `json:"type"`

	// Title is the short headline text.
	Title string `json:"title"`

	// Content is the full notification body.
	Content string `json:"content"`

	// Status is UNREAD or READ.
	Status NotificationStatus `json:"status"`

	// CreatedDate is when the notification was generated server-side.
	CreatedDate time.Time `json:"createdDate"`

	// ReferenceID optionally points at the related entity (task, user,
	// project) so the client can offer navigation.
	ReferenceID string `json:"referenceId,omitempty"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.Status == NotificationStatusRead
}
