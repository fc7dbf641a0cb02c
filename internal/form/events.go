package form

import "github.com/chickenlazy/taskadmin/internal/model"

// Event is a marker interface for results published by the engine. The UI
// drains the engine's event channel and maps events onto its own messages.
type Event interface {
	isEvent()
}

// LoadedEvent reports that the form's initial field values are available.
type LoadedEvent struct {
	Fields map[string]string
}

// LoadFailedEvent reports that the initial entity fetch failed. The form is
// blocked and must not render editable fields.
type LoadFailedEvent struct {
	Err error
}

// UniquenessEvent reports the outcome of a debounced uniqueness check.
// Stale results (the field changed while the check was in flight) are
// discarded by the engine and never published.
type UniquenessEvent struct {
	Field  string
	Value  string
	Unique bool
}

// ValidationFailedEvent reports that submission was aborted because one or
// more field rules failed. No network call was made.
type ValidationFailedEvent struct {
	Errors map[string]string
}

// SubmittedEvent reports a successful create or update. The caller should
// navigate back.
type SubmittedEvent struct {
	User    *model.User
	Created bool
}

// SubmitFailedEvent reports a rejected create/update. Field values are
// preserved so the user can correct and resubmit.
type SubmitFailedEvent struct {
	Message string
}

func (LoadedEvent) isEvent()           {}
func (LoadFailedEvent) isEvent()       {}
func (UniquenessEvent) isEvent()       {}
func (ValidationFailedEvent) isEvent() {}
func (SubmittedEvent) isEvent()        {}
func (SubmitFailedEvent) isEvent()     {}
