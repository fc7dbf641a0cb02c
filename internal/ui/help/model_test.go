package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chickenlazy/taskadmin/internal/keys"
)

func TestViewRendersGroupedShortcuts(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)

	view := m.View()

	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "Navigation")
	assert.Contains(t, view, "Users & Tasks")
	assert.Contains(t, view, "Notifications")
	assert.Contains(t, view, "create user")
	assert.Contains(t, view, "mark all read")
	assert.Contains(t, view, "cycle filter")
	assert.Contains(t, view, "toggle subtask")
}

func TestSectionsCoverNotificationBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)

	sections := m.sections()
	assert.Len(t, sections, 3)
	assert.Equal(t, "Notifications", sections[2].title)
	assert.Len(t, sections[2].bindings, 4)
}
