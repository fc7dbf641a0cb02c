package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chickenlazy/taskadmin/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for blocking and panel-scoped error banners.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// FieldErrorStyle renders field-scoped validation messages under inputs.
var FieldErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// BadgeStyle renders the unread notification counter in the header.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// notificationColors maps each notification type to its accent color.
var notificationColors = map[model.NotificationType]lipgloss.AdaptiveColor{
	model.NotificationTypeProject: ColorMagenta,
	model.NotificationTypeTask:    ColorBlue,
	model.NotificationTypeUser:    ColorGreen,
	model.NotificationTypeSystem:  ColorOrange,
}

// notificationIcons maps each notification type to its list glyph.
var notificationIcons = map[model.NotificationType]string{
	model.NotificationTypeProject: "◈",
	model.NotificationTypeTask:    "☰",
	model.NotificationTypeUser:    "☺",
	model.NotificationTypeSystem:  "⚙",
}

// NotificationStyle returns the accent style for a notification type.
func NotificationStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if color, ok := notificationColors[t]; ok {
		return base.Foreground(color)
	}
	return base.Foreground(ColorGray)
}

// NotificationIcon returns the list glyph for a notification type.
func NotificationIcon(t model.NotificationType) string {
	if icon, ok := notificationIcons[t]; ok {
		return icon
	}
	return "•"
}

// TaskStatusStyle returns a color-coded style for a task status.
func TaskStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.TaskStatusNotStarted:
		return base.Foreground(ColorGray)
	case model.TaskStatusInProgress:
		return base.Foreground(ColorYellow)
	case model.TaskStatusOnHold:
		return base.Foreground(ColorOrange)
	case model.TaskStatusCompleted:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// UserStatusStyle returns a color-coded style for a user account status.
func UserStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.UserStatusActive:
		return base.Foreground(ColorGreen)
	case model.UserStatusInactive:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// RoleStyle returns a color-coded style for a user role.
func RoleStyle(role string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch role {
	case model.RoleAdmin:
		return base.Foreground(ColorRed)
	case model.RoleManager:
		return base.Foreground(ColorOrange)
	case model.RoleUser:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
