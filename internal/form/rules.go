package form

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names, matching the JSON keys the backend expects.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPhoneNumber     = "phoneNumber"
	FieldRole            = "role"
	FieldStatus          = "status"
	FieldDepartment      = "department"
	FieldPosition        = "position"
	FieldAddress         = "address"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// collisionMessage returns the field-scoped message shown when the server
// reports a value collision.
func collisionMessage(field string) string {
	switch field {
	case FieldUsername:
		return "This username is already in use"
	case FieldEmail:
		return "This email is already in use"
	default:
		return "This value is already in use"
	}
}

// ValidateFields runs the synchronous rule pass over the given field values.
// Every field is evaluated independently and all failures are collected;
// the result maps field name to message and is empty when all rules pass.
// Length limits count characters, not bytes.
func ValidateFields(fields map[string]string, mode Mode) map[string]string {
	errs := make(map[string]string)

	fullName := strings.TrimSpace(fields[FieldFullName])
	if fullName == "" {
		errs[FieldFullName] = "Full name is required"
	} else if utf8.RuneCountInString(fullName) > 100 {
		errs[FieldFullName] = "Full name must not exceed 100 characters"
	}

	email := strings.TrimSpace(fields[FieldEmail])
	if email == "" {
		errs[FieldEmail] = "Email is required"
	} else if !emailRe.MatchString(email) {
		errs[FieldEmail] = "Invalid email format"
	} else if utf8.RuneCountInString(email) > 100 {
		errs[FieldEmail] = "Email must not exceed 100 characters"
	}

	username := strings.TrimSpace(fields[FieldUsername])
	usernameLen := utf8.RuneCountInString(username)
	if username == "" {
		errs[FieldUsername] = "Username is required"
	} else if usernameLen < 3 || usernameLen > 50 {
		errs[FieldUsername] = "Username must be between 3 and 50 characters"
	} else if !usernameRe.MatchString(username) {
		errs[FieldUsername] = "Username can only contain letters, numbers and underscores"
	}

	if phone := strings.TrimSpace(fields[FieldPhoneNumber]); phone != "" {
		if !phoneRe.MatchString(phone) {
			errs[FieldPhoneNumber] = "Phone number must be 10-15 digits"
		}
	}

	if dept := strings.TrimSpace(fields[FieldDepartment]); utf8.RuneCountInString(dept) > 100 {
		errs[FieldDepartment] = "Department must not exceed 100 characters"
	}
	if pos := strings.TrimSpace(fields[FieldPosition]); utf8.RuneCountInString(pos) > 100 {
		errs[FieldPosition] = "Position must not exceed 100 characters"
	}
	if addr := strings.TrimSpace(fields[FieldAddress]); utf8.RuneCountInString(addr) > 255 {
		errs[FieldAddress] = "Address must not exceed 255 characters"
	}

	validatePassword(fields, mode, errs)

	return errs
}

// validatePassword applies the mode-dependent password rules. In Create
// mode both fields are mandatory. In Edit mode an empty password skips all
// password rules; a non-empty one is validated like a new password.
func validatePassword(fields map[string]string, mode Mode, errs map[string]string) {
	password := fields[FieldPassword]
	confirm := fields[FieldConfirmPassword]

	if mode == ModeEdit && password == "" && confirm == "" {
		return
	}

	passwordLen := utf8.RuneCountInString(password)
	if password == "" {
		errs[FieldPassword] = "Password is required"
	} else if passwordLen < 6 || passwordLen > 50 {
		errs[FieldPassword] = "Password must be between 6 and 50 characters"
	}

	if confirm == "" {
		errs[FieldConfirmPassword] = "Confirm password is required"
	} else if password != "" && confirm != password {
		errs[FieldConfirmPassword] = "Passwords do not match"
	}
}
