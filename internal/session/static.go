package session

// Static is a fixed in-memory Accessor. It backs tests and ad-hoc sessions
// supplied on the command line.
type Static struct {
	AccessToken string
	ID          string
}

// Token implements Accessor.
func (s Static) Token() string { return s.AccessToken }

// UserID implements Accessor.
func (s Static) UserID() string { return s.ID }
