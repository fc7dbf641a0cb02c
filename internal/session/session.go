package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Accessor exposes the current session's credentials. Components depend on
// this interface rather than the storage mechanism.
type Accessor interface {
	// Token returns the bearer access token, or "" when no session exists.
	Token() string

	// UserID returns the signed-in user's id, or "" when no session exists.
	UserID() string
}

// Session is the persisted client session: the signed-in user's id and the
// bearer token issued by the backend.
type Session struct {
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
}

// Token implements Accessor. Safe to call on a nil session.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// UserID implements Accessor. Falls back to the token's subject claim when
// the stored id is empty. Safe to call on a nil session.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	if s.ID != "" {
		return s.ID
	}
	if claims, err := s.Claims(); err == nil {
		if sub, err := claims.GetSubject(); err == nil {
			return sub
		}
	}
	return ""
}

// Claims parses the access token without verifying its signature. The server
// is the authority on token validity; the client only introspects claims to
// surface expiry and identity hints.
func (s *Session) Claims() (jwt.MapClaims, error) {
	if s == nil || s.AccessToken == "" {
		return nil, fmt.Errorf("no access token")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the access token carries an exp claim in the past.
// Tokens without a parseable exp claim are treated as not expired; the
// server rejects them anyway if they are invalid.
func (s *Session) Expired() bool {
	claims, err := s.Claims()
	if err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Decode parses a persisted session JSON blob.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &s, nil
}

// Encode serializes the session for persistence.
func (s *Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}
