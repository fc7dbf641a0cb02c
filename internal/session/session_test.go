package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNilSessionIsSafe(t *testing.T) {
	var s *Session
	assert.Empty(t, s.Token())
	assert.Empty(t, s.UserID())
	assert.False(t, s.Expired())
}

func TestUserIDPrefersStoredID(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "u-from-token"})
	s := &Session{ID: "u-stored", AccessToken: tok}
	assert.Equal(t, "u-stored", s.UserID())
}

func TestUserIDFallsBackToSubjectClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "u-from-token"})
	s := &Session{AccessToken: tok}
	assert.Equal(t, "u-from-token", s.UserID())
}

func TestClaimsIntrospection(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub":  "u-1",
		"role": "ADMIN",
	})
	s := &Session{AccessToken: tok}

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims["role"])

	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "u-1", sub)
}

func TestClaimsRejectsMalformedToken(t *testing.T) {
	s := &Session{AccessToken: "not-a-jwt"}
	_, err := s.Claims()
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	past := signedToken(t, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	assert.True(t, (&Session{AccessToken: past}).Expired())

	future := signedToken(t, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.False(t, (&Session{AccessToken: future}).Expired())
}

func TestExpiredWithoutExpClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "u-1"})
	assert.False(t, (&Session{AccessToken: tok}).Expired())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := &Session{ID: "u-1", AccessToken: "tok-123"}

	data, err := s.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-1","accessToken":"tok-123"}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{nope"))
	assert.Error(t, err)
}
