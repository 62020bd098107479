package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newManager(t *testing.T, now func() time.Time) *session.Manager {
	t.Helper()

	m, err := session.NewManager(session.Config{
		Secret: testSecret,
		Issuer: "folio",
		TTL:    time.Hour,
		Now:    now,
	})
	require.NoError(t, err)
	return m
}

func TestNewManager_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := session.NewManager(session.Config{Secret: "short"})
	assert.ErrorContains(t, err, "secret must be at least 32 bytes")
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newManager(t, func() time.Time { return fixedNow })

	token, exp, err := m.Issue("  owner@example.com ")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), exp)

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", s.Identity)
}

func TestIssue_EmptyIdentity(t *testing.T) {
	t.Parallel()

	m := newManager(t, nil)

	_, _, err := m.Issue("   ")
	assert.ErrorContains(t, err, "identity is required")
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	now := fixedNow
	m := newManager(t, func() time.Time { return now })

	token, _, err := m.Issue("owner@example.com")
	require.NoError(t, err)

	now = fixedNow.Add(2 * time.Hour)

	_, err = m.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, folio.ErrUnauthenticated)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return fixedNow }
	m := newManager(t, clock)

	claims := jwt.RegisteredClaims{
		Subject:   "owner@example.com",
		Issuer:    "folio",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}

	sign := func(t *testing.T, method jwt.SigningMethod, c jwt.Claims, key any) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name:  "malformed",
			token: func(*testing.T) string { return "not-a-token" },
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, claims, []byte("ffffffffffffffffffffffffffffffff"))
			},
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, claims, jwt.UnsafeAllowNoneSignatureType)
			},
		},
		{
			name: "other hmac algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, claims, []byte(testSecret))
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := claims
				c.ExpiresAt = nil
				return sign(t, jwt.SigningMethodHS256, c, []byte(testSecret))
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				c := claims
				c.Issuer = "someone-else"
				return sign(t, jwt.SigningMethodHS256, c, []byte(testSecret))
			},
		},
		{
			name: "empty subject",
			token: func(t *testing.T) string {
				c := claims
				c.Subject = ""
				return sign(t, jwt.SigningMethodHS256, c, []byte(testSecret))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := m.Verify(tt.token(t))
			assert.Nil(t, s)
			assert.ErrorIs(t, err, folio.ErrUnauthenticated)
		})
	}
}
