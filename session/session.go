// Package session issues and verifies the signed bearer tokens that carry a
// caller's identity.
//
// Tokens are HS256 JWTs whose subject is the identity. Verification only
// establishes who the caller is; whether they may mutate the gallery is
// decided by folio.Gate against the role grants.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/folio"
)

// DefaultTTL is the token lifetime used when Config leaves it unset.
const DefaultTTL = 12 * time.Hour

const minSecretLen = 32

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("new session manager: secret must be at least %d bytes", minSecretLen)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue signs a token for identity and returns it with its expiry.
func (m *Manager) Issue(identity string) (string, time.Time, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", time.Time{}, errors.New("issue session: identity is required")
	}

	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue session: %w", err)
	}

	return token, exp.Truncate(time.Second), nil
}

// Verify checks the signature, algorithm, expiry and issuer of token and
// returns the session it carries. Every failure wraps folio.ErrUnauthenticated.
func (m *Manager) Verify(token string) (*folio.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w: %w", folio.ErrUnauthenticated, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("verify session: %w: token has no subject", folio.ErrUnauthenticated)
	}

	return &folio.Session{Identity: claims.Subject}, nil
}
