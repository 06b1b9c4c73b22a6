// Package token issues and verifies the HS256 bearer tokens the emulator
// hands out. Issue and Verify share the signing secret; the leeway absorbs
// small clock skew between emulator and client.
package token

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is the default access-token lifetime.
	DefaultTTL = 30 * time.Minute
	// DefaultLeeway is the clock-skew tolerance for validation.
	DefaultLeeway = 15 * time.Second
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified token asserts about its holder.
type Identity struct {
	Subject string
	Email   string
}

// Issuer mints access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer for the given signing secret.
func NewIssuer(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token issuer requires a signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue signs a token for the subject. The email claim is optional.
func (i *Issuer) Issue(subject, email string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token subject is required")
	}
	now := i.now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verifier validates access tokens.
type Verifier struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier creates a verifier for the given signing secret.
func NewVerifier(secret string, now func() time.Time) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("token verifier requires a signing secret")
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), leeway: DefaultLeeway, now: now}, nil
}

// Verify validates signature, expiry, and subject, and returns the identity.
func (v *Verifier) Verify(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	).ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{Subject: sub}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

// BearerToken extracts a bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if raw == "" {
		return "", false
	}
	return raw, true
}
