package token

import (
	"net/http"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Minute, nil)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	ver, err := NewVerifier("secret", nil)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	raw, err := iss.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := ver.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Subject != "user-1" || id.Email != "a@example.com" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	ver, _ := NewVerifier("secret", nil)
	for _, raw := range []string{"", "abc", "a.b", "a.b.c"} {
		if _, err := ver.Verify(raw); err == nil {
			t.Errorf("Verify(%q) succeeded", raw)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	iss, _ := NewIssuer("secret-a", time.Minute, nil)
	ver, _ := NewVerifier("secret-b", nil)
	raw, err := iss.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := ver.Verify(raw); err == nil {
		t.Fatal("token verified across secrets")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, _ := NewIssuer("secret", time.Minute, func() time.Time { return base })
	raw, err := iss.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Well past expiry plus leeway.
	late := base.Add(2 * time.Minute)
	ver, _ := NewVerifier("secret", func() time.Time { return late })
	if _, err := ver.Verify(raw); err == nil {
		t.Fatal("expired token verified")
	}

	// Inside the lifetime.
	early := base.Add(30 * time.Second)
	ver, _ = NewVerifier("secret", func() time.Time { return early })
	if _, err := ver.Verify(raw); err != nil {
		t.Fatalf("live token rejected: %v", err)
	}
}

func TestVerifyRequiresExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ver, _ := NewVerifier("secret", nil)
	if _, err := ver.Verify(raw); err == nil {
		t.Fatal("token without exp verified")
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ver, _ := NewVerifier("secret", nil)
	if _, err := ver.Verify(raw); err == nil {
		t.Fatal("token without sub verified")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer tok-123", "tok-123", true},
		{"Bearer   tok-123  ", "tok-123", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		got, ok := BearerToken(req)
		if got != tc.want || ok != tc.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
