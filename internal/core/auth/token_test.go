package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

var testEpoch = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// newTokenPair builds an issuer frozen at testEpoch and a verifier whose
// clock is frozen at verifyAt, both sharing the same secret.
func newTokenPair(t *testing.T, secret string, ttl time.Duration, verifyAt time.Time) (*Issuer, *Verifier) {
	t.Helper()
	cfg := Config{Secret: secret, TTL: ttl}

	issueCodec, err := NewCodec(cfg, fixedClock(testEpoch))
	if err != nil {
		t.Fatalf("issue codec: %v", err)
	}
	verifyCodec, err := NewCodec(cfg, fixedClock(verifyAt))
	if err != nil {
		t.Fatalf("verify codec: %v", err)
	}
	return NewIssuer(issueCodec, cfg, fixedClock(testEpoch)), NewVerifier(verifyCodec)
}

func TestTokenRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		principal domain.Principal
	}{
		{"manager", domain.Principal{ID: 1, Role: domain.RoleManager}},
		{"customer", domain.Principal{ID: 42, Role: domain.RoleCustomer}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issuer, verifier := newTokenPair(t, "secret", time.Hour, testEpoch.Add(time.Minute))

			token, issued, err := issuer.Issue(tc.principal, "Ana")
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if claims.PrincipalID != tc.principal.ID {
				t.Fatalf("principal id: got %d, want %d", claims.PrincipalID, tc.principal.ID)
			}
			if claims.Role != tc.principal.Role {
				t.Fatalf("role: got %s, want %s", claims.Role, tc.principal.Role)
			}
			if claims.Name != "Ana" {
				t.Fatalf("name: got %q", claims.Name)
			}
			if !claims.ExpiresAt.Time.Equal(issued.ExpiresAt.Time) {
				t.Fatalf("expiry drifted across round trip")
			}
			if !claims.IssuedAt.Time.Equal(testEpoch) {
				t.Fatalf("iat: got %v, want %v", claims.IssuedAt.Time, testEpoch)
			}
		})
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	const ttl = time.Hour
	principal := domain.Principal{ID: 7, Role: domain.RoleManager}

	// One second before expiry the token still verifies.
	issuer, verifier := newTokenPair(t, "secret", ttl, testEpoch.Add(ttl-time.Second))
	token, _, err := issuer.Issue(principal, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != nil {
		t.Fatalf("token should be valid just before expiry: %v", err)
	}

	// One second after expiry it fails with the expired error specifically.
	_, lateVerifier := newTokenPair(t, "secret", ttl, testEpoch.Add(ttl+time.Second))
	if _, err := lateVerifier.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenTamperDetection(t *testing.T) {
	issuer, verifier := newTokenPair(t, "secret", time.Hour, testEpoch.Add(time.Minute))
	token, _, err := issuer.Issue(domain.Principal{ID: 3, Role: domain.RoleCustomer}, "Bia")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip one character in each segment: header, payload, signature.
	for _, pos := range []int{2, len(token) / 2, len(token) - 2} {
		mangled := []byte(token)
		if mangled[pos] == 'A' {
			mangled[pos] = 'B'
		} else {
			mangled[pos] = 'A'
		}
		_, err := verifier.Verify(string(mangled))
		if err == nil {
			t.Fatalf("tampered token at position %d verified", pos)
		}
		if !errors.Is(err, domain.ErrTokenSignatureInvalid) && !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("tampered token at position %d: unexpected error %v", pos, err)
		}
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer, _ := newTokenPair(t, "secret-a", time.Hour, testEpoch)
	_, verifier := newTokenPair(t, "secret-b", time.Hour, testEpoch.Add(time.Minute))

	token, _, err := issuer.Issue(domain.Principal{ID: 1, Role: domain.RoleManager}, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestVerifier_MissingAndGarbage(t *testing.T) {
	_, verifier := newTokenPair(t, "secret", time.Hour, testEpoch)

	if _, err := verifier.Verify(""); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := verifier.Verify("garbage"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
	if _, err := verifier.Verify(strings.Repeat("x.", 40)); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for junk segments, got %v", err)
	}
}

func TestNewCodec_EmptySecret(t *testing.T) {
	if _, err := NewCodec(Config{Secret: ""}, SystemClock); err == nil {
		t.Fatalf("empty secret must be rejected at construction")
	}
}
