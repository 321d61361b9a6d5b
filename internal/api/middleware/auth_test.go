package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

func newTestGuard(t *testing.T) (*auth.Guard, *auth.Issuer) {
	t.Helper()
	cfg := auth.Config{Secret: "middleware-test-secret", TTL: time.Hour}
	codec, err := auth.NewCodec(cfg, nil)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return auth.NewGuard(auth.NewVerifier(codec)), auth.NewIssuer(codec, cfg, nil)
}

func signedToken(t *testing.T, issuer *auth.Issuer, role domain.Role, id int64) string {
	t.Helper()
	token, _, err := issuer.Issue(domain.Principal{ID: id, Role: role}, "Alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthenticate_ValidToken(t *testing.T) {
	e := echo.New()
	guard, issuer := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, issuer, domain.RoleManager, 42))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Authenticate(guard, domain.RoleManager)
	handler := mw(func(c echo.Context) error {
		called = true
		claims, ok := c.Get(ClaimsKey).(auth.Claims)
		if !ok {
			t.Fatalf("claims not set in context")
		}
		if claims.PrincipalID != 42 || claims.Role != domain.RoleManager {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_AnyRole(t *testing.T) {
	e := echo.New()
	guard, issuer := newTestGuard(t)

	// No role list: any authenticated principal passes.
	mw := Authenticate(guard)
	for _, role := range []domain.Role{domain.RoleManager, domain.RoleCustomer} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, issuer, role, 1))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := mw(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("role %s rejected: %v", role, err)
		}
	}
}

func TestAuthenticate_RoleMismatch(t *testing.T) {
	e := echo.New()
	guard, issuer := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, issuer, domain.RoleCustomer, 9))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Authenticate(guard, domain.RoleManager)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if err == nil {
		t.Fatalf("expected error for role mismatch")
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	e := echo.New()
	guard, _ := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Authenticate(guard)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err == nil {
		t.Fatalf("expected error for missing header")
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	e := echo.New()
	guard, _ := newTestGuard(t)

	mw := Authenticate(guard)
	for _, header := range []string{
		"Token abc",
		"Bearer not-a-token",
		"Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := mw(func(c echo.Context) error {
			t.Fatalf("should not reach next for %q", header)
			return nil
		})
		if err := handler(c); err == nil {
			t.Fatalf("expected error for header %q", header)
		}
	}
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer lowercase-scheme", "lowercase-scheme"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		if got := BearerToken(c); got != tc.want {
			t.Fatalf("header %q: expected %q, got %q", tc.header, tc.want, got)
		}
	}
}
