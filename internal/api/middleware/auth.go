package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/api/metrics"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// ClaimsKey is the echo context key the decoded session claim is stored
// under by Authenticate.
const ClaimsKey = "auth_claims"

// Authenticate returns middleware that extracts the bearer token from the
// Authorization header and runs the access guard. When roles are given the
// claim's role must be among them. The decoded claim is stored in the
// request context for the handler; token errors propagate to the central
// error handler.
//
// Only the "Authorization: Bearer <token>" form is accepted. Everything
// past extraction is transport-agnostic and lives in the auth package.
func Authenticate(guard *auth.Guard, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := guard.Require(BearerToken(c), roles...)
			metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// BearerToken pulls the raw token out of the Authorization header. Returns
// "" when the header is absent or not in Bearer form; the guard turns that
// into a missing-token failure.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func verificationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrRoleMismatch):
		return "role_mismatch"
	default:
		return "malformed"
	}
}
