package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/api/middleware"
	"github.com/feirahub/marketplace-api/internal/core/auth"
)

// ctxClaims extracts the session claim injected by the Authenticate
// middleware. Its presence proves the guard ran; a handler reached without
// it is a wiring bug, reported as 401 rather than a panic so the request
// still fails closed.
func ctxClaims(c echo.Context) (auth.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(auth.Claims)
	if !ok {
		return auth.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
