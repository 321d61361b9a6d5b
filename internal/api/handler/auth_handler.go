package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/api/middleware"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

// AuthHandler handles registration, login, and token introspection for both
// principal kinds.
type AuthHandler struct {
	accounts ports.AccountService
	verifier *auth.Verifier
}

func NewAuthHandler(accounts ports.AccountService, verifier *auth.Verifier) *AuthHandler {
	return &AuthHandler{accounts: accounts, verifier: verifier}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type registerResponse struct {
	Message     string `json:"message"`
	PrincipalID int64  `json:"principal_id"`
	Role        string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message     string `json:"message"`
	PrincipalID int64  `json:"principal_id"`
	Token       string `json:"token"`
}

// RegisterManager creates a manager account.
//
// @Summary      Register a new manager
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Manager registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /managers [post]
func (h *AuthHandler) RegisterManager(c echo.Context) error {
	return h.register(c, domain.RoleManager)
}

// RegisterCustomer creates a customer account.
//
// @Summary      Register a new customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Customer registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /customers [post]
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	return h.register(c, domain.RoleCustomer)
}

func (h *AuthHandler) register(c echo.Context, role domain.Role) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Role:     role,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
		}
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message:     "account created",
		PrincipalID: account.ID,
		Role:        account.Role.String(),
	})
}

// LoginManager authenticates a manager and returns a session token.
//
// @Summary      Manager login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /login/manager [post]
func (h *AuthHandler) LoginManager(c echo.Context) error {
	return h.login(c, domain.RoleManager)
}

// LoginCustomer authenticates a customer and returns a session token.
//
// @Summary      Customer login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /login/customer [post]
func (h *AuthHandler) LoginCustomer(c echo.Context) error {
	return h.login(c, domain.RoleCustomer)
}

func (h *AuthHandler) login(c echo.Context, role domain.Role) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.accounts.Login(c.Request().Context(), role, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message:     "login successful",
		PrincipalID: result.Account.ID,
		Token:       result.Token,
	})
}

type tokenStatusResponse struct {
	Valid       bool   `json:"valid"`
	Expired     bool   `json:"expired"`
	PrincipalID int64  `json:"principal_id,omitempty"`
	Role        string `json:"role,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// Status reports whether the presented token is valid. This is the one
// endpoint where an expired token is distinguishable from a garbage one, so
// a client can tell "log in again" apart from "token corrupt". Protected
// endpoints return an undifferentiated 401 for both.
//
// @Summary      Session token status
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tokenStatusResponse
// @Failure      401  {object}  tokenStatusResponse
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	claims, err := h.verifier.Verify(middleware.BearerToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, tokenStatusResponse{
			Valid:   false,
			Expired: errors.Is(err, domain.ErrTokenExpired),
		})
	}

	return c.JSON(http.StatusOK, tokenStatusResponse{
		Valid:       true,
		PrincipalID: claims.PrincipalID,
		Role:        claims.Role.String(),
		ExpiresAt:   claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}
