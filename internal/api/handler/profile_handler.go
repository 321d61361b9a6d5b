package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/core/ports"
)

// ProfileHandler handles the authenticated principal's own account: read,
// update, delete, plus the public manager directory.
type ProfileHandler struct {
	accounts ports.AccountService
}

func NewProfileHandler(accounts ports.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

type profileResponse struct {
	PrincipalID int64  `json:"principal_id"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CreatedAt   string `json:"created_at"`
	// Token is the refresh-on-read re-mint: reading the profile hands back
	// a fresh session token alongside the payload.
	Token string `json:"token"`
}

type updateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type managerSummary struct {
	PrincipalID int64  `json:"manager_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CreatedAt   string `json:"created_at"`
}

// Me returns the caller's profile and a fresh token.
//
// @Summary      Read own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.accounts.Profile(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		PrincipalID: result.Account.ID,
		Role:        result.Account.Role.String(),
		Name:        result.Account.Name,
		Email:       result.Account.Email,
		CreatedAt:   result.Account.CreatedAt.UTC().Format(time.RFC3339),
		Token:       result.FreshToken,
	})
}

// UpdateMe changes the caller's name and/or password.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /me [put]
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.UpdateProfile(c.Request().Context(), claims, req.Name, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "profile updated"})
}

// DeleteMe removes the caller's account.
//
// @Summary      Delete own account
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [delete]
func (h *ProfileHandler) DeleteMe(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "account deleted"})
}

// ListManagers returns the manager directory. Manager-gated; credential
// data never appears in the response.
//
// @Summary      List managers
// @Tags         managers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   managerSummary
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /managers [get]
func (h *ProfileHandler) ListManagers(c echo.Context) error {
	managers, err := h.accounts.ListManagers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]managerSummary, 0, len(managers))
	for _, m := range managers {
		out = append(out, managerSummary{
			PrincipalID: m.ID,
			Name:        m.Name,
			Email:       m.Email,
			CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}
