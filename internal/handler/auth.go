package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/irkinnovations/portfolio/internal/domain"
	"github.com/irkinnovations/portfolio/internal/service"
)

// Authenticator is the part of service.AuthService used by AuthHandler.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges administrator credentials for a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{
		ID:        res.Admin.ID,
		Email:     res.Admin.Email,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// Me returns the currently authenticated administrator.
func (h *AuthHandler) Me(c echo.Context) error {
	adminID, ok := GetAdminID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	admin, err := h.auth.GetAdmin(c.Request().Context(), adminID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, admin)
}
