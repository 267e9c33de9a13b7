package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/irkinnovations/portfolio/internal/domain"
)

const (
	contextKeyAdminID = "admin_id"
)

// TokenVerifier resolves a bearer token to the administrator it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status below is final.
				c.Error(err)
			}

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return nil
		}
	}
}

// JWTAuth validates the Bearer token and injects the administrator ID into echo context.
func JWTAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				return domain.ErrUnauthorized
			}

			adminID, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeyAdminID, adminID)
			return next(c)
		}
	}
}

// GetAdminID extracts the authenticated administrator ID from echo context.
func GetAdminID(c echo.Context) (string, bool) {
	id, ok := c.Get(contextKeyAdminID).(string)
	return id, ok && id != ""
}
