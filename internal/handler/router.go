package handler

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
type RouterConfig struct {
	Auth     *AuthHandler
	Projects *ProjectHandler
	Contact  *ContactHandler
	Health   *HealthHandler

	Verifier TokenVerifier

	LoginLimiter   *RateLimiter
	ContactLimiter *RateLimiter

	AllowOrigins []string

	// TrustedProxies may set X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies []*net.IPNet
}

// NewRouter builds the echo instance serving the API.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()
	e.IPExtractor = ipExtractor(cfg.TrustedProxies)

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		MaxAge:        300,
	}))

	e.GET("/health", cfg.Health.Check)

	api := e.Group("/api")

	api.POST("/auth/login", cfg.Auth.Login, cfg.LoginLimiter.Middleware())
	api.POST("/contact", cfg.Contact.Submit, cfg.ContactLimiter.Middleware())

	api.GET("/projects", cfg.Projects.List)
	api.GET("/projects/:id", cfg.Projects.Get)

	requireAdmin := JWTAuth(cfg.Verifier)
	api.GET("/auth/me", cfg.Auth.Me, requireAdmin)
	api.POST("/projects", cfg.Projects.Create, requireAdmin)
	api.PUT("/projects/:id", cfg.Projects.Update, requireAdmin)
	api.DELETE("/projects/:id", cfg.Projects.Delete, requireAdmin)

	return e
}

// ipExtractor resolves the client address that rate limits are keyed on.
// Forwarding headers are only honoured when the direct peer is a trusted proxy.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
