// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/farmsight/pestscan/internal/config"
	"github.com/farmsight/pestscan/internal/handler"
	"github.com/farmsight/pestscan/internal/middleware"
)

// Handlers groups everything the router registers.
type Handlers struct {
	Auth      *handler.AuthHandler
	Account   *handler.AccountHandler
	Scans     *handler.ScanHandler
	Feedback  *handler.FeedbackHandler
	Export    *handler.ExportHandler
	Dashboard *handler.DashboardHandler
}

// Register wires every route. Unauthenticated operations live under
// /v1/auth plus the public catalog; everything else sits behind
// JWTAuth under /v1. The locale middleware runs on both groups so the
// pest catalog localizes for guests (query override) and for
// logged-in accounts (stored preference).
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client, prefs middleware.PrefLookup) {
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	locale := middleware.Locale(prefs)

	// Session establishment and teardown.
	g := e.Group("/v1/auth", rl)
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	// Logout by refresh token does not need a JWT.
	g.POST("/logout", h.Auth.Logout)

	// Public localized reference catalog, cached per language.
	e.GET("/v1/pests", h.Feedback.Pests, rl, locale, cache)

	// Everything below requires an authenticated identity.
	auth := e.Group("/v1", rl, middleware.JWTAuth(cfg.JWTSecret), locale)
	auth.GET("/me", h.Auth.Me)
	// Authenticated logout revokes all sessions.
	auth.POST("/logout", h.Auth.Logout)

	auth.PUT("/account/profile", h.Account.UpdateProfile)
	auth.PUT("/account/preferences", h.Account.UpdatePreferences)
	auth.PUT("/account/notifications", h.Account.UpdateNotifications)
	auth.PUT("/account/password", h.Account.ChangePassword)
	auth.DELETE("/account", h.Account.Delete)

	auth.POST("/scans/analyze", h.Scans.Analyze)
	auth.GET("/scans", h.Scans.List)
	auth.GET("/scans/:id", h.Scans.Get)

	auth.POST("/feedback", h.Feedback.Submit)
	auth.GET("/export", h.Export.Export)
	auth.GET("/stats", h.Dashboard.Stats, cache)
}
