package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yurivlk/contacts-api/internal/auth"
	"github.com/yurivlk/contacts-api/internal/config"
	"github.com/yurivlk/contacts-api/internal/handler"
	"github.com/yurivlk/contacts-api/internal/middleware"
	"github.com/yurivlk/contacts-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  The open
// operations (signup, login, confirm, request-email, refresh) live under
// /v1/auth; logout needs a valid access token and sits behind the
// identity middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenService, users *repository.UserRepo) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Confirmation links from the email land here with the token in the path.
	g.GET("/confirm/:token", a.Confirm)
	g.POST("/request-email", a.RequestEmail)
	// Refresh reads the refresh token from the Authorization header; it
	// performs its own scope check and must not sit behind the access
	// token middleware.
	g.GET("/refresh", a.Refresh)

	protected := e.Group("/v1/auth")
	protected.Use(middleware.Authenticate(tokens, users))
	protected.POST("/logout", a.Logout)
}

// RegisterContacts registers the owner-scoped contact endpoints and the
// current-user endpoints.  Everything here requires a valid access
// token.  The create and list routes additionally sit behind the Redis
// rate limiter (5/min and 10/min per caller); rdb may be nil, in which
// case the limiter degrades to a pass-through.
func RegisterContacts(e *echo.Echo, ch *handler.ContactHandler, uh *handler.UserHandler,
	tokens *auth.TokenService, users *repository.UserRepo, rdb *redis.Client) {

	createCfg, listCfg := config.LoadRateLimits()

	g := e.Group("/v1")
	g.Use(middleware.Authenticate(tokens, users))

	g.POST("/contacts", ch.Create, middleware.RateLimit(createCfg, rdb))
	g.GET("/contacts", ch.List, middleware.RateLimit(listCfg, rdb))
	// Literal routes must be registered before the :id parameter route.
	g.GET("/contacts/search", ch.Search)
	g.GET("/contacts/birthdays", ch.UpcomingBirthdays)
	g.GET("/contacts/:id", ch.Get)
	g.PUT("/contacts/:id", ch.Update)
	g.DELETE("/contacts/:id", ch.Delete)

	g.GET("/users/me", uh.Me)
	g.PATCH("/users/me/avatar", uh.UpdateAvatar)
}
