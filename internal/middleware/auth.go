package middleware // middleware provides reusable HTTP middleware for protected routes

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/yurivlk/contacts-api/internal/auth"
    "github.com/yurivlk/contacts-api/internal/model"
    "github.com/yurivlk/contacts-api/internal/repository"
)

// userContextKey is where the resolved principal lives in the echo
// context.  Handlers read it back through CurrentUser.
const userContextKey = "user"

// Authenticate returns an Echo middleware that resolves the request's
// principal from its bearer access token.  The pipeline is exactly one
// token decode plus one user lookup; there is no caching and no retry.
// Every failure mode — missing header, bad signature, expired token,
// wrong scope, unknown subject — produces the same generic 401 so the
// response never reveals whether an email exists.  Email confirmation is
// deliberately not checked here: it is enforced at login only.
func Authenticate(tokens *auth.TokenService, users *repository.UserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return unauthorized(c)
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            email, err := tokens.DecodeAccessToken(raw)
            if err != nil {
                return unauthorized(c)
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            u, err := users.FindByEmail(ctx, email)
            if err != nil {
                return unauthorized(c)
            }

            c.Set(userContextKey, u)
            return next(c)
        }
    }
}

// CurrentUser returns the principal placed in the context by
// Authenticate.  It is only meaningful on routes behind that middleware;
// elsewhere it returns nil.
func CurrentUser(c echo.Context) *model.User {
    u, _ := c.Get(userContextKey).(*model.User)
    return u
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
}
