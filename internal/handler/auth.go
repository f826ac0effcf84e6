package handler

import (
    "context"      // provides context with timeout for DB calls
    "errors"       // sentinel comparisons against repository/auth errors
    "net/http"     // HTTP status codes and primitives
    "strings"      // string normalization utilities
    "time"         // timeouts for DB calls and response timestamps

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/yurivlk/contacts-api/internal/auth"
    "github.com/yurivlk/contacts-api/internal/avatar"
    "github.com/yurivlk/contacts-api/internal/config"
    "github.com/yurivlk/contacts-api/internal/middleware"
    "github.com/yurivlk/contacts-api/internal/model"
    "github.com/yurivlk/contacts-api/internal/queue"
    "github.com/yurivlk/contacts-api/internal/repository"
    mail_publisher "github.com/yurivlk/contacts-api/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.  publish is a
// field so tests can capture events instead of dialing the broker; it
// defaults to the RabbitMQ publisher.
type AuthHandler struct {
    Cfg     config.Config
    Users   *repository.UserRepo
    Tokens  *auth.TokenService
    Avatars *avatar.Provider

    publish func(ctx context.Context, ev queue.ConfirmationEmailEvent) error
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *auth.TokenService, avatars *avatar.Provider) *AuthHandler {
    return &AuthHandler{
        Cfg:     cfg,
        Users:   users,
        Tokens:  tokens,
        Avatars: avatars,
        publish: mail_publisher.PublishConfirmationEmail,
    }
}

// ----- DTOs -----

type signupReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type requestEmailReq struct {
    Email string `json:"email"`
}

type userResp struct {
    ID        uint64    `json:"id"`
    Username  string    `json:"username"`
    Email     string    `json:"email"`
    Avatar    *string   `json:"avatar"`
    Confirmed bool      `json:"confirmed"`
    CreatedAt time.Time `json:"created_at"`
}
type signupResp struct {
    User   userResp `json:"user"`
    Detail string   `json:"detail"`
}
type tokenPairResp struct {
    AccessToken  string `json:"access_token"`
    RefreshToken string `json:"refresh_token"`
    TokenType    string `json:"token_type"`
}

func toUserResp(u *model.User) userResp {
    return userResp{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        Avatar:    u.Avatar,
        Confirmed: u.Confirmed,
        CreatedAt: u.CreatedAt,
    }
}

// Signup: create an unconfirmed account and dispatch a confirmation email.
// The avatar lookup and the email dispatch are both best-effort; neither
// failure blocks account creation.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Username = strings.TrimSpace(req.Username)
    if req.Email == "" || req.Password == "" || req.Username == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
    }
    if !strings.Contains(req.Email, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
    }
    if len(req.Password) < 6 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
    } else if !errors.Is(err, repository.ErrUserNotFound) {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    // Avatar resolution is an external call inside a write path: a
    // failure maps to "no avatar" and is never propagated.
    var avatarURL *string
    if url, err := h.Avatars.Resolve(req.Email); err == nil {
        avatarURL = &url
    }

    u, err := h.Users.Create(ctx, req.Username, req.Email, hash, avatarURL)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            // Lost the race against a concurrent signup at the unique key.
            return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    h.dispatchConfirmation(ctx, u)

    return c.JSON(http.StatusCreated, signupResp{
        User:   toUserResp(u),
        Detail: "User successfully created. Check your email for confirmation.",
    })
}

// Login: verify credentials and return a fresh token pair.  The three
// rejection reasons are reported distinctly per the API contract, and
// confirmation is enforced here and only here.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.Confirmed {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "email not confirmed"})
    }
    if !auth.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
    }

    return h.issuePair(c, ctx, u)
}

// Confirm: flip the confirmed flag using the token from the email link.
func (h *AuthHandler) Confirm(c echo.Context) error {
    token := c.Param("token")

    email, err := h.Tokens.DecodeEmailToken(token)
    if err != nil {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid token for email verification"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByEmail(ctx, email)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "verification error"})
    }
    if u.Confirmed {
        return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
    }
    if err := h.Users.ConfirmEmail(ctx, email); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

// RequestEmail: re-send the confirmation email.  The response is the
// same whether or not the address exists, so the endpoint cannot be used
// to enumerate accounts.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
    var req requestEmailReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByEmail(ctx, req.Email)
    if err == nil {
        if u.Confirmed {
            return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
        }
        h.dispatchConfirmation(ctx, u)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}

// Refresh: exchange a refresh token for a new pair.  The presented token
// must both decode with the refresh scope and match the one persisted at
// the last login; a mismatch clears the stored token so a stolen older
// token cannot be replayed.
func (h *AuthHandler) Refresh(c echo.Context) error {
    header := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(header, "Bearer ") {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    raw := strings.TrimPrefix(header, "Bearer ")

    email, err := h.Tokens.DecodeRefreshToken(raw)
    if err != nil {
        if errors.Is(err, auth.ErrInvalidScope) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid scope for token"})
        }
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByEmail(ctx, email)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }
    if u.RefreshToken == nil || *u.RefreshToken != raw {
        _ = h.Users.SetRefreshToken(ctx, u.ID, nil)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }

    return h.issuePair(c, ctx, u)
}

// Logout: clear the stored refresh token for the current user (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
    u := middleware.CurrentUser(c)
    if u == nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Users.SetRefreshToken(ctx, u.ID, nil); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// issuePair issues an access+refresh pair and persists the refresh token
// as the user's single active session token.
func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, u *model.User) error {
    access, err := h.Tokens.IssueAccessToken(u.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := h.Tokens.IssueRefreshToken(u.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Users.SetRefreshToken(ctx, u.ID, &refresh); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }
    return c.JSON(http.StatusOK, tokenPairResp{
        AccessToken:  access,
        RefreshToken: refresh,
        TokenType:    "bearer",
    })
}

// dispatchConfirmation issues an email token and publishes the
// confirmation event.  Failures are logged by the publisher and ignored
// here: email delivery is out-of-band and must never fail the request.
func (h *AuthHandler) dispatchConfirmation(ctx context.Context, u *model.User) {
    token, err := h.Tokens.IssueEmailToken(u.Email)
    if err != nil {
        return
    }
    _ = h.publish(ctx, queue.ConfirmationEmailEvent{
        Email:    u.Email,
        Username: u.Username,
        Token:    token,
        BaseURL:  h.Cfg.BaseURL,
    })
}
