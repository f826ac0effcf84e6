package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/yurivlk/contacts-api/internal/middleware"
    "github.com/yurivlk/contacts-api/internal/repository"
)

// UserHandler serves the current-user endpoints.
type UserHandler struct {
    Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
    if users == nil {
        panic("nil repository passed to NewUserHandler")
    }
    return &UserHandler{Users: users}
}

type avatarReq struct {
    URL string `json:"url"`
}

// Me returns the authenticated principal.
func (h *UserHandler) Me(c echo.Context) error {
    u := middleware.CurrentUser(c)
    return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateAvatar stores a new avatar URL for the current user and returns
// the updated profile.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
    u := middleware.CurrentUser(c)

    var req avatarReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    updated, err := h.Users.SetAvatar(ctx, u.Email, strings.TrimSpace(req.URL))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update avatar failed"})
    }
    return c.JSON(http.StatusOK, toUserResp(updated))
}
