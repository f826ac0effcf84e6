package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/yurivlk/contacts-api/internal/auth"
	"github.com/yurivlk/contacts-api/internal/repository"
)

func newAuthMiddleware(t *testing.T) (echo.MiddlewareFunc, *auth.TokenService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	tokens := auth.NewTokenService("mw-secret", time.Minute, time.Hour, time.Hour)
	return Authenticate(tokens, repository.NewUserRepo(db)), tokens, mock, db
}

func invoke(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/contacts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, c
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw, _, _, db := newAuthMiddleware(t)
	defer db.Close()

	rec, _ := invoke(mw, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	mw, tokens, _, db := newAuthMiddleware(t)
	defer db.Close()

	refresh, err := tokens.IssueRefreshToken("alice@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	rec, _ := invoke(mw, "Bearer "+refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token on protected route: want 401, got %d", rec.Code)
	}
}

func TestAuthenticate_UnknownSubjectSameMessage(t *testing.T) {
	mw, tokens, mock, db := newAuthMiddleware(t)
	defer db.Close()

	access, err := tokens.IssueAccessToken("ghost@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	rec, _ := invoke(mw, "Bearer "+access)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	// The body must not differ from the bad-token case; both say only
	// that credentials could not be validated.
	if want := `"could not validate credentials"`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("response leaks lookup detail: %s", rec.Body.String())
	}
}

func TestAuthenticate_Success(t *testing.T) {
	mw, tokens, mock, db := newAuthMiddleware(t)
	defer db.Close()

	access, err := tokens.IssueAccessToken("alice@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "avatar", "refresh_token", "confirmed", "created_at",
	}).AddRow(1, "alice", "alice@example.com", "h", nil, nil, true, time.Now())
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	rec, c := invoke(mw, "Bearer "+access)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	u := CurrentUser(c)
	if u == nil || u.Email != "alice@example.com" {
		t.Fatalf("principal not in context: %+v", u)
	}
}
