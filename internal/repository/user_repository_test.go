package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepo(db), mock, db
}

func userRows(id uint64, username, email, hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "avatar", "refresh_token", "confirmed", "created_at",
	}).AddRow(id, username, email, hash, nil, nil, false, time.Now())
}

func TestUserCreate_Success(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, avatar) VALUES (?,?,?,?)")).
		WithArgs("alice", "alice@example.com", "$2a$10$hash", nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(userRows(7, "alice", "alice@example.com", "$2a$10$hash"))

	u, err := repo.Create(context.Background(), "alice", " Alice@Example.com ", "$2a$10$hash", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 7 || u.Email != "alice@example.com" || u.Confirmed {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "alice", "alice@example.com", "h", nil)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("want ErrEmailExists, got %v", err)
	}
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestSetRefreshToken_SetAndClear(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	tok := "refresh.jwt.value"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(tok, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetRefreshToken(context.Background(), 3, &tok); err != nil {
		t.Fatalf("SetRefreshToken error: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(nil, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetRefreshToken(context.Background(), 3, nil); err != nil {
		t.Fatalf("SetRefreshToken clear error: %v", err)
	}
}

func TestConfirmEmail_Idempotent(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	// First call flips the flag.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET confirmed=TRUE WHERE email=?")).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.ConfirmEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("first ConfirmEmail error: %v", err)
	}

	// Second call affects no rows but the user exists, so it is a no-op.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET confirmed=TRUE WHERE email=?")).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@example.com").
		WillReturnRows(userRows(1, "alice", "alice@example.com", "h"))
	if err := repo.ConfirmEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("second ConfirmEmail error: %v", err)
	}
}

func TestConfirmEmail_UnknownUser(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET confirmed=TRUE WHERE email=?")).
		WithArgs("ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	err := repo.ConfirmEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestSetAvatar(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET avatar=? WHERE email=?")).
		WithArgs("https://example.com/a.png", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "avatar", "refresh_token", "confirmed", "created_at",
	}).AddRow(1, "alice", "alice@example.com", "h", "https://example.com/a.png", nil, true, time.Now())
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	u, err := repo.SetAvatar(context.Background(), "alice@example.com", "https://example.com/a.png")
	if err != nil {
		t.Fatalf("SetAvatar error: %v", err)
	}
	if u.Avatar == nil || *u.Avatar != "https://example.com/a.png" {
		t.Fatalf("avatar not updated: %+v", u)
	}
}
