package repository

import (
	"context"      // context propagation for DB calls
	"database/sql" // SQL database interactions
	"errors"       // sentinel error comparisons
	"strings"      // email normalization

	"github.com/yurivlk/contacts-api/internal/model" // column-mapped row structs
)

const userColumns = "id, username, email, password_hash, avatar, refresh_token, confirmed, created_at"

// UserRepo encapsulates all database queries over the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns the stored row.  Passwords must
// arrive already hashed; the repository never sees plaintext.  The avatar
// is optional and resolved by the caller beforehand (best-effort, see the
// avatar package).  A duplicate email surfaces as ErrEmailExists via the
// table's unique key, not by a prior lookup, so two concurrent signups
// for the same address race at the constraint.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, avatar *string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, avatar) VALUES (?,?,?,?)",
		username, email, passwordHash, avatar)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, uint64(id))
}

// FindByEmail fetches a user by normalized email.  Misses come back as
// ErrUserNotFound.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// SetRefreshToken overwrites the stored refresh token.  Passing nil
// clears it, which is how logout invalidates the session.
func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uint64, token *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", token, userID)
	return err
}

// ConfirmEmail flips the confirmed flag.  The update is idempotent: a
// second call affects zero rows but still succeeds, because the user
// exists.  An unknown email yields ErrUserNotFound.
func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmed=TRUE WHERE email=?", email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the user is unknown or the flag was already TRUE; only
		// the former is an error.
		if _, err := r.FindByEmail(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

// SetAvatar stores a new avatar URL and returns the updated user.
func (r *UserRepo) SetAvatar(ctx context.Context, email, url string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar=? WHERE email=?", url, email)
	if err != nil {
		return nil, err
	}
	// Zero rows affected can also mean the URL was unchanged, so the
	// follow-up read settles whether the user exists at all.
	return r.FindByEmail(ctx, email)
}

func (r *UserRepo) getByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u       model.User
		avatar  sql.NullString
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&avatar, &refresh, &u.Confirmed, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if refresh.Valid {
		u.RefreshToken = &refresh.String
	}
	return &u, nil
}

// isDuplicateKey reports whether err is a MySQL duplicate entry error
// (code 1062) raised by a unique key.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
