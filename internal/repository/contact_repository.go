// This file defines the owner-scoped contact repository.  Every method
// takes the owning user's ID and folds the ownership predicate into the
// SQL itself, so an unscoped contact query cannot be written by accident.
// A contact that exists but belongs to someone else is indistinguishable
// from one that does not exist: both return ErrContactNotFound.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/yurivlk/contacts-api/internal/model"
)

const contactColumns = "id, first_name, last_name, email, phone_number, birthday, additional_info, user_id"

// ContactRepo encapsulates all database queries over the contacts table.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// Create inserts a contact for the owner and returns the stored row with
// its generated id.  The contacts.email unique key turns duplicate
// addresses into ErrEmailExists.
func (r *ContactRepo) Create(ctx context.Context, ownerID uint64, c *model.Contact) (*model.Contact, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, additional_info, user_id) VALUES (?,?,?,?,?,?,?)",
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.AdditionalInfo, ownerID)
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
	return r.Get(ctx, ownerID, uint64(id))
}

// Get fetches one contact owned by ownerID.
func (r *ContactRepo) Get(ctx context.Context, ownerID, id uint64) (*model.Contact, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id=? AND user_id=? LIMIT 1",
		id, ownerID)
	return scanContact(row)
}

// List returns the owner's contacts with offset/limit pagination.  Rows
// are ordered by id ascending so pages stay stable under concurrent
// inserts.
func (r *ContactRepo) List(ctx context.Context, ownerID uint64, skip, limit int) ([]*model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id=? ORDER BY id ASC LIMIT ? OFFSET ?",
		ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// Update replaces all mutable fields of a contact.  The row is loaded
// first under the ownership predicate; a miss means not-found whether or
// not the id exists for another user.
func (r *ContactRepo) Update(ctx context.Context, ownerID, id uint64, c *model.Contact) (*model.Contact, error) {
	if _, err := r.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET first_name=?, last_name=?, email=?, phone_number=?, birthday=?, additional_info=? WHERE id=? AND user_id=?",
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.AdditionalInfo, id, ownerID)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

// Delete removes a contact and returns its prior state.
func (r *ContactRepo) Delete(ctx context.Context, ownerID, id uint64) (*model.Contact, error) {
	c, err := r.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM contacts WHERE id=? AND user_id=?", id, ownerID); err != nil {
		return nil, err
	}
	return c, nil
}

// Search filters the owner's contacts by case-insensitive substring match
// on first name, last name and email.  Supplied fields are ANDed; empty
// fields impose no constraint, so an empty filter returns everything the
// owner has.
func (r *ContactRepo) Search(ctx context.Context, ownerID uint64, firstName, lastName, email string) ([]*model.Contact, error) {
	where := []string{"user_id = ?"}
	args := []any{ownerID}

	if firstName != "" {
		where = append(where, "LOWER(first_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(firstName)+"%")
	}
	if lastName != "" {
		where = append(where, "LOWER(last_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(lastName)+"%")
	}
	if email != "" {
		where = append(where, "LOWER(email) LIKE ?")
		args = append(args, "%"+strings.ToLower(email)+"%")
	}

	q := "SELECT " + contactColumns + " FROM contacts WHERE " +
		strings.Join(where, " AND ") + " ORDER BY id ASC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls in
// the inclusive window [today, today+horizonDays], comparing only the
// month-day component and ignoring the year.  The window is wrap-aware:
// when it spans the turn of the year (e.g. Dec 28 – Jan 4) January dates
// still match.
func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, ownerID uint64, today time.Time, horizonDays int) ([]*model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE user_id=? AND birthday IS NOT NULL ORDER BY id ASC",
		ownerID)
	if err != nil {
		return nil, err
	}
	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}

	start := today.Format("01-02")
	end := today.AddDate(0, 0, horizonDays).Format("01-02")

	out := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if monthDayInWindow(c.Birthday.Format("01-02"), start, end) {
			out = append(out, c)
		}
	}
	return out, nil
}

// monthDayInWindow reports whether the zero-padded "MM-DD" string md lies
// in the inclusive window [start, end].  A window with start > end spans
// the year boundary and matches both its December tail and January head.
func monthDayInWindow(md, start, end string) bool {
	if start <= end {
		return start <= md && md <= end
	}
	return md >= start || md <= end
}

func scanContact(row *sql.Row) (*model.Contact, error) {
	var (
		c    model.Contact
		info sql.NullString
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email,
		&c.PhoneNumber, &c.Birthday, &info, &c.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	if info.Valid {
		c.AdditionalInfo = &info.String
	}
	return &c, nil
}

func collectContacts(rows *sql.Rows) ([]*model.Contact, error) {
	defer rows.Close()

	var out []*model.Contact
	for rows.Next() {
		var (
			c    model.Contact
			info sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email,
			&c.PhoneNumber, &c.Birthday, &info, &c.UserID); err != nil {
			return nil, err
		}
		if info.Valid {
			c.AdditionalInfo = &info.String
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
