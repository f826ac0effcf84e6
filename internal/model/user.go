package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers define separate response types with JSON
// tags; the repository layer scans rows directly into this
// struct.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name chosen at signup.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password, never the plaintext.
//  Avatar       – avatar image URL, nil when none was resolved.
//  RefreshToken – last issued refresh token, nil after logout.
//  Confirmed    – whether the email address has been confirmed.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Avatar       *string   // users.avatar (nullable)
	RefreshToken *string   // users.refresh_token (nullable)
	Confirmed    bool      // users.confirmed
	CreatedAt    time.Time // users.created_at
}
