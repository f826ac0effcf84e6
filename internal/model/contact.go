package model

import "time"

// Contact models a row in the `contacts` table. Every contact is
// owned by exactly one user via UserID; the database enforces
// ON DELETE CASCADE so contacts disappear with their owner. The
// email column carries a unique key.
type Contact struct {
	ID             uint64    // contacts.id
	FirstName      string    // contacts.first_name
	LastName       string    // contacts.last_name
	Email          string    // contacts.email (unique)
	PhoneNumber    string    // contacts.phone_number
	Birthday       time.Time // contacts.birthday (DATE)
	AdditionalInfo *string   // contacts.additional_info (nullable)
	UserID         uint64    // contacts.user_id (owner, FK users.id)
}
