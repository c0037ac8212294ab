package domain

import "time"

// ID is assigned by the store: an ObjectID hex string under Mongo, a UUID
// under Postgres.
type ID string

// User is an account. PasswordHash is a bcrypt hash, or a pbkdf2/scrypt hash
// for accounts created by the Flask service. The plaintext is never stored.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
