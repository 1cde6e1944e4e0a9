package identity

import "time"

// User is the credential record behind the identity provider. It lives in
// the users table, not the event log: credentials are collaborator state,
// never domain events.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
