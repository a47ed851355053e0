package domain

import "time"

// Credential is a local email/password identity, used only when the server
// runs with the built-in identity provider instead of a remote one.
type Credential struct {
	ID           string // identity subject, matches User.ID after onboarding
	Email        string
	Name         string
	PasswordHash string // bcrypt
	CreatedAt    time.Time
}

// CredentialRepository defines data access for local identities.
type CredentialRepository interface {
	Create(credential *Credential) error // EConflict when the email is taken
	GetByEmail(email string) (*Credential, error)
}
