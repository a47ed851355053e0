// Package identity is the boundary to the external identity provider.
// Core components depend only on the Verifier interface; no tenant
// information ever travels in a token, only the verified subject.
package identity

import "context"

// Identity is a verified principal as reported by the provider.
type Identity struct {
	ID    string // provider subject
	Email string
	Name  string
}

// Verifier exchanges a bearer token for a verified identity.
type Verifier interface {
	// Verify returns the identity for a token, or an
	// domain.EUnauthorized error when the token is missing, malformed,
	// expired, or rejected.
	Verify(ctx context.Context, token string) (*Identity, error)
}
