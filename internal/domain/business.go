package domain

import "time"

// Business is the tenant root. Every other entity carries its ID and is never
// read or written without it.
type Business struct {
	ID             string // UUID
	Name           string
	Subdomain      string // globally unique, derived from Name, immutable
	Plan           string // subscription plan, "starter" at signup
	LogoURL        string
	BrandPrimary   string // hex color
	BrandSecondary string // hex color
	BusinessType   string // onboarding metadata
	TeamSize       string
	PrimaryGoal    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// User roles. Only ADMIN is assigned in the current scope.
const (
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
)

// User is an authenticated principal owned by exactly one Business.
// Its ID matches the identity provider's subject.
type User struct {
	ID         string
	BusinessID string
	Email      string
	Name       string
	Role       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BusinessRepository defines data access for businesses.
type BusinessRepository interface {
	Create(business *Business) error // EConflict when the subdomain is taken

	// CreateWithOwner atomically creates a business and its first ADMIN
	// user. EConflict when the subdomain is taken or the user exists;
	// neither row is persisted on failure.
	CreateWithOwner(business *Business, owner *User) error

	GetByID(id string) (*Business, error)
	GetBySubdomain(subdomain string) (*Business, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	ListByBusiness(businessID string) ([]*User, error)
}
