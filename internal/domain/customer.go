package domain

import "time"

// Customer is owned by exactly one Business. The (BusinessID, Email) pair is
// unique within a business.
type Customer struct {
	ID         string
	BusinessID string
	Name       string
	Email      string
	Phone      string
	Address    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CustomerRepository defines data access for customers. Every method is
// scoped by business ID; a row outside the caller's business behaves as if
// it does not exist.
type CustomerRepository interface {
	// FindOrCreate returns the customer with the given (BusinessID, Email),
	// creating it if absent. On a hit the stored row is returned unchanged
	// even when the supplied name or phone differ.
	FindOrCreate(customer *Customer) (*Customer, error)

	// Create inserts a new customer. EConflict when the email already
	// exists in the business.
	Create(customer *Customer) error

	GetByID(businessID, id string) (*Customer, error)
	ListByBusiness(businessID string) ([]*Customer, error)

	// Update rewrites the row identified by (ID, BusinessID). ENotFound
	// when no such row exists in the business.
	Update(customer *Customer) error

	// Delete removes the row identified by (id, businessID). EConflict
	// when the customer still owns services.
	Delete(businessID, id string) error
}
