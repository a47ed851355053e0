package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/servicetracker/internal/domain"
)

// CustomerInput carries the writable customer fields.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// CustomerRegistry manages customers within a business, deduplicating them
// by (business, email).
type CustomerRegistry struct {
	customers domain.CustomerRepository
	services  domain.ServiceRepository
	cache     SnapshotCache
	logger    *slog.Logger
}

// NewCustomerRegistry creates a customer registry
func NewCustomerRegistry(
	customers domain.CustomerRepository,
	services domain.ServiceRepository,
	cache SnapshotCache,
	logger *slog.Logger,
) *CustomerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerRegistry{customers: customers, services: services, cache: cache, logger: logger}
}

// FindOrCreate returns the customer with the given email in the caller's
// business, creating it when absent. On a hit the stored row is returned
// unchanged even if the supplied name or phone differ.
func (r *CustomerRegistry) FindOrCreate(user *domain.User, name, email, phone string) (*domain.Customer, error) {
	if blank(name) || blank(email) {
		return nil, domain.Errorf(domain.EInvalid, "missing required fields: name, email")
	}
	return r.customers.FindOrCreate(&domain.Customer{
		ID:         uuid.NewString(),
		BusinessID: user.BusinessID,
		Name:       name,
		Email:      email,
		Phone:      phone,
	})
}

// Create explicitly registers a new customer; EConflict when the email is
// already present in the business.
func (r *CustomerRegistry) Create(user *domain.User, in CustomerInput) (*domain.Customer, error) {
	if blank(in.Name) || blank(in.Email) {
		return nil, domain.Errorf(domain.EInvalid, "missing required fields: name, email")
	}
	if !validEmail(in.Email) {
		return nil, domain.Errorf(domain.EInvalid, "invalid email format")
	}

	customer := &domain.Customer{
		ID:         uuid.NewString(),
		BusinessID: user.BusinessID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		Notes:      in.Notes,
	}
	if err := r.customers.Create(customer); err != nil {
		return nil, err
	}

	r.invalidate(user.BusinessID)
	r.logger.Info("customer created",
		slog.String("customer_id", customer.ID),
		slog.String("business_id", customer.BusinessID),
	)
	return customer, nil
}

// Update rewrites a customer scoped to the caller's business.
func (r *CustomerRegistry) Update(user *domain.User, customerID string, in CustomerInput) (*domain.Customer, error) {
	if blank(in.Name) || blank(in.Email) {
		return nil, domain.Errorf(domain.EInvalid, "name and email are required")
	}
	if !validEmail(in.Email) {
		return nil, domain.Errorf(domain.EInvalid, "invalid email format")
	}

	customer := &domain.Customer{
		ID:         customerID,
		BusinessID: user.BusinessID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		Notes:      in.Notes,
	}
	if err := r.customers.Update(customer); err != nil {
		return nil, err
	}

	r.invalidate(user.BusinessID)
	return customer, nil
}

// Delete removes a customer that owns no services; EConflict otherwise.
func (r *CustomerRegistry) Delete(user *domain.User, customerID string) error {
	if _, err := r.customers.GetByID(user.BusinessID, customerID); err != nil {
		return err
	}

	count, err := r.services.CountByCustomer(user.BusinessID, customerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.Errorf(domain.EConflict, "cannot delete customer with existing services")
	}

	if err := r.customers.Delete(user.BusinessID, customerID); err != nil {
		return err
	}

	r.invalidate(user.BusinessID)
	r.logger.Info("customer deleted",
		slog.String("customer_id", customerID),
		slog.String("business_id", user.BusinessID),
	)
	return nil
}

// Get returns a customer scoped to the caller's business.
func (r *CustomerRegistry) Get(user *domain.User, customerID string) (*domain.Customer, error) {
	return r.customers.GetByID(user.BusinessID, customerID)
}

// List returns the business's customers, newest first.
func (r *CustomerRegistry) List(user *domain.User) ([]*domain.Customer, error) {
	return r.customers.ListByBusiness(user.BusinessID)
}

func (r *CustomerRegistry) invalidate(businessID string) {
	if r.cache == nil {
		return
	}
	invalidateDashboard(r.cache, businessID, r.logger)
}
