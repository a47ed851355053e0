package domain

import "time"

// Service ticket statuses.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Service ticket priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// ValidStatus reports whether s is one of the four recognized statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the recognized priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TerminalStatus reports whether s admits no further transitions.
func TerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Service is a unit of work requested by a Customer, tracked through the
// status lifecycle. BusinessID always equals the owning customer's and the
// assigned technician's business.
type Service struct {
	ID            string
	BusinessID    string
	CustomerID    string
	TechnicianID  string // optional, empty when unassigned
	Title         string
	Description   string
	Status        string
	Priority      string
	EstimatedCost float64 // 0 when unset
	ActualCost    float64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Customer is populated on reads that join the owning customer.
	Customer *Customer
}

// ServiceUpdate is an immutable audit record attached to a Service,
// appended exactly once per creation and once per status change.
type ServiceUpdate struct {
	ID        string
	ServiceID string
	UserID    string
	Message   string
	CreatedAt time.Time
}

// ServiceRepository defines data access for service tickets and their audit
// trail. Multi-row writes are atomic: a ticket is never persisted without
// its initial update, and a status change is never persisted without its
// audit record.
type ServiceRepository interface {
	// CreateTicket atomically resolves-or-creates the customer, inserts the
	// service, and appends the initial update. The returned customer is the
	// stored row (existing or newly created).
	CreateTicket(service *Service, customer *Customer, initial *ServiceUpdate) (*Customer, error)

	GetByID(businessID, id string) (*Service, error)
	ListByBusiness(businessID string) ([]*Service, error)

	// UpdateStatus atomically sets the status of the service identified by
	// (id, businessID) and appends the audit record. ENotFound when no such
	// row exists in the business.
	UpdateStatus(businessID, id, status string, update *ServiceUpdate) error

	// CountByCustomer returns the number of services owned by a customer.
	CountByCustomer(businessID, customerID string) (int, error)

	ListUpdates(businessID, serviceID string) ([]*ServiceUpdate, error)
}
