package service

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/observability/metrics"
)

// Legal status transitions when strict checking is enabled. COMPLETED and
// CANCELLED are terminal.
var strictTransitions = map[string][]string{
	domain.StatusPending:    {domain.StatusInProgress, domain.StatusCancelled},
	domain.StatusInProgress: {domain.StatusCompleted, domain.StatusCancelled},
}

// CreateTicketInput carries a service-creation request. The customer is
// identified by email within the caller's business and created on demand.
type CreateTicketInput struct {
	Title         string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Priority      string
}

// TicketService is the service lifecycle manager: it creates tickets and
// drives the status state machine, appending exactly one audit record per
// successful mutation.
type TicketService struct {
	services domain.ServiceRepository
	cache    SnapshotCache
	logger   *slog.Logger

	// strict rejects transitions outside the lifecycle graph. The shipped
	// behavior is permissive (manual corrections allowed); strict mode is
	// opt-in via FLAG_STRICT_TRANSITIONS.
	strict bool
}

// NewTicketService creates a ticket service
func NewTicketService(services domain.ServiceRepository, cache SnapshotCache, strict bool, logger *slog.Logger) *TicketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketService{services: services, cache: cache, strict: strict, logger: logger}
}

// Create validates the input, resolves or creates the customer within the
// caller's business, and inserts the ticket in PENDING with its initial
// audit record. The whole write is atomic.
func (s *TicketService) Create(user *domain.User, in CreateTicketInput) (*domain.Service, error) {
	if blank(in.Title) || blank(in.Description) || blank(in.CustomerName) || blank(in.CustomerEmail) {
		return nil, domain.Errorf(domain.EInvalid,
			"missing required fields: title, description, customerName, customerEmail")
	}
	if !validEmail(in.CustomerEmail) {
		return nil, domain.Errorf(domain.EInvalid, "invalid email format")
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, domain.Errorf(domain.EInvalid, "invalid priority: %s", priority)
	}

	svc := &domain.Service{
		ID:          uuid.NewString(),
		BusinessID:  user.BusinessID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		Priority:    priority,
	}
	customer := &domain.Customer{
		ID:         uuid.NewString(),
		BusinessID: user.BusinessID,
		Name:       in.CustomerName,
		Email:      in.CustomerEmail,
		Phone:      in.CustomerPhone,
	}
	initial := &domain.ServiceUpdate{
		ID:        uuid.NewString(),
		ServiceID: svc.ID,
		UserID:    user.ID,
		Message:   fmt.Sprintf("Service request created: %s", in.Title),
	}

	if _, err := s.services.CreateTicket(svc, customer, initial); err != nil {
		return nil, err
	}

	s.invalidateDashboard(user.BusinessID)
	s.logger.Info("service created",
		slog.String("service_id", svc.ID),
		slog.String("business_id", svc.BusinessID),
		slog.String("customer_id", svc.CustomerID),
	)
	return svc, nil
}

// UpdateStatus transitions a ticket scoped to the caller's business and
// appends the audit record embedding the old and new status values.
func (s *TicketService) UpdateStatus(user *domain.User, serviceID, newStatus, notes string) (*domain.Service, error) {
	if newStatus == "" {
		return nil, domain.Errorf(domain.EInvalid, "missing required field: status")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, domain.Errorf(domain.EInvalid,
			"invalid status. Must be one of: PENDING, IN_PROGRESS, COMPLETED, CANCELLED")
	}

	svc, err := s.services.GetByID(user.BusinessID, serviceID)
	if err != nil {
		return nil, err
	}

	if s.strict && !legalTransition(svc.Status, newStatus) {
		return nil, domain.Errorf(domain.EInvalid,
			"illegal transition from %s to %s", svc.Status, newStatus)
	}

	message := fmt.Sprintf("Status changed from %s to %s", svc.Status, newStatus)
	if notes != "" {
		message = fmt.Sprintf("%s. Notes: %s", message, notes)
	}
	update := &domain.ServiceUpdate{
		ID:        uuid.NewString(),
		ServiceID: svc.ID,
		UserID:    user.ID,
		Message:   message,
	}

	if err := s.services.UpdateStatus(user.BusinessID, serviceID, newStatus, update); err != nil {
		return nil, err
	}

	metrics.ObserveTicketTransition(svc.Status, newStatus)
	s.invalidateDashboard(user.BusinessID)

	oldStatus := svc.Status
	svc.Status = newStatus
	s.logger.Info("service status updated",
		slog.String("service_id", svc.ID),
		slog.String("business_id", svc.BusinessID),
		slog.String("from", oldStatus),
		slog.String("to", newStatus),
	)
	return svc, nil
}

// Get returns a ticket scoped to the caller's business.
func (s *TicketService) Get(user *domain.User, serviceID string) (*domain.Service, error) {
	return s.services.GetByID(user.BusinessID, serviceID)
}

// List returns the business's tickets, newest first.
func (s *TicketService) List(user *domain.User) ([]*domain.Service, error) {
	return s.services.ListByBusiness(user.BusinessID)
}

// Updates returns a ticket's audit trail, oldest first.
func (s *TicketService) Updates(user *domain.User, serviceID string) ([]*domain.ServiceUpdate, error) {
	return s.services.ListUpdates(user.BusinessID, serviceID)
}

func (s *TicketService) invalidateDashboard(businessID string) {
	if s.cache == nil {
		return
	}
	invalidateDashboard(s.cache, businessID, s.logger)
}

func legalTransition(from, to string) bool {
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
