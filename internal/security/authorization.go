package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateService  Permission = "create_service"
	PermUpdateService  Permission = "update_service"
	PermListServices   Permission = "list_services"
	PermCreateCustomer Permission = "create_customer"
	PermUpdateCustomer Permission = "update_customer"
	PermDeleteCustomer Permission = "delete_customer"
	PermListCustomers  Permission = "list_customers"
	PermManageBusiness Permission = "manage_business"
	PermViewDashboard  Permission = "view_dashboard"
)

// RolePermissions maps roles to their permissions. Onboarding only ever
// creates ADMIN users today; any other role value gets no permissions.
var RolePermissions = map[string][]Permission{
	domain.RoleAdmin: {
		PermCreateService,
		PermUpdateService,
		PermListServices,
		PermCreateCustomer,
		PermUpdateCustomer,
		PermDeleteCustomer,
		PermListCustomers,
		PermManageBusiness,
		PermViewDashboard,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role string, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role string, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", role),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// ValidateBusinessAccess checks that a user belongs to the business whose
// data is being touched. Repositories also scope every query by business ID,
// so this is the outer gate, not the only one.
func (as *AuthorizationService) ValidateBusinessAccess(userBusinessID, requestedBusinessID string) error {
	if userBusinessID != requestedBusinessID {
		as.logger.Warn("business access denied",
			slog.String("user_business", userBusinessID),
			slog.String("requested_business", requestedBusinessID),
		)
		return fmt.Errorf("access denied: invalid business")
	}
	return nil
}
