package security

import (
	"testing"

	"github.com/yourorg/servicetracker/internal/domain"
)

func TestRolePermissions(t *testing.T) {
	authz := NewAuthorizationService(nil)

	if !authz.HasPermission(domain.RoleAdmin, PermDeleteCustomer) {
		t.Error("admin should be able to delete customers")
	}
	if authz.HasPermission(domain.RoleTechnician, PermDeleteCustomer) {
		t.Error("non-admin roles should have no permissions")
	}
	if authz.HasPermission("INTERN", PermListServices) {
		t.Error("unknown role should have no permissions")
	}
}

func TestValidatePermission(t *testing.T) {
	authz := NewAuthorizationService(nil)

	if err := authz.ValidatePermission(domain.RoleAdmin, PermManageBusiness); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := authz.ValidatePermission(domain.RoleTechnician, PermManageBusiness); err == nil {
		t.Error("expected error for non-admin role")
	}
}

func TestValidateBusinessAccess(t *testing.T) {
	authz := NewAuthorizationService(nil)

	if err := authz.ValidateBusinessAccess("biz-1", "biz-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := authz.ValidateBusinessAccess("biz-1", "biz-2"); err == nil {
		t.Error("expected error for mismatched business")
	}
}
