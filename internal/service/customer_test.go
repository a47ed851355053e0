package service

import (
	"testing"

	"github.com/yourorg/servicetracker/internal/domain"
)

var registryUser = &domain.User{ID: "user-1", BusinessID: "biz-1"}

func newRegistryFixture() (*CustomerRegistry, *memCustomerRepo, *memServiceRepo) {
	customers := newMemCustomerRepo()
	services := newMemServiceRepo(customers)
	return NewCustomerRegistry(customers, services, nil, nil), customers, services
}

func TestFindOrCreateDedupes(t *testing.T) {
	r, _, _ := newRegistryFixture()

	first, err := r.FindOrCreate(registryUser, "Jane", "jane@example.com", "555-0100")
	if err != nil {
		t.Fatalf("find-or-create failed: %v", err)
	}
	second, err := r.FindOrCreate(registryUser, "Janet", "jane@example.com", "555-9999")
	if err != nil {
		t.Fatalf("find-or-create failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same customer on repeat email")
	}
	if second.Name != "Jane" || second.Phone != "555-0100" {
		t.Errorf("a hit must return the stored row unchanged, got %s / %s", second.Name, second.Phone)
	}
}

func TestCreateDuplicateEmailConflict(t *testing.T) {
	r, _, _ := newRegistryFixture()

	if _, err := r.Create(registryUser, CustomerInput{Name: "Jane", Email: "jane@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := r.Create(registryUser, CustomerInput{Name: "Other", Email: "jane@example.com"})
	if domain.ErrorCode(err) != domain.EConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateSameEmailDifferentBusiness(t *testing.T) {
	r, _, _ := newRegistryFixture()
	other := &domain.User{ID: "user-2", BusinessID: "biz-2"}

	if _, err := r.Create(registryUser, CustomerInput{Name: "Jane", Email: "jane@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Uniqueness is per business, not global.
	if _, err := r.Create(other, CustomerInput{Name: "Jane", Email: "jane@example.com"}); err != nil {
		t.Fatalf("expected same email to be allowed in another business: %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	r, _, _ := newRegistryFixture()

	created, err := r.Create(registryUser, CustomerInput{Name: "Jane", Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := r.Update(registryUser, created.ID, CustomerInput{Email: "jane@example.com"}); domain.ErrorCode(err) != domain.EInvalid {
		t.Errorf("expected invalid without name, got %v", err)
	}
	if _, err := r.Update(registryUser, created.ID, CustomerInput{Name: "Jane"}); domain.ErrorCode(err) != domain.EInvalid {
		t.Errorf("expected invalid without email, got %v", err)
	}

	updated, err := r.Update(registryUser, created.ID, CustomerInput{Name: "Jane D", Email: "jane@example.com", Notes: "prefers mornings"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Jane D" || updated.Notes != "prefers mornings" {
		t.Errorf("update did not apply")
	}
}

func TestUpdateMissingCustomer(t *testing.T) {
	r, _, _ := newRegistryFixture()
	_, err := r.Update(registryUser, "nope", CustomerInput{Name: "X", Email: "x@y.co"})
	if domain.ErrorCode(err) != domain.ENotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCustomerWithServices(t *testing.T) {
	customers := newMemCustomerRepo()
	services := newMemServiceRepo(customers)
	r := NewCustomerRegistry(customers, services, nil, nil)
	tickets := NewTicketService(services, nil, false, nil)

	svc, err := tickets.Create(registryUser, CreateTicketInput{
		Title: "t", Description: "d", CustomerName: "Jane", CustomerEmail: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = r.Delete(registryUser, svc.CustomerID)
	if domain.ErrorCode(err) != domain.EConflict {
		t.Fatalf("expected conflict for customer with services, got %v", err)
	}
}

func TestDeleteCustomer(t *testing.T) {
	r, customers, _ := newRegistryFixture()

	created, _ := r.Create(registryUser, CustomerInput{Name: "Jane", Email: "jane@example.com"})
	if err := r.Delete(registryUser, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := customers.GetByID("biz-1", created.ID); domain.ErrorCode(err) != domain.ENotFound {
		t.Errorf("expected customer to be gone")
	}

	// Deleting again is a 404, and so is deleting from another business.
	if err := r.Delete(registryUser, created.ID); domain.ErrorCode(err) != domain.ENotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCustomerTenantIsolation(t *testing.T) {
	r, _, _ := newRegistryFixture()
	outsider := &domain.User{ID: "user-2", BusinessID: "biz-2"}

	created, _ := r.Create(registryUser, CustomerInput{Name: "Jane", Email: "jane@example.com"})

	if _, err := r.Get(outsider, created.ID); domain.ErrorCode(err) != domain.ENotFound {
		t.Errorf("expected not found for cross-tenant read, got %v", err)
	}
	if err := r.Delete(outsider, created.ID); domain.ErrorCode(err) != domain.ENotFound {
		t.Errorf("expected not found for cross-tenant delete, got %v", err)
	}

	list, err := r.List(outsider)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("outsider should see no customers, saw %d", len(list))
	}
}
