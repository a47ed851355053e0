package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
)

func TestDashboardStats(t *testing.T) {
	customers := newMemCustomerRepo()
	services := newMemServiceRepo(customers)
	tickets := NewTicketService(services, nil, false, nil)
	dashboard := NewDashboardService(services, nil, time.Second, nil)

	user := &domain.User{ID: "user-1", BusinessID: "biz-1"}
	business := &domain.Business{ID: "biz-1", Name: "Acme", Subdomain: "acme"}

	a, _ := tickets.Create(user, CreateTicketInput{Title: "a", Description: "d", CustomerName: "Jane", CustomerEmail: "jane@example.com"})
	b, _ := tickets.Create(user, CreateTicketInput{Title: "b", Description: "d", CustomerName: "Jane", CustomerEmail: "jane@example.com"})
	c, _ := tickets.Create(user, CreateTicketInput{Title: "c", Description: "d", CustomerName: "Max", CustomerEmail: "max@example.com"})

	tickets.UpdateStatus(user, a.ID, domain.StatusInProgress, "")
	tickets.UpdateStatus(user, b.ID, domain.StatusCompleted, "")
	tickets.UpdateStatus(user, c.ID, domain.StatusCancelled, "")

	view, err := dashboard.Load(context.Background(), user, business)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if view.BusinessName != "Acme" || view.BusinessSubdomain != "acme" {
		t.Errorf("business header wrong: %+v", view)
	}
	if view.Stats.TotalServices != 3 {
		t.Errorf("expected 3 total, got %d", view.Stats.TotalServices)
	}
	if view.Stats.ActiveServices != 1 {
		t.Errorf("expected 1 active (IN_PROGRESS), got %d", view.Stats.ActiveServices)
	}
	if view.Stats.CompletedServices != 1 {
		t.Errorf("expected 1 completed, got %d", view.Stats.CompletedServices)
	}
	if view.Stats.DistinctCustomers != 2 {
		t.Errorf("expected 2 distinct customers, got %d", view.Stats.DistinctCustomers)
	}
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	customers := newMemCustomerRepo()
	services := newMemServiceRepo(customers)
	cache := newMemSnapshotCache()
	tickets := NewTicketService(services, cache, false, nil)
	dashboard := NewDashboardService(services, cache, time.Minute, nil)

	user := &domain.User{ID: "user-1", BusinessID: "biz-1"}
	business := &domain.Business{ID: "biz-1", Name: "Acme", Subdomain: "acme"}

	tickets.Create(user, CreateTicketInput{Title: "a", Description: "d", CustomerName: "Jane", CustomerEmail: "jane@example.com"})

	first, err := dashboard.Load(context.Background(), user, business)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := cache.data["dashboard:biz-1"]; !ok {
		t.Fatalf("expected snapshot to be cached")
	}

	// Mutate behind the cache's back: a cached load must not see it.
	services.byID["ghost"] = &domain.Service{ID: "ghost", BusinessID: "biz-1", CustomerID: "x", Status: domain.StatusPending}

	second, err := dashboard.Load(context.Background(), user, business)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if second.Stats.TotalServices != first.Stats.TotalServices {
		t.Errorf("expected cached stats, got %d", second.Stats.TotalServices)
	}

	// A write through the ticket service invalidates, and the next load
	// rebuilds.
	tickets.Create(user, CreateTicketInput{Title: "b", Description: "d", CustomerName: "Max", CustomerEmail: "max@example.com"})
	third, err := dashboard.Load(context.Background(), user, business)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if third.Stats.TotalServices != 3 {
		t.Errorf("expected rebuilt snapshot with 3 services, got %d", third.Stats.TotalServices)
	}
}
