package test

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp := server.Do(t, "GET", "/healthz", "", nil)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	for _, path := range []string{"/api/dashboard", "/api/customers", "/api/user/business", "/api/user/check"} {
		resp := server.Do(t, "GET", path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401, got %d", path, resp.StatusCode)
		}
	}

	resp := server.Do(t, "GET", "/api/dashboard", "not-a-real-token", nil)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestOnboardingFlow(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.Signup(t, "owner@example.com", "Bob")

	// Before onboarding: check reports no profile, scoped routes 404.
	resp := server.Do(t, "GET", "/api/user/check", token, nil)
	var check struct {
		Exists bool `json:"exists"`
	}
	DecodeJSON(t, resp, &check)
	resp.Body.Close()
	if check.Exists {
		t.Fatalf("expected exists=false before onboarding")
	}

	resp = server.Do(t, "GET", "/api/user/business", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before onboarding, got %d", resp.StatusCode)
	}

	// Onboard.
	resp = server.Do(t, "POST", "/api/user/business", token, map[string]string{
		"businessName": "Bob's HVAC!!",
		"businessType": "hvac",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var onboarded struct {
		Business struct {
			Subdomain string `json:"subdomain"`
			Plan      string `json:"plan"`
		} `json:"business"`
		User struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	DecodeJSON(t, resp, &onboarded)
	resp.Body.Close()

	if onboarded.Business.Subdomain != "bobs-hvac" {
		t.Errorf("expected subdomain bobs-hvac, got %s", onboarded.Business.Subdomain)
	}
	if onboarded.Business.Plan != "starter" {
		t.Errorf("expected starter plan, got %s", onboarded.Business.Plan)
	}
	if onboarded.User.Role != "ADMIN" {
		t.Errorf("expected ADMIN role, got %s", onboarded.User.Role)
	}

	// After onboarding: profile visible, second onboard conflicts.
	resp = server.Do(t, "GET", "/api/user/business", token, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = server.Do(t, "POST", "/api/user/business", token, map[string]string{
		"businessName": "Another",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for repeat onboarding, got %d", resp.StatusCode)
	}
}

func TestServiceLifecycle(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.SignupAndOnboard(t, "owner@example.com", "Acme Plumbing")

	// Create a ticket; the customer is created on the fly.
	resp := server.Do(t, "POST", "/api/services/create", token, map[string]string{
		"title":         "Fix water heater",
		"description":   "No hot water since Monday",
		"customerName":  "Jane",
		"customerEmail": "jane@example.com",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var created struct {
		Success bool `json:"success"`
		Service struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Priority string `json:"priority"`
			Customer struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"customer"`
		} `json:"service"`
	}
	DecodeJSON(t, resp, &created)
	resp.Body.Close()

	if !created.Success || created.Service.Status != "PENDING" || created.Service.Priority != "MEDIUM" {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if created.Service.Customer.Name != "Jane" {
		t.Fatalf("expected embedded customer, got %+v", created.Service.Customer)
	}

	// Drive the lifecycle.
	resp = server.Do(t, "PATCH", "/api/services/"+created.Service.ID, token, map[string]string{
		"status": "IN_PROGRESS",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = server.Do(t, "PATCH", "/api/services/"+created.Service.ID, token, map[string]string{
		"status": "COMPLETED",
		"notes":  "replaced heating element",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	// Audit trail: creation plus two status changes, in order.
	resp = server.Do(t, "GET", "/api/services/"+created.Service.ID+"/updates", token, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var trail struct {
		Updates []struct {
			Message string `json:"message"`
		} `json:"updates"`
	}
	DecodeJSON(t, resp, &trail)
	resp.Body.Close()

	if len(trail.Updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(trail.Updates))
	}
	if trail.Updates[0].Message != "Service request created: Fix water heater" {
		t.Errorf("unexpected first message: %q", trail.Updates[0].Message)
	}
	if !strings.Contains(trail.Updates[2].Message, "Notes: replaced heating element") {
		t.Errorf("expected notes in final message: %q", trail.Updates[2].Message)
	}

	// Invalid status is a 400 with the enumeration.
	resp = server.Do(t, "PATCH", "/api/services/"+created.Service.ID, token, map[string]string{
		"status": "DONE",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Dashboard reflects the completed ticket.
	resp = server.Do(t, "GET", "/api/dashboard", token, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var dashboard struct {
		Stats struct {
			TotalServices     int `json:"totalServices"`
			CompletedServices int `json:"completedServices"`
			DistinctCustomers int `json:"distinctCustomers"`
		} `json:"stats"`
	}
	DecodeJSON(t, resp, &dashboard)
	resp.Body.Close()

	if dashboard.Stats.TotalServices != 1 || dashboard.Stats.CompletedServices != 1 || dashboard.Stats.DistinctCustomers != 1 {
		t.Errorf("unexpected dashboard stats: %+v", dashboard.Stats)
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	tokenA := server.SignupAndOnboard(t, "a@example.com", "Alpha Repairs")
	tokenB := server.SignupAndOnboard(t, "b@example.com", "Beta Repairs")

	resp := server.Do(t, "POST", "/api/services/create", tokenA, map[string]string{
		"title":         "Alpha ticket",
		"description":   "d",
		"customerName":  "Jane",
		"customerEmail": "jane@example.com",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var created struct {
		Service struct {
			ID string `json:"id"`
		} `json:"service"`
	}
	DecodeJSON(t, resp, &created)
	resp.Body.Close()

	// Business B cannot see or touch A's ticket; it reads as missing.
	resp = server.Do(t, "PATCH", "/api/services/"+created.Service.ID, tokenB, map[string]string{
		"status": "CANCELLED",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for cross-tenant write, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = server.Do(t, "GET", "/api/customers", tokenB, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var listing struct {
		Customers []struct{} `json:"customers"`
		Services  []struct{} `json:"services"`
	}
	DecodeJSON(t, resp, &listing)
	resp.Body.Close()

	if len(listing.Customers) != 0 || len(listing.Services) != 0 {
		t.Errorf("business B should see nothing, got %d customers, %d services",
			len(listing.Customers), len(listing.Services))
	}

	// And A's ticket is untouched.
	resp = server.Do(t, "GET", "/api/services/"+created.Service.ID+"/updates", tokenA, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestCustomerEndpoints(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	token := server.SignupAndOnboard(t, "owner@example.com", "Acme")

	resp := server.Do(t, "POST", "/api/customers/create", token, map[string]string{
		"name":  "Jane",
		"email": "jane@example.com",
		"phone": "555-0100",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var created struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	DecodeJSON(t, resp, &created)
	resp.Body.Close()

	// Duplicate email within the business.
	resp = server.Do(t, "POST", "/api/customers/create", token, map[string]string{
		"name":  "Other",
		"email": "jane@example.com",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Update.
	resp = server.Do(t, "PATCH", "/api/customers/"+created.Customer.ID, token, map[string]string{
		"name":  "Jane D",
		"email": "jane@example.com",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	var updated struct {
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &updated)
	resp.Body.Close()
	if updated.Message != "Customer updated successfully" {
		t.Errorf("unexpected message: %q", updated.Message)
	}

	// A customer with a service cannot be deleted.
	resp = server.Do(t, "POST", "/api/services/create", token, map[string]string{
		"title":         "t",
		"description":   "d",
		"customerName":  "Jane D",
		"customerEmail": "jane@example.com",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = server.Do(t, "DELETE", "/api/customers/"+created.Customer.ID, token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 deleting customer with services, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A fresh customer deletes cleanly.
	resp = server.Do(t, "POST", "/api/customers/create", token, map[string]string{
		"name":  "Max",
		"email": "max@example.com",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var fresh struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	DecodeJSON(t, resp, &fresh)
	resp.Body.Close()

	resp = server.Do(t, "DELETE", "/api/customers/"+fresh.Customer.ID, token, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestLoginFlow(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	server.Signup(t, "owner@example.com", "Bob")

	resp := server.Do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "Password123",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	var login struct {
		Token     string `json:"token"`
		TokenType string `json:"tokenType"`
	}
	DecodeJSON(t, resp, &login)
	resp.Body.Close()
	if login.Token == "" || login.TokenType != "Bearer" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	resp = server.Do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
}

func TestContentTypeValidation(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	req, _ := http.NewRequest("POST", server.URL()+"/api/auth/login", strings.NewReader("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", resp.StatusCode)
	}
}
