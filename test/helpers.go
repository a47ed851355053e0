package test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/handler"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/internal/infrastructure/logger"
	"github.com/yourorg/servicetracker/internal/repository/memory"
	"github.com/yourorg/servicetracker/internal/security"
	"github.com/yourorg/servicetracker/internal/security/audit"
	"github.com/yourorg/servicetracker/internal/security/middleware"
	"github.com/yourorg/servicetracker/internal/security/ratelimit"
	"github.com/yourorg/servicetracker/internal/service"
	"github.com/yourorg/servicetracker/pkg/cache"
)

// TestServerHelper runs the full API stack against in-memory repositories:
// real handlers, real middleware chain, local identity mode.
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger

	Users      *memory.UserRepository
	Businesses *memory.BusinessRepository
	Customers  *memory.CustomerRepository
	Services   *memory.ServiceRepository

	Tokens *identity.TokenManager
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := logger.NewLogger("error")

	users := memory.NewUserRepository()
	businesses := memory.NewBusinessRepository(users)
	customers := memory.NewCustomerRepository()
	services := memory.NewServiceRepository(customers)
	credentials := memory.NewCredentialRepository()

	tokens := identity.NewTokenManager("test-secret", "servicetracker")
	verifier := identity.NewJWTVerifier(tokens)

	resolver := service.NewTenantResolver(verifier, users, businesses, cache.New(), log)
	ticketService := service.NewTicketService(services, nil, false, log)
	customerRegistry := service.NewCustomerRegistry(customers, services, nil, log)
	dashboardService := service.NewDashboardService(services, nil, time.Second, log)
	onboardingService := service.NewOnboardingService(businesses, users, log)
	authService := service.NewAuthService(credentials, tokens, time.Hour, log)

	rateLimiter := ratelimit.NewLimiter(1000, time.Minute)
	auditLogger := audit.NewLogger(log)

	serviceHandler := handler.NewServiceHandler(ticketService, log)
	customerHandler := handler.NewCustomerHandler(customerRegistry, ticketService, security.NewAuthorizationService(log), log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	userHandler := handler.NewUserHandler(onboardingService, log)
	authHandler := handler.NewAuthHandler(authService, rateLimiter, log)
	healthHandler := handler.NewHealthHandler(nil, nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/services/create", serviceHandler.Create)
	mux.HandleFunc("PATCH /api/services/{id}", serviceHandler.UpdateStatus)
	mux.HandleFunc("GET /api/services/{id}/updates", serviceHandler.Updates)
	mux.HandleFunc("GET /api/customers", customerHandler.List)
	mux.HandleFunc("POST /api/customers/create", customerHandler.Create)
	mux.HandleFunc("PATCH /api/customers/{id}", customerHandler.Update)
	mux.HandleFunc("DELETE /api/customers/{id}", customerHandler.Delete)
	mux.HandleFunc("GET /api/dashboard", dashboardHandler.Load)
	mux.HandleFunc("GET /api/user/business", userHandler.GetBusiness)
	mux.HandleFunc("POST /api/user/business", userHandler.Onboard)
	mux.HandleFunc("GET /api/user/check", userHandler.Check)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	root := middleware.ValidateJSONContentType(log)(
		middleware.AuthMiddleware(resolver, log)(
			middleware.RateLimitMiddleware(rateLimiter, log)(
				middleware.AuditMiddleware(auditLogger)(mux),
			),
		),
	)

	return &TestServerHelper{
		Server:     httptest.NewServer(root),
		Logger:     log,
		Users:      users,
		Businesses: businesses,
		Customers:  customers,
		Services:   services,
		Tokens:     tokens,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// Do sends a JSON request with an optional bearer token.
func (h *TestServerHelper) Do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.URL()+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// Signup registers a local identity and returns its bearer token.
func (h *TestServerHelper) Signup(t *testing.T, email, name string) string {
	t.Helper()

	resp := h.Do(t, "POST", "/api/auth/signup", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "Password123",
	})
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	var result struct {
		Token string `json:"token"`
	}
	DecodeJSON(t, resp, &result)
	if result.Token == "" {
		t.Fatalf("signup returned no token")
	}
	return result.Token
}

// SignupAndOnboard registers an identity and creates its business, returning
// the bearer token.
func (h *TestServerHelper) SignupAndOnboard(t *testing.T, email, businessName string) string {
	t.Helper()

	token := h.Signup(t, email, "")
	resp := h.Do(t, "POST", "/api/user/business", token, map[string]string{
		"businessName": businessName,
	})
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)
	return token
}

func DecodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, body)
	}
}

// Seed helpers for tests that bypass the HTTP surface.

func (h *TestServerHelper) SeedBusiness(t *testing.T, id, name, subdomain string) *domain.Business {
	t.Helper()
	b := &domain.Business{ID: id, Name: name, Subdomain: subdomain, Plan: "starter"}
	if err := h.Businesses.Create(b); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return b
}
