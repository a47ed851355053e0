package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/servicetracker/internal/security"
	"github.com/yourorg/servicetracker/internal/service"
)

// CustomerRequest represents the create/update customer payload
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customers *service.CustomerRegistry
	tickets   *service.TicketService
	authz     *security.AuthorizationService
	logger    *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers *service.CustomerRegistry, tickets *service.TicketService, authz *security.AuthorizationService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, tickets: tickets, authz: authz, logger: logger}
}

// List handles GET /api/customers. The customer page renders customers with
// their service history, so both collections ship in one response.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	customers, err := h.customers.List(tc.User)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	services, err := h.tickets.List(tc.User)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"business": map[string]string{
			"name":      tc.Business.Name,
			"subdomain": tc.Business.Subdomain,
		},
		"customers": toCustomerDTOs(customers),
		"services":  toServiceDTOs(services),
	})
}

// Create handles POST /api/customers/create
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	customer, err := h.customers.Create(tc.User, service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("customer created",
		slog.String("customer_id", customer.ID),
		slog.String("business_id", tc.Business.ID),
	)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"customer": toCustomerDTO(customer),
	})
}

// Update handles PATCH /api/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	customer, err := h.customers.Update(tc.User, r.PathValue("id"), service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Customer updated successfully",
		"customer": toCustomerDTO(customer),
	})
}

// Delete handles DELETE /api/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	// Only admins may remove customers; technicians get a 403.
	if err := h.authz.ValidatePermission(tc.User.Role, security.PermDeleteCustomer); err != nil {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	if err := h.customers.Delete(tc.User, r.PathValue("id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("customer deleted",
		slog.String("customer_id", r.PathValue("id")),
		slog.String("business_id", tc.Business.ID),
	)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Customer deleted successfully",
	})
}
