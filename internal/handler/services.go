package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/servicetracker/internal/service"
)

// CreateServiceRequest represents the request to create a service ticket
type CreateServiceRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Priority      string `json:"priority"`
}

// UpdateServiceStatusRequest represents a status change request
type UpdateServiceStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ServiceHandler handles service ticket endpoints
type ServiceHandler struct {
	tickets *service.TicketService
	logger  *slog.Logger
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(tickets *service.TicketService, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{tickets: tickets, logger: logger}
}

// Create handles POST /api/services/create
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	svc, err := h.tickets.Create(tc.User, service.CreateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Priority:      req.Priority,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("service created",
		slog.String("service_id", svc.ID),
		slog.String("business_id", tc.Business.ID),
	)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"service": toServiceDTO(svc),
	})
}

// UpdateStatus handles PATCH /api/services/{id}
func (h *ServiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	serviceID := r.PathValue("id")
	var req UpdateServiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	svc, err := h.tickets.UpdateStatus(tc.User, serviceID, req.Status, req.Notes)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("service status updated",
		slog.String("service_id", svc.ID),
		slog.String("status", svc.Status),
		slog.String("business_id", tc.Business.ID),
	)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"service": toServiceDTO(svc),
	})
}

// Updates handles GET /api/services/{id}/updates
func (h *ServiceHandler) Updates(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	updates, err := h.tickets.Updates(tc.User, r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"updates": toServiceUpdateDTOs(updates),
	})
}
