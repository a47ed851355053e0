package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/servicetracker/internal/security/middleware"
	"github.com/yourorg/servicetracker/internal/service"
)

// OnboardRequest represents the business onboarding payload
type OnboardRequest struct {
	BusinessName   string `json:"businessName"`
	BusinessType   string `json:"businessType"`
	TeamSize       string `json:"teamSize"`
	PrimaryGoal    string `json:"primaryGoal"`
	BrandPrimary   string `json:"brandPrimary"`
	BrandSecondary string `json:"brandSecondary"`
	UserName       string `json:"userName"`
}

// UserHandler handles the authenticated user's profile and onboarding
type UserHandler struct {
	onboarding *service.OnboardingService
	logger     *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(onboarding *service.OnboardingService, logger *slog.Logger) *UserHandler {
	return &UserHandler{onboarding: onboarding, logger: logger}
}

// GetBusiness handles GET /api/user/business
func (h *UserHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":     toUserDTO(tc.User),
		"business": toBusinessDTO(tc.Business),
	})
}

// Onboard handles POST /api/user/business. The caller is a verified identity
// that has no business yet; on success it becomes the ADMIN of a new one.
func (h *UserHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	tc := middleware.GetTenantContext(r.Context())
	if tc == nil || tc.Identity == nil {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	business, user, err := h.onboarding.Onboard(tc.Identity, service.OnboardInput{
		BusinessName:   req.BusinessName,
		BusinessType:   req.BusinessType,
		TeamSize:       req.TeamSize,
		PrimaryGoal:    req.PrimaryGoal,
		BrandPrimary:   req.BrandPrimary,
		BrandSecondary: req.BrandSecondary,
		UserName:       req.UserName,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("business onboarded",
		slog.String("business_id", business.ID),
		slog.String("subdomain", business.Subdomain),
		slog.String("user_id", user.ID),
	)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":     toUserDTO(user),
		"business": toBusinessDTO(business),
	})
}

// Check handles GET /api/user/check. It reports whether the verified
// identity already has a profile, without the 404 that scoped routes use.
func (h *UserHandler) Check(w http.ResponseWriter, r *http.Request) {
	tc := middleware.GetTenantContext(r.Context())
	if tc == nil || tc.Identity == nil {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exists": tc.User != nil,
		"user":   toUserDTO(tc.User),
		"authUser": map[string]string{
			"id":    tc.Identity.ID,
			"email": tc.Identity.Email,
		},
	})
}
