package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/security/middleware"
	"github.com/yourorg/servicetracker/internal/service"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps a coded error to an HTTP status. Internal errors never
// leak their message to the client.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	msg := domain.ErrorMessage(err)

	var status int
	switch code {
	case domain.EUnauthorized:
		status = http.StatusUnauthorized
		msg = "Unauthorized"
	case domain.ETenantNotFound:
		status = http.StatusNotFound
		msg = "Business not found"
	case domain.EInvalid, domain.EConflict:
		status = http.StatusBadRequest
	case domain.ENotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		if logger != nil {
			logger.Error("internal error", slog.String("error", err.Error()))
		}
		msg = "Internal server error"
	}

	respondJSON(w, status, ErrorResponse{Error: msg})
}

// requireTenant returns the onboarded tenant context for the request, or
// writes the appropriate error and returns nil. A verified identity with no
// business resolves to 404 so the client knows to start onboarding.
func requireTenant(w http.ResponseWriter, r *http.Request) *service.TenantContext {
	tc := middleware.GetTenantContext(r.Context())
	if tc == nil {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil
	}
	if !tc.Onboarded() {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "Business not found"})
		return nil
	}
	return tc
}
