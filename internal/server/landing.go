package server

import (
	"net/http"

	"github.com/felixgeelhaar/pmos/internal/auth"
	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/log"
)

// LandingResponse is the body of GET /api/session/landing.
type LandingResponse struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	LandingPath string `json:"landing_path"`
}

// landingHandler tells a signed-in client where its dashboard is. The gate
// has already rejected anonymous requests to this path.
func landingHandler(roles gate.RoleClassifier, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			gate.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		id := auth.FromContext(r.Context())
		if id == nil {
			gate.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		current, err := roles.Classify(r.Context(), id.UserID)
		if err != nil {
			logger.LogErrorContext(r.Context(), "landing lookup failed", err)
			gate.WriteError(w, http.StatusServiceUnavailable, "Service Unavailable")
			return
		}

		gate.WriteJSON(w, http.StatusOK, LandingResponse{
			UserID:      id.UserID,
			Role:        current.String(),
			LandingPath: roles.LandingForRole(current),
		})
	})
}
