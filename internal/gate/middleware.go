package gate

import (
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/pmos/internal/auth"
	"github.com/felixgeelhaar/pmos/internal/log"
)

// Headers set on requests the gate allows. Client-supplied values are
// always removed first.
const (
	UserIDHeader = "X-PMOS-User-ID"
	RoleHeader   = "X-PMOS-Role"
)

// ErrorResponse is the JSON body of rejected and failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Middleware enforces decisions in front of next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r.Context(), r)

		switch d.Action {
		case Allow:
			next.ServeHTTP(w, forward(r, d))
		case Reject:
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
		case Redirect:
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
		default:
			w.Header().Set("Retry-After", "5")
			WriteError(w, http.StatusServiceUnavailable, "Service Unavailable")
		}
	})
}

func forward(r *http.Request, d Decision) *http.Request {
	ctx := r.Context()
	if d.Identity != nil {
		ctx = auth.WithIdentity(ctx, d.Identity)
		ctx = log.ContextWithUserID(ctx, d.Identity.UserID)
	}

	out := r.Clone(ctx)
	out.Header.Del(UserIDHeader)
	out.Header.Del(RoleHeader)
	if d.Identity != nil {
		out.Header.Set(UserIDHeader, d.Identity.UserID)
	}
	if d.Role != "" {
		out.Header.Set(RoleHeader, d.Role.String())
	}
	return out
}

// WriteError writes {"error": message} with status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
