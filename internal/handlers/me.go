package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/questly/auth-service/internal/middlewares"
)

// MeResponse represents the claims of the caller's session token
// swagger:model MeResponse
type MeResponse struct {
	// User ID
	ID string `json:"id"`

	// Username
	// default: john_doe
	Username string `json:"username"`

	// Email
	// default: john@example.com
	Email string `json:"email"`
}

// NewMeHandler returns an HTTP handler that echoes the verified claims of
// the caller's session token. Requires AuthMiddleware on the route.
// @Summary Current session
// @Description Returns the claims carried by the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.MeResponse "Token claims"
// @Failure 401 "Missing or invalid token"
// @Router /me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middlewares.GetClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MeResponse{
			ID:       claims.UserID.String(),
			Username: claims.Username,
			Email:    claims.Email,
		})
	}
}
