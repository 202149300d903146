package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/oauth"
)

// AppleLoginer defines the interface that the federated login service must
// implement for Apple.
type AppleLoginer interface {
	LoginWithApple(ctx context.Context, idToken, fullName string) (string, error)
}

// AppleLoginRequest represents the JSON body for Apple sign-in. The full
// name comes from the client because Apple only discloses it on the user's
// first authorization.
// swagger:model AppleLoginRequest
type AppleLoginRequest struct {
	// Apple-issued identity token
	// required: true
	IDToken string `json:"idToken"`

	// Display name, present only on first authorization
	FullName string `json:"fullName"`
}

// AppleLoginResponse represents a successful federated login response
// swagger:model AppleLoginResponse
type AppleLoginResponse struct {
	// JWT token
	// default: JWT_TOKEN
	Token string `json:"token"`
}

// AppleLoginErrorResponse represents an error response for Apple sign-in
// swagger:model AppleLoginErrorResponse
type AppleLoginErrorResponse struct {
	// Error message
	// default: Invalid token.
	Error string `json:"error"`
}

// NewAppleLoginHandler returns an HTTP handler for Apple sign-in.
// @Summary Login with an Apple identity token
// @Description Verifies the token against Apple's JSON Web Key Set, checking issuer and audience, provisions a local account on first login, and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param appleLoginRequest body handlers.AppleLoginRequest true "Apple login request"
// @Success 200 {object} handlers.AppleLoginResponse "JWT token returned"
// @Failure 401 {object} handlers.AppleLoginErrorResponse "Invalid token"
// @Failure 500 {object} handlers.AppleLoginErrorResponse "Internal server error"
// @Router /apple-login [post]
func NewAppleLoginHandler(svc AppleLoginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppleLoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(AppleLoginErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		token, err := svc.LoginWithApple(r.Context(), req.IDToken, req.FullName)
		if err != nil {
			switch {
			case errors.Is(err, oauth.ErrInvalidToken):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(AppleLoginErrorResponse{
					Error: "Invalid token.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(AppleLoginErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AppleLoginResponse{
			Token: token,
		})
	}
}
