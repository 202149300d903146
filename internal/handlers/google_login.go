package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/oauth"
)

// GoogleLoginer defines the interface that the federated login service must
// implement for Google.
type GoogleLoginer interface {
	LoginWithGoogle(ctx context.Context, idToken string) (string, error)
}

// GoogleLoginRequest represents the JSON body for Google sign-in
// swagger:model GoogleLoginRequest
type GoogleLoginRequest struct {
	// Google-issued ID token
	// required: true
	IDToken string `json:"idToken"`
}

// GoogleLoginResponse represents a successful federated login response
// swagger:model GoogleLoginResponse
type GoogleLoginResponse struct {
	// JWT token
	// default: JWT_TOKEN
	Token string `json:"token"`
}

// GoogleLoginErrorResponse represents an error response for Google sign-in
// swagger:model GoogleLoginErrorResponse
type GoogleLoginErrorResponse struct {
	// Error message
	// default: Invalid token.
	Error string `json:"error"`
}

// NewGoogleLoginHandler returns an HTTP handler for Google sign-in.
// @Summary Login with a Google ID token
// @Description Verifies the token signature against Google's published keys and the audience claim, provisions a local account on first login, and returns a JWT token. All verification failures yield the same response.
// @Tags auth
// @Accept json
// @Produce json
// @Param googleLoginRequest body handlers.GoogleLoginRequest true "Google login request"
// @Success 200 {object} handlers.GoogleLoginResponse "JWT token returned"
// @Failure 401 {object} handlers.GoogleLoginErrorResponse "Invalid token"
// @Router /google-login [post]
func NewGoogleLoginHandler(svc GoogleLoginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GoogleLoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(GoogleLoginErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		token, err := svc.LoginWithGoogle(r.Context(), req.IDToken)
		if err != nil {
			switch {
			case errors.Is(err, oauth.ErrInvalidToken):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(GoogleLoginErrorResponse{
					Error: "Invalid token.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(GoogleLoginErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(GoogleLoginResponse{
			Token: token,
		})
	}
}
