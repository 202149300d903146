package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/services"
)

// ResetRequester defines the interface that the reset service must implement.
type ResetRequester interface {
	RequestReset(ctx context.Context, email string) error
}

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If an account with that email exists, a password reset code has been sent."

// ForgotPasswordRequest represents the JSON body for requesting a reset code
// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ForgotPasswordResponse represents the generic success response
// swagger:model ForgotPasswordResponse
type ForgotPasswordResponse struct {
	// Generic message, identical for known and unknown emails
	// default: If an account with that email exists, a password reset code has been sent.
	Message string `json:"message"`
}

// ForgotPasswordErrorResponse represents an error response
// swagger:model ForgotPasswordErrorResponse
type ForgotPasswordErrorResponse struct {
	// Error message
	// default: Email is required.
	Error string `json:"error"`
}

// NewForgotPasswordHandler returns an HTTP handler for requesting a
// password-reset code. The response is byte-identical for registered and
// unregistered emails.
// @Summary Request a password reset code
// @Description Issues a 6-digit reset code valid for 15 minutes and sends it by email. The response does not reveal whether the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotPasswordRequest body handlers.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} handlers.ForgotPasswordResponse "Generic success message"
// @Failure 400 {object} handlers.ForgotPasswordErrorResponse "Missing email"
// @Router /forgot-password [post]
func NewForgotPasswordHandler(svc ResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ForgotPasswordErrorResponse{
				Error: "Email is required.",
			})
			return
		}

		if err := svc.RequestReset(r.Context(), req.Email); err != nil {
			switch {
			case errors.Is(err, services.ErrFieldsRequired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ForgotPasswordErrorResponse{
					Error: "Email is required.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ForgotPasswordErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ForgotPasswordResponse{
			Message: forgotPasswordMessage,
		})
	}
}
