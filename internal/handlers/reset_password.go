package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/services"
)

// ResetCompleter defines the interface that the reset service must implement.
type ResetCompleter interface {
	CompleteReset(ctx context.Context, email, code, newPassword string) error
}

// ResetPasswordRequest represents the JSON body for completing a reset
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// 6-digit reset code
	// required: true
	// default: "123456"
	Code string `json:"code"`

	// New password
	// required: true
	// default: newsecret123
	NewPassword string `json:"newPassword"`
}

// ResetPasswordResponse represents a successful reset response
// swagger:model ResetPasswordResponse
type ResetPasswordResponse struct {
	// Success message
	// default: Password has been reset successfully.
	Message string `json:"message"`
}

// ResetPasswordErrorResponse represents an error response for a reset
// swagger:model ResetPasswordErrorResponse
type ResetPasswordErrorResponse struct {
	// Error message
	// default: Invalid email or code.
	Error string `json:"error"`
}

// NewResetPasswordHandler returns an HTTP handler for completing a password
// reset. The code checks are re-run even if verify-code already passed.
// @Summary Reset password with a valid code
// @Description Re-validates the code, stores a freshly salted hash of the new password, and clears the pending code atomically. A consumed code cannot be reused.
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body handlers.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} handlers.ResetPasswordResponse "Password reset"
// @Failure 400 {object} handlers.ResetPasswordErrorResponse "Invalid or expired code"
// @Router /reset-password [post]
func NewResetPasswordHandler(svc ResetCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
				Error: "Email, code, and new password are required.",
			})
			return
		}

		if err := svc.CompleteReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrFieldsRequired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Email, code, and new password are required.",
				})
			case errors.Is(err, services.ErrInvalidResetCode):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Invalid email or code.",
				})
			case errors.Is(err, services.ErrResetCodeExpired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Code has expired. Please request a new one.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ResetPasswordResponse{
			Message: "Password has been reset successfully.",
		})
	}
}
