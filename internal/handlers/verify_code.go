package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/services"
)

// CodeVerifier defines the interface that the reset service must implement.
type CodeVerifier interface {
	VerifyCode(ctx context.Context, email, code string) error
}

// VerifyCodeRequest represents the JSON body for verifying a reset code
// swagger:model VerifyCodeRequest
type VerifyCodeRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// 6-digit reset code
	// required: true
	// default: "123456"
	Code string `json:"code"`
}

// VerifyCodeResponse represents a successful verification response
// swagger:model VerifyCodeResponse
type VerifyCodeResponse struct {
	// Success message
	// default: Code is valid.
	Message string `json:"message"`
}

// VerifyCodeErrorResponse represents an error response for verification
// swagger:model VerifyCodeErrorResponse
type VerifyCodeErrorResponse struct {
	// Error message
	// default: Invalid email or code.
	Error string `json:"error"`
}

// NewVerifyCodeHandler returns an HTTP handler for verifying a reset code.
// @Summary Verify a password reset code
// @Description Checks that the code matches the pending reset for the email and has not expired. A wrong code reports generically, without revealing expiry state.
// @Tags auth
// @Accept json
// @Produce json
// @Param verifyCodeRequest body handlers.VerifyCodeRequest true "Verify code request"
// @Success 200 {object} handlers.VerifyCodeResponse "Code is valid"
// @Failure 400 {object} handlers.VerifyCodeErrorResponse "Invalid or expired code"
// @Router /verify-code [post]
func NewVerifyCodeHandler(svc CodeVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyCodeRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(VerifyCodeErrorResponse{
				Error: "Email and code are required.",
			})
			return
		}

		if err := svc.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
			switch {
			case errors.Is(err, services.ErrFieldsRequired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(VerifyCodeErrorResponse{
					Error: "Email and code are required.",
				})
			case errors.Is(err, services.ErrInvalidResetCode):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(VerifyCodeErrorResponse{
					Error: "Invalid email or code.",
				})
			case errors.Is(err, services.ErrResetCodeExpired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(VerifyCodeErrorResponse{
					Error: "Code has expired. Please request a new one.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(VerifyCodeErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(VerifyCodeResponse{
			Message: "Code is valid.",
		})
	}
}
