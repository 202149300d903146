package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/questly/auth-service/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestVerifyCodeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockCodeVerifier(ctrl)

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name:      "valid code",
			inputBody: VerifyCodeRequest{Email: "john@example.com", Code: "123456"},
			mockSetup: func() {
				mockSvc.EXPECT().
					VerifyCode(gomock.Any(), "john@example.com", "123456").
					Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &VerifyCodeResponse{
				Message: "Code is valid.",
			},
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: &VerifyCodeErrorResponse{
				Error: "Email and code are required.",
			},
		},
		{
			name:      "missing fields",
			inputBody: VerifyCodeRequest{Email: "john@example.com"},
			mockSetup: func() {
				mockSvc.EXPECT().
					VerifyCode(gomock.Any(), "john@example.com", "").
					Return(services.ErrFieldsRequired)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: &VerifyCodeErrorResponse{
				Error: "Email and code are required.",
			},
		},
		{
			name:      "wrong code",
			inputBody: VerifyCodeRequest{Email: "john@example.com", Code: "654321"},
			mockSetup: func() {
				mockSvc.EXPECT().
					VerifyCode(gomock.Any(), "john@example.com", "654321").
					Return(services.ErrInvalidResetCode)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: &VerifyCodeErrorResponse{
				Error: "Invalid email or code.",
			},
		},
		{
			name:      "expired code",
			inputBody: VerifyCodeRequest{Email: "john@example.com", Code: "123456"},
			mockSetup: func() {
				mockSvc.EXPECT().
					VerifyCode(gomock.Any(), "john@example.com", "123456").
					Return(services.ErrResetCodeExpired)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: &VerifyCodeErrorResponse{
				Error: "Code has expired. Please request a new one.",
			},
		},
		{
			name:      "internal error",
			inputBody: VerifyCodeRequest{Email: "john@example.com", Code: "123456"},
			mockSetup: func() {
				mockSvc.EXPECT().
					VerifyCode(gomock.Any(), "john@example.com", "123456").
					Return(errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &VerifyCodeErrorResponse{
				Error: "Internal server error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			body, _ := json.Marshal(tt.inputBody)
			req := httptest.NewRequest(http.MethodPost, "/verify-code", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			NewVerifyCodeHandler(mockSvc)(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			expected, _ := json.Marshal(tt.expectedBody)
			assert.JSONEq(t, string(expected), rec.Body.String())
		})
	}
}
