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

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name: "success with username",
			inputBody: LoginRequest{
				Login:    "john_doe",
				Password: "secret123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john_doe", "secret123").
					Return("JWT_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &LoginResponse{
				Token: "JWT_TOKEN",
			},
		},
		{
			name: "success with email",
			inputBody: LoginRequest{
				Login:    "john@example.com",
				Password: "secret123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john@example.com", "secret123").
					Return("JWT_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &LoginResponse{
				Token: "JWT_TOKEN",
			},
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: &LoginErrorResponse{
				Error: "invalid request body",
			},
		},
		{
			name: "missing fields",
			inputBody: LoginRequest{
				Login: "john_doe",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john_doe", "").
					Return("", services.ErrFieldsRequired)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: &LoginErrorResponse{
				Error: "Username/email and password are required.",
			},
		},
		{
			name: "invalid credentials",
			inputBody: LoginRequest{
				Login:    "wronguser",
				Password: "wrongpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "wronguser", "wrongpass").
					Return("", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: &LoginErrorResponse{
				Error: "Invalid credentials.",
			},
		},
		{
			name: "internal error",
			inputBody: LoginRequest{
				Login:    "john_doe",
				Password: "secret123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john_doe", "secret123").
					Return("", errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &LoginErrorResponse{
				Error: "Internal server error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			body, _ := json.Marshal(tt.inputBody)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			NewLoginHandler(mockSvc)(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			expected, _ := json.Marshal(tt.expectedBody)
			assert.JSONEq(t, string(expected), rec.Body.String())
		})
	}
}

// An unknown identifier and a wrong password must produce byte-identical
// responses.
func TestLoginHandler_IndistinguishableFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)

	run := func(login, password string) *httptest.ResponseRecorder {
		mockSvc.EXPECT().
			Login(gomock.Any(), login, password).
			Return("", services.ErrInvalidCredentials)

		body, _ := json.Marshal(LoginRequest{Login: login, Password: password})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		NewLoginHandler(mockSvc)(rec, req)
		return rec
	}

	unknownUser := run("ghost", "whatever")
	wrongPass := run("john_doe", "wrongpass")

	assert.Equal(t, unknownUser.Code, wrongPass.Code)
	assert.Equal(t, unknownUser.Body.String(), wrongPass.Body.String())
}
