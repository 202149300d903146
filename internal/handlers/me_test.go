package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/questly/auth-service/internal/jwt"
	"github.com/questly/auth-service/internal/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeHandler(t *testing.T) {
	jwtSvc := jwt.New(jwt.WithSecretKey("test-secret"))

	userID := uuid.New()
	token, err := jwtSvc.Generate(context.Background(), jwt.Claims{
		UserID:   userID,
		Username: "john_doe",
		Email:    "john@example.com",
	})
	require.NoError(t, err)

	handler := middlewares.AuthMiddleware(jwtSvc)(NewMeHandler())

	tests := []struct {
		name         string
		authHeader   string
		expectedCode int
	}{
		{
			name:         "valid token",
			authHeader:   "Bearer " + token,
			expectedCode: http.StatusOK,
		},
		{
			name:         "missing header",
			authHeader:   "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "malformed token",
			authHeader:   "Bearer not-a-jwt",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			if tt.expectedCode == http.StatusOK {
				var resp MeResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, userID.String(), resp.ID)
				assert.Equal(t, "john_doe", resp.Username)
				assert.Equal(t, "john@example.com", resp.Email)
			}
		})
	}
}

func TestMeHandler_NoClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)

	NewMeHandler()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
