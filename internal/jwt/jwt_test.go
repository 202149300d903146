package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	want := Claims{
		UserID:   uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
	}
	ctx := context.Background()

	token, err := j.Generate(ctx, want)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Valid token should pass validation
	err = j.Validate(ctx, token)
	assert.NoError(t, err)

	// Extract claims
	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, want.UserID, claims.UserID)
	assert.Equal(t, want.Username, claims.Username)
	assert.Equal(t, want.Email, claims.Email)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(-time.Minute)) // already expired
	ctx := context.Background()

	token, err := j.Generate(ctx, Claims{UserID: uuid.New()})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validation should fail
	err = j.Validate(ctx, token)
	assert.Error(t, err)

	claims, err := j.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	// Totally invalid string
	err := j.Validate(ctx, "invalid.token.string")
	assert.Error(t, err)

	// Token signed with a different secret
	other := New(WithSecretKey("other-secret"))
	token, err := other.Generate(ctx, Claims{UserID: uuid.New()})
	assert.NoError(t, err)

	err = j.Validate(ctx, token)
	assert.Error(t, err)
}

func TestJWT_MissingSecret(t *testing.T) {
	j := New()

	_, err := j.Generate(context.Background(), Claims{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase bearer", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "malformed", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}
