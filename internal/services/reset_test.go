package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/questly/auth-service/internal/models"
	"github.com/questly/auth-service/internal/services"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestResetService_RequestReset_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	email := "ghost@example.com"
	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(nil, nil)

	// No code is generated and nothing is sent, but the call still succeeds.
	err := svc.RequestReset(context.Background(), email)
	assert.NoError(t, err)
}

func TestResetService_RequestReset_KnownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	userID := uuid.New()
	email := "alice@example.com"
	user := &models.UserDB{UserID: userID, Username: "alice", Email: email}

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(user, nil)

	var storedCode string
	before := time.Now()
	mockWriter.EXPECT().
		SetResetCode(gomock.Any(), userID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, code string, expires time.Time) error {
			assert.Regexp(t, sixDigits, code)
			// Expiry is fifteen minutes out.
			assert.WithinDuration(t, before.Add(15*time.Minute), expires, 5*time.Second)
			storedCode = code
			return nil
		})

	mockNotifier.EXPECT().
		SendResetCode(gomock.Any(), email, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, code string) error {
			// The notifier receives exactly the stored code.
			assert.Equal(t, storedCode, code)
			return nil
		})

	err := svc.RequestReset(context.Background(), email)
	assert.NoError(t, err)
}

func TestResetService_RequestReset_NotifierFailureSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	userID := uuid.New()
	email := "alice@example.com"

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(&models.UserDB{UserID: userID, Email: email}, nil)
	mockWriter.EXPECT().
		SetResetCode(gomock.Any(), userID, gomock.Any(), gomock.Any()).
		Return(nil)
	mockNotifier.EXPECT().
		SendResetCode(gomock.Any(), email, gomock.Any()).
		Return(errors.New("smtp relay down"))

	// Delivery failure must not surface to the caller.
	err := svc.RequestReset(context.Background(), email)
	assert.NoError(t, err)
}

func TestResetService_VerifyCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	code := "042137"
	wrong := "042138"
	future := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Second)

	tests := []struct {
		name    string
		email   string
		code    string
		user    *models.UserDB
		wantErr error
	}{
		{
			name:  "valid code before expiry",
			email: "alice@example.com",
			code:  code,
			user: &models.UserDB{
				UserID:               uuid.New(),
				PasswordResetCode:    &code,
				PasswordResetExpires: &future,
			},
		},
		{
			name:    "unknown user",
			email:   "ghost@example.com",
			code:    code,
			user:    nil,
			wantErr: services.ErrInvalidResetCode,
		},
		{
			name:    "no pending reset",
			email:   "alice@example.com",
			code:    code,
			user:    &models.UserDB{UserID: uuid.New()},
			wantErr: services.ErrInvalidResetCode,
		},
		{
			name:  "wrong code",
			email: "alice@example.com",
			code:  wrong,
			user: &models.UserDB{
				UserID:               uuid.New(),
				PasswordResetCode:    &code,
				PasswordResetExpires: &future,
			},
			wantErr: services.ErrInvalidResetCode,
		},
		{
			name:  "matching code past expiry",
			email: "alice@example.com",
			code:  code,
			user: &models.UserDB{
				UserID:               uuid.New(),
				PasswordResetCode:    &code,
				PasswordResetExpires: &past,
			},
			wantErr: services.ErrResetCodeExpired,
		},
		{
			// The expiry state must not leak when the code is wrong.
			name:  "wrong code past expiry reports invalid",
			email: "alice@example.com",
			code:  wrong,
			user: &models.UserDB{
				UserID:               uuid.New(),
				PasswordResetCode:    &code,
				PasswordResetExpires: &past,
			},
			wantErr: services.ErrInvalidResetCode,
		},
		{
			name:    "missing fields",
			email:   "",
			code:    code,
			wantErr: services.ErrFieldsRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.email != "" && tt.code != "" {
				mockReader.EXPECT().
					GetByUsernameOrEmail(gomock.Any(), nil, &tt.email).
					Return(tt.user, nil)
			}

			err := svc.VerifyCode(context.Background(), tt.email, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResetService_CompleteReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	userID := uuid.New()
	code := "123456"
	future := time.Now().Add(time.Minute)
	email := "alice@example.com"
	newPassword := "brand-new-pass"

	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(&models.UserDB{
			UserID:               userID,
			Email:                email,
			PasswordResetCode:    &code,
			PasswordResetExpires: &future,
		}, nil)

	mockWriter.EXPECT().
		UpdatePassword(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash string) error {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPassword)))
			return nil
		})

	err := svc.CompleteReset(context.Background(), email, code, newPassword)
	assert.NoError(t, err)

	// Once the fields are cleared, the same code no longer matches.
	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(&models.UserDB{UserID: userID, Email: email}, nil)

	err = svc.CompleteReset(context.Background(), email, code, newPassword)
	assert.ErrorIs(t, err, services.ErrInvalidResetCode)
}

func TestResetService_CompleteReset_ExpiredBetweenVerifyAndComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockNotifier := services.NewMockNotifier(ctrl)

	svc := services.NewResetService(mockReader, mockWriter, mockNotifier)

	code := "123456"
	past := time.Now().Add(-time.Second)
	email := "alice@example.com"

	// The code matched earlier but the window closed before completion.
	mockReader.EXPECT().
		GetByUsernameOrEmail(gomock.Any(), nil, &email).
		Return(&models.UserDB{
			UserID:               uuid.New(),
			Email:                email,
			PasswordResetCode:    &code,
			PasswordResetExpires: &past,
		}, nil)

	err := svc.CompleteReset(context.Background(), email, code, "newpass")
	assert.ErrorIs(t, err, services.ErrResetCodeExpired)
}
