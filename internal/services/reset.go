package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrInvalidResetCode = errors.New("invalid email or code")
	ErrResetCodeExpired = errors.New("code has expired")
)

// resetCodeTTL is how long an issued reset code stays valid.
const resetCodeTTL = 15 * time.Minute

// Notifier delivers a reset code to the user, typically by email through an
// external worker.
type Notifier interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// ResetService drives the password-reset lifecycle: code issuance,
// verification, and consumption.
type ResetService struct {
	reader   UserReader
	writer   UserWriter
	notifier Notifier
}

// NewResetService creates a new ResetService instance.
func NewResetService(reader UserReader, writer UserWriter, notifier Notifier) *ResetService {
	return &ResetService{
		reader:   reader,
		writer:   writer,
		notifier: notifier,
	}
}

// RequestReset issues a new 6-digit reset code for the given email and hands
// it to the notifier. When the email matches no user the call still succeeds,
// so the response never reveals whether an account exists. Issuing a new code
// while one is pending supersedes the old one. Notifier failures are logged
// and swallowed for the same reason.
func (svc *ResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrFieldsRequired
	}

	email = strings.ToLower(email)

	user, err := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		logger.Log.Infow("password reset requested for unknown email")
		return nil
	}

	code, err := generateResetCode()
	if err != nil {
		logger.Log.Errorw("failed to generate reset code", "err", err)
		return err
	}
	expires := time.Now().Add(resetCodeTTL)

	if err := svc.writer.SetResetCode(ctx, user.UserID, code, expires); err != nil {
		logger.Log.Errorw("failed to store reset code", "err", err)
		return err
	}

	if err := svc.notifier.SendResetCode(ctx, user.Email, code); err != nil {
		// Delivery problems must not change the response the caller sees.
		logger.Log.Errorw("failed to send reset code", "user_id", user.UserID, "err", err)
	}

	return nil
}

// VerifyCode checks a pending reset code for the given email. A missing
// user, absent code, or mismatched code all report ErrInvalidResetCode.
// Expiry is only checked after the code matches, so a wrong code against an
// expired request does not reveal the expiry state.
func (svc *ResetService) VerifyCode(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return ErrFieldsRequired
	}

	_, err := svc.matchResetCode(ctx, email, code)
	return err
}

// CompleteReset consumes a valid reset code: the new password is hashed with
// a fresh salt and the code and expiry are cleared in the same update. The
// match and expiry checks are re-run here even if VerifyCode already passed.
func (svc *ResetService) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return ErrFieldsRequired
	}

	user, err := svc.matchResetCode(ctx, email, code)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.UpdatePassword(ctx, user.UserID, string(hashedPassword)); err != nil {
		logger.Log.Errorw("failed to update password", "user_id", user.UserID, "err", err)
		return err
	}

	return nil
}

// matchResetCode looks up the user and validates the code against the
// pending reset. The code comparison is an exact string compare to preserve
// leading digits.
func (svc *ResetService) matchResetCode(ctx context.Context, email, code string) (*models.UserDB, error) {
	email = strings.ToLower(email)

	user, err := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil || user.PasswordResetCode == nil || user.PasswordResetExpires == nil {
		return nil, ErrInvalidResetCode
	}

	if *user.PasswordResetCode != code {
		return nil, ErrInvalidResetCode
	}

	if time.Now().After(*user.PasswordResetExpires) {
		return nil, ErrResetCodeExpired
	}

	return user, nil
}

// generateResetCode returns a 6-digit code from a cryptographically secure
// source. The range [100000, 999999] rules out leading zeros, so the string
// form is always exactly six digits.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
