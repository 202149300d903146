package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/questly/auth-service/internal/jwt"
	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/models"
	"github.com/questly/auth-service/internal/oauth"
	"github.com/questly/auth-service/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier validates an externally-issued identity token and extracts
// the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*oauth.Identity, error)
}

// OAuthService handles login through federated identity providers.
type OAuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
	google TokenVerifier
	apple  TokenVerifier
}

// NewOAuthService creates a new OAuthService instance.
func NewOAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, google, apple TokenVerifier) *OAuthService {
	return &OAuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
		google: google,
		apple:  apple,
	}
}

// LoginWithGoogle verifies a Google ID token and logs the asserted identity
// in, provisioning a local account on first sight.
func (svc *OAuthService) LoginWithGoogle(ctx context.Context, idToken string) (string, error) {
	identity, err := svc.google.Verify(ctx, idToken)
	if err != nil {
		return "", err
	}
	return svc.federatedLogin(ctx, identity.Email, identity.Name)
}

// LoginWithApple verifies an Apple ID token and logs the asserted identity
// in. Apple only reveals the user's name to the client on first
// authorization, so the display name arrives out-of-band and may be empty.
func (svc *OAuthService) LoginWithApple(ctx context.Context, idToken, fullName string) (string, error) {
	identity, err := svc.apple.Verify(ctx, idToken)
	if err != nil {
		return "", err
	}
	return svc.federatedLogin(ctx, identity.Email, fullName)
}

// federatedLogin resolves the account for a verified provider identity and
// issues a session token. An existing user with the same email is reused no
// matter how it was created; identities are merged by email.
func (svc *OAuthService) federatedLogin(ctx context.Context, email, displayName string) (string, error) {
	if email == "" {
		return "", oauth.ErrInvalidToken
	}

	email = strings.ToLower(email)

	user, err := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}

	if user == nil {
		user, err = svc.provision(ctx, email, displayName)
		if err != nil {
			return "", err
		}
	}

	token, err := svc.jwt.Generate(ctx, jwt.Claims{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}

// provision creates a local account for a federated identity. The password
// hash is derived from random bytes so no local login can ever match it.
func (svc *OAuthService) provision(ctx context.Context, email, displayName string) (*models.UserDB, error) {
	username := strings.ToLower(strings.TrimSpace(displayName))
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	username = strings.ReplaceAll(username, " ", "_")

	passwordHash, err := randomPasswordHash()
	if err != nil {
		logger.Log.Errorw("failed to create password hash", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, username, email, passwordHash)
	if !errors.Is(err, repositories.ErrUniqueViolation) {
		if err != nil {
			logger.Log.Errorw("failed to provision user", "err", err)
		}
		return user, err
	}

	// Either a concurrent federated login won the insert for this email, or
	// the username is taken by another account. Re-read by email first, then
	// retry once with a suffixed username.
	user, rerr := svc.reader.GetByUsernameOrEmail(ctx, nil, &email)
	if rerr != nil {
		logger.Log.Errorw("failed to get user", "err", rerr)
		return nil, rerr
	}
	if user != nil {
		return user, nil
	}

	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return nil, err
	}
	username = username + "-" + hex.EncodeToString(suffix)

	user, err = svc.writer.Save(ctx, username, email, passwordHash)
	if err != nil {
		logger.Log.Errorw("failed to provision user", "err", err)
		return nil, err
	}

	return user, nil
}

// randomPasswordHash returns a bcrypt hash over cryptographically random
// bytes, used for accounts that must never pass local password login.
func randomPasswordHash() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
