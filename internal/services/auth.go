package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questly/auth-service/internal/jwt"
	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/models"
	"github.com/questly/auth-service/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
	GetByLogin(ctx context.Context, login string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash string) (*models.UserDB, error)
	SetResetCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// JWTGenerator defines an interface for generating session tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, claims jwt.Claims) (string, error)
}

// AuthService handles signup and local login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Signup registers a new user and returns its public view. Username and
// email are lower-cased before storage; uniqueness is enforced by the store,
// so a concurrent signup with the same identity loses with
// ErrUserAlreadyExists.
func (svc *AuthService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	username = strings.ToLower(username)
	email = strings.ToLower(email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, username, email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			logger.Log.Infow("signup conflict", "username", username)
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	return user.Public(), nil
}

// Login authenticates a user by username or email and returns a session
// token. An unknown identifier and a wrong password produce the same
// ErrInvalidCredentials so callers cannot probe which identifiers exist.
func (svc *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", ErrFieldsRequired
	}

	user, err := svc.reader.GetByLogin(ctx, login)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("login attempt for unknown identifier")
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "user_id", user.UserID)
		return "", ErrInvalidCredentials
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
