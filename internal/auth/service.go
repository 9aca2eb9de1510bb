package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"lagospaces/server/internal/database"
	"lagospaces/server/internal/forms"
	"lagospaces/server/internal/models"
)

// ErrInvalidCredentials carries the exact message shown on the login page
var ErrInvalidCredentials = errors.New("Invalid email or password. Try using demo@example.com and password123")

// UserStore is the subset of the database the auth service needs
type UserStore interface {
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
}

type Service struct {
	users       UserStore
	tokens      *JWTService
	loginDelay  time.Duration
	signupDelay time.Duration
	logger      *logrus.Logger
}

func NewService(users UserStore, tokens *JWTService, loginDelay, signupDelay time.Duration, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		loginDelay:  loginDelay,
		signupDelay: signupDelay,
		logger:      logger,
	}
}

func (s *Service) Tokens() *JWTService {
	return s.tokens
}

// Session is returned by a successful login
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login checks the credentials after the simulated round trip. Only active accounts can
// log in, and only the seeded demo account is active.
func (s *Service) Login(ctx context.Context, form forms.LoginForm) (*Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if err := sleep(ctx, s.loginDelay); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(form.Email)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.WithField("email", form.Email).Info("Login attempt for unknown account")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// The lookup ignores case so signup can spot duplicates; a login needs the exact address
	if user.Email != form.Email {
		s.logger.WithField("user_id", user.ID).Info("Rejected login with differently written email")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		s.logger.WithField("user_id", user.ID).Info("Rejected login")
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Signup registers an account. New accounts stay inactive until reviewed, so they cannot
// log in yet.
func (s *Service) Signup(ctx context.Context, form forms.SignupForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if err := sleep(ctx, s.signupDelay); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         form.FullName(),
		Email:        strings.ToLower(form.Email),
		PasswordHash: string(hash),
		IsActive:     false,
		JoinedAt:     time.Now().UTC(),
		NotificationPreferences: models.NotificationPreferences{
			Email: true,
			App:   true,
		},
		PrivacySettings: models.PrivacySettings{AllowMessaging: true},
	}

	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, forms.ValidationErrors{"email": "An account with this email already exists"}
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Logout revokes the presented token
func (s *Service) Logout(claims *Claims) {
	s.tokens.Revoke(claims)
	if claims != nil {
		s.logger.WithField("user_id", claims.Subject).Info("User logged out")
	}
}

// CurrentUser loads the user a token belongs to
func (s *Service) CurrentUser(claims *Claims) (*models.User, error) {
	return s.users.GetUser(claims.Subject)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
