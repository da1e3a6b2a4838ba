package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/auth"
	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Avatar   string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (user *model.User, token string, err error)
	Login(ctx context.Context, email, password string) (user *model.User, token string, err error)
	Logout(ctx context.Context, userID uuid.UUID, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	Authenticate(ctx context.Context, userID uuid.UUID, token string) (*model.User, error)
}

type authService struct {
	users     repository.UserRepository
	ledger    auth.Ledger
	publisher events.Publisher
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, ledger auth.Ledger, publisher events.Publisher) AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &authService{
		users:     users,
		ledger:    ledger,
		publisher: publisher,
	}
}

// Register creates a user with a hashed password and opens its first session.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if input.Age < 0 {
		return nil, "", apperrors.ErrInvalidAge
	}
	email := model.NormalizeEmail(input.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Age:          input.Age,
		Avatar:       input.Avatar,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// lost a race on the unique email index
		if taken, findErr := s.users.FindByEmail(ctx, email); findErr == nil && taken != nil {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.ledger.Issue(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.UserRegistered, user.ID, user.ID))
	return user, token, nil
}

// Login verifies credentials and opens a new session, evicting the oldest one at the cap.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.ledger.Issue(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Logout revokes a single session. Revoking an unknown token succeeds.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return s.ledger.Revoke(ctx, userID, token)
}

// LogoutAll revokes every session of the user.
func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.ledger.RevokeAll(ctx, userID)
}

// Authenticate checks that token is still in the user's ledger and loads the user.
func (s *authService) Authenticate(ctx context.Context, userID uuid.UUID, token string) (*model.User, error) {
	ok, err := s.ledger.IsValid(ctx, userID, token)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrSessionRevoked
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrSessionRevoked
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
