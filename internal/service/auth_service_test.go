package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateEdges(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTokens(ctx context.Context, id uuid.UUID, tokens model.StringList) error {
	args := m.Called(ctx, id, tokens)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) SearchByName(ctx context.Context, name string) ([]model.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockLedger is a mock implementation of auth.Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Issue(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockLedger) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockLedger) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedger) IsValid(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) Tokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository, *MockLedger)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Name: "Test User", Email: "Test@Example.com ", Password: "password123", Age: 30},
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				l.On("Issue", mock.Anything, mock.AnythingOfType("*model.User")).Return("token-1", nil)
			},
		},
		{
			name:  "email already registered",
			input: RegisterInput{Name: "Existing", Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "lost race on unique index",
			input: RegisterInput{Name: "Racer", Email: "racer@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "racer@example.com").Return(nil, apperrors.ErrUserNotFound).Once()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(errors.New("duplicate key"))
				m.On("FindByEmail", mock.Anything, "racer@example.com").Return(&model.User{Email: "racer@example.com"}, nil).Once()
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:          "negative age",
			input:         RegisterInput{Name: "Kid", Email: "kid@example.com", Password: "password123", Age: -1},
			setupMock:     func(m *MockUserRepository, l *MockLedger) {},
			expectedError: apperrors.ErrInvalidAge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockLedger := new(MockLedger)
			tt.setupMock(mockRepo, mockLedger)
			rec := &events.Recorder{}

			service := NewAuthService(mockRepo, mockLedger, rec)
			user, token, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
				assert.Empty(t, rec.Events())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "token-1", token)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, "Test User", user.Name)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
				assert.Equal(t, []events.Type{events.UserRegistered}, rec.Types())
			}

			mockRepo.AssertExpectations(t)
			mockLedger.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	existing := &model.User{ID: uuid.New(), Email: "test@example.com", PasswordHash: string(hashedPassword)}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockLedger)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
				l.On("Issue", mock.Anything, existing).Return("token-2", nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockLedger := new(MockLedger)
			tt.setupMock(mockRepo, mockLedger)

			service := NewAuthService(mockRepo, mockLedger, nil)
			user, token, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "token-2", token)
				assert.Equal(t, existing.ID, user.ID)
			}

			mockRepo.AssertExpectations(t)
			mockLedger.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockLedger)
		expectedError error
	}{
		{
			name: "live session",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				l.On("IsValid", mock.Anything, userID, "tok").Return(true, nil)
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
			},
		},
		{
			name: "revoked session",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				l.On("IsValid", mock.Anything, userID, "tok").Return(false, nil)
			},
			expectedError: apperrors.ErrSessionRevoked,
		},
		{
			name: "user deleted",
			setupMock: func(m *MockUserRepository, l *MockLedger) {
				l.On("IsValid", mock.Anything, userID, "tok").Return(true, nil)
				m.On("FindByID", mock.Anything, userID).Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrSessionRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockLedger := new(MockLedger)
			tt.setupMock(mockRepo, mockLedger)

			service := NewAuthService(mockRepo, mockLedger, nil)
			user, err := service.Authenticate(context.Background(), userID, "tok")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, userID, user.ID)
			}

			mockLedger.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	userID := uuid.New()
	mockLedger := new(MockLedger)
	mockLedger.On("Revoke", mock.Anything, userID, "tok").Return(nil)
	mockLedger.On("RevokeAll", mock.Anything, userID).Return(nil)

	service := NewAuthService(new(MockUserRepository), mockLedger, nil)
	assert.NoError(t, service.Logout(context.Background(), userID, "tok"))
	assert.NoError(t, service.LogoutAll(context.Background(), userID))

	mockLedger.AssertExpectations(t)
}
