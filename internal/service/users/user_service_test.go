package users

import (
	"context"
	"testing"
	"time"

	"github.com/rmfarias/fleetreserve/internal/auth"
	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func testUser(t *testing.T, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &domain.User{
		ID:           1,
		Name:         "Ana Souza",
		Email:        "ana@example.com",
		Role:         domain.UserRoleUser,
		PasswordHash: string(hash),
		Active:       active,
	}
}

func newService(repo *MockUserRepository) *UserService {
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewUserService(repo, tokens)
}

func TestLogin(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := newService(mockRepo)
	user := testUser(t, "s3cret", true)

	mockRepo.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)

	token, got, err := service.Login(context.Background(), "ana@example.com", "s3cret")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.Email, got.Email)

	// the token must validate against the same manager
	claims, err := auth.NewManager("test-secret", time.Hour).Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestLogin_wrongPassword(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := newService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "ana@example.com").Return(testUser(t, "s3cret", true), nil)

	_, _, err := service.Login(context.Background(), "ana@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_unknownEmail(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := newService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, _, err := service.Login(context.Background(), "ghost@example.com", "whatever")

	// unknown email and wrong password are indistinguishable to the caller
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_inactiveUser(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := newService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "ana@example.com").Return(testUser(t, "s3cret", false), nil)

	_, _, err := service.Login(context.Background(), "ana@example.com", "s3cret")

	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestCreate(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := newService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@example.com" && u.Role == domain.UserRoleAdmin && u.Active &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil
	})).Return(nil)

	user, err := service.Create(context.Background(), CreateUserInput{
		Name:     "New User",
		Email:    "new@example.com",
		Role:     "admin",
		Password: "s3cret",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.UserRoleAdmin, user.Role)
	mockRepo.AssertExpectations(t)
}

func TestCreate_unknownRole(t *testing.T) {
	service := newService(&MockUserRepository{})

	_, err := service.Create(context.Background(), CreateUserInput{
		Name:     "New User",
		Email:    "new@example.com",
		Role:     "superuser",
		Password: "s3cret",
	})

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestChangePassword_tooShort(t *testing.T) {
	service := newService(&MockUserRepository{})

	err := service.ChangePassword(context.Background(), 1, "123")

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
