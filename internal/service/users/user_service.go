package users

import (
	"context"
	"errors"

	"github.com/rmfarias/fleetreserve/internal/auth"
	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/rmfarias/fleetreserve/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type UserUseCase interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	ChangePassword(ctx context.Context, id int64, password string) error
}

type CreateUserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Password   string `json:"password"`
}

type UpdateUserInput struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type UserService struct {
	repo   repository.UserRepository
	tokens *auth.Manager
}

func NewUserService(repo repository.UserRepository, tokens *auth.Manager) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrInactiveUser
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, domain.NewValidationError("name, email and password are required")
	}
	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Department:   input.Department,
		Role:         role,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	if input.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = input.Name
	user.Department = input.Department
	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if len(password) < 6 {
		return domain.NewValidationError("password must have at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func parseRole(role string) (domain.UserRole, error) {
	switch role {
	case "", string(domain.UserRoleUser):
		return domain.UserRoleUser, nil
	case string(domain.UserRoleAdmin):
		return domain.UserRoleAdmin, nil
	default:
		return "", domain.NewValidationError("unknown role %q", role)
	}
}

var _ UserUseCase = (*UserService)(nil)
