package vehicles

import (
	"context"

	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/rmfarias/fleetreserve/internal/repository"
)

type VehicleUseCase interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	Create(ctx context.Context, input VehicleInput) (*domain.Vehicle, error)
	Update(ctx context.Context, id int64, input VehicleInput) (*domain.Vehicle, error)
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	GetVehicles(ctx context.Context) ([]domain.Vehicle, error)
	SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error
	InvalidateVehicles(ctx context.Context) error
}

type VehicleInput struct {
	Name     string `json:"name"`
	Plate    string `json:"plate"`
	Odometer int64  `json:"odometer"`
	Active   bool   `json:"active"`
}

type VehicleService struct {
	repo  repository.VehicleRepository
	cache Cache
}

func NewVehicleService(repo repository.VehicleRepository, cache Cache) *VehicleService {
	return &VehicleService{repo: repo, cache: cache}
}

func (s *VehicleService) List(ctx context.Context, activeOnly bool) ([]domain.Vehicle, error) {
	// only the full catalog is cached
	if s.cache != nil && !activeOnly {
		if cached, err := s.cache.GetVehicles(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	vehicles, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && !activeOnly {
		_ = s.cache.SetVehicles(ctx, vehicles)
	}
	return vehicles, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*domain.Vehicle, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	v := &domain.Vehicle{
		Name:     input.Name,
		Plate:    input.Plate,
		Odometer: input.Odometer,
		Active:   input.Active,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *VehicleService) Update(ctx context.Context, id int64, input VehicleInput) (*domain.Vehicle, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Name = input.Name
	v.Plate = input.Plate
	v.Odometer = input.Odometer
	v.Active = input.Active

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *VehicleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *VehicleService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateVehicles(ctx)
	}
}

func validate(input VehicleInput) error {
	if input.Name == "" {
		return domain.NewValidationError("name is required")
	}
	if input.Odometer < 0 {
		return domain.NewValidationError("odometer must not be negative")
	}
	return nil
}

var _ VehicleUseCase = (*VehicleService)(nil)
