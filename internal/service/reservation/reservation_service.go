package reservation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/rmfarias/fleetreserve/internal/kafka"
	"github.com/rmfarias/fleetreserve/internal/repository"
	"github.com/rmfarias/fleetreserve/internal/storage"
)

type ReservationUseCase interface {
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	CheckAvailability(ctx context.Context, vehicleID int64, pickupAt, expectedReturnAt time.Time, excludeID int64) (bool, error)
	Reschedule(ctx context.Context, id int64, pickupAt, expectedReturnAt time.Time) (*domain.Reservation, error)
	RegisterReturn(ctx context.Context, input RegisterReturnInput) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	NotifyOverdue(ctx context.Context) ([]domain.Reservation, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateReservationInput struct {
	VehicleID        int64     `json:"vehicle_id"`
	Requester        string    `json:"requester"`
	Email            string    `json:"email"`
	Department       string    `json:"department"`
	PickupAt         time.Time `json:"pickup_at"`
	ExpectedReturnAt time.Time `json:"expected_return_at"`
}

type RegisterReturnInput struct {
	ReservationID  int64
	Odometer       int64
	ParkedLocation string
	ImageName      string
	Image          io.Reader
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	vehicles           repository.VehicleRepository
	store              storage.EvidenceStore
	producer           Producer
	reservationTopic   string
	notificationsTopic string
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	vehicles repository.VehicleRepository,
	store storage.EvidenceStore,
	producer Producer,
	reservationTopic string,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations:     reservations,
		vehicles:         vehicles,
		store:            store,
		producer:         producer,
		reservationTopic: reservationTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func validateWindow(pickupAt, expectedReturnAt time.Time) error {
	if pickupAt.IsZero() || expectedReturnAt.IsZero() {
		return domain.NewValidationError("pickup_at and expected_return_at are required")
	}
	if !pickupAt.Before(expectedReturnAt) {
		return domain.NewValidationError("pickup_at must be before expected_return_at")
	}
	return nil
}

func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if input.VehicleID <= 0 {
		return nil, domain.NewValidationError("vehicle_id is required")
	}
	if input.Requester == "" || input.Email == "" || input.Department == "" {
		return nil, domain.NewValidationError("requester, email and department are required")
	}
	if err := validateWindow(input.PickupAt, input.ExpectedReturnAt); err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		VehicleID:        input.VehicleID,
		Requester:        input.Requester,
		Email:            input.Email,
		Department:       input.Department,
		PickupAt:         input.PickupAt,
		ExpectedReturnAt: input.ExpectedReturnAt,
	}

	if err := s.reservations.CreateReserved(ctx, res); err != nil {
		return nil, err
	}

	s.publish(ctx, "reservation_created", res)
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, filter)
}

// CheckAvailability is the read-only probe behind the availability endpoint.
// The insert transaction re-checks in SQL, so a stale answer here can never
// double-book a vehicle.
func (s *ReservationService) CheckAvailability(ctx context.Context, vehicleID int64, pickupAt, expectedReturnAt time.Time, excludeID int64) (bool, error) {
	if err := validateWindow(pickupAt, expectedReturnAt); err != nil {
		return false, err
	}
	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return false, err
	}

	active, err := s.reservations.ListActiveByVehicle(ctx, vehicleID, excludeID)
	if err != nil {
		return false, err
	}
	for _, other := range active {
		if other.OverlapsWindow(pickupAt, expectedReturnAt) {
			return false, nil
		}
	}
	return true, nil
}

func (s *ReservationService) Reschedule(ctx context.Context, id int64, pickupAt, expectedReturnAt time.Time) (*domain.Reservation, error) {
	if err := validateWindow(pickupAt, expectedReturnAt); err != nil {
		return nil, err
	}
	return s.reservations.UpdateWindow(ctx, id, pickupAt, expectedReturnAt)
}

func (s *ReservationService) RegisterReturn(ctx context.Context, input RegisterReturnInput) (*domain.Reservation, error) {
	if input.Odometer < 0 {
		return nil, domain.NewValidationError("odometer reading must not be negative")
	}
	if input.ParkedLocation == "" {
		return nil, domain.NewValidationError("parked_location is required")
	}
	if input.Image == nil {
		return nil, domain.NewValidationError("evidence image is required")
	}

	ref, err := s.store.Save(ctx, input.ImageName, input.Image)
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.RegisterReturn(ctx, input.ReservationID, input.Odometer, input.ParkedLocation, ref, time.Now().UTC())
	if err != nil {
		// the reservation transaction rolled back, drop the orphaned image
		_ = s.store.Remove(ctx, ref)
		return nil, err
	}

	s.publish(ctx, "reservation_returned", res)
	return res, nil
}

func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "reservation_deleted", res)
	return nil
}

// NotifyOverdue publishes a reminder for every reservation past its expected
// return. Status is never touched: overdue is derived, not persisted.
func (s *ReservationService) NotifyOverdue(ctx context.Context) ([]domain.Reservation, error) {
	overdue, err := s.reservations.List(ctx, domain.ReservationFilter{OverdueOnly: true})
	if err != nil {
		return nil, err
	}
	for i := range overdue {
		s.publish(ctx, "reservation_overdue", &overdue[i])
	}
	return overdue, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *domain.Reservation) {
	if s.producer == nil || s.reservationTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:             eventType,
		ReservationID:    res.ID,
		VehicleID:        res.VehicleID,
		Requester:        res.Requester,
		Email:            res.Email,
		PickupAt:         res.PickupAt,
		ExpectedReturnAt: res.ExpectedReturnAt,
		ActualReturnAt:   res.ActualReturnAt,
		Status:           string(res.Status),
	}
	key := fmt.Sprintf("reservation-%d", res.ID)
	if err := s.producer.Publish(ctx, s.reservationTopic, key, event); err != nil {
		fmt.Printf("WARNING: failed to publish %s event for reservation %d: %v\n", eventType, res.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			fmt.Printf("WARNING: failed to publish %s notification for reservation %d: %v\n", eventType, res.ID, err)
		}
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
