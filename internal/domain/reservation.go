package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "RESERVED"
	ReservationStatusReturned ReservationStatus = "RETURNED"
)

// ParseReservationStatus rejects anything outside the two known states,
// including legacy or lowercase values coming from old rows.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case ReservationStatusReserved, ReservationStatusReturned:
		return ReservationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
}

type Reservation struct {
	ID               int64
	VehicleID        int64
	Requester        string
	Email            string
	Department       string
	PickupAt         time.Time
	ExpectedReturnAt time.Time
	ActualReturnAt   *time.Time
	OdometerAtReturn *int64
	ParkedLocation   *string
	EvidenceImageRef *string
	Status           ReservationStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OverlapsWindow reports whether the reservation window intersects
// [pickupAt, expectedReturnAt). Windows are half-open, so a reservation
// ending exactly when another begins does not overlap.
func (r Reservation) OverlapsWindow(pickupAt, expectedReturnAt time.Time) bool {
	return pickupAt.Before(r.ExpectedReturnAt) && r.PickupAt.Before(expectedReturnAt)
}

// Overdue reports whether the vehicle should already have been returned.
// Overdue is derived, never persisted: the reservation stays RESERVED.
func (r Reservation) Overdue(now time.Time) bool {
	return r.Status == ReservationStatusReserved && r.ExpectedReturnAt.Before(now)
}

// ReservationFilter narrows List queries. Zero values mean "no filter".
type ReservationFilter struct {
	VehicleID   int64
	Email       string
	Status      ReservationStatus
	Date        *time.Time // windows covering any instant of that day
	OverdueOnly bool
}
