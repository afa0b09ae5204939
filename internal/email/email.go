package email

import (
	"context"
	"fmt"

	"github.com/rmfarias/fleetreserve/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	switch event.Type {
	case "reservation_overdue":
		fmt.Printf("send email to %s: vehicle %d was due back at %s\n",
			event.Email, event.VehicleID, event.ExpectedReturnAt)
	default:
		fmt.Printf("send email to %s about %s for vehicle %d (reservation %d)\n",
			event.Email, event.Type, event.VehicleID, event.ReservationID)
	}
	return nil
}
