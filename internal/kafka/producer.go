package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReservationEvent is the payload published for every lifecycle change.
type ReservationEvent struct {
	Type             string     `json:"type"`
	ReservationID    int64      `json:"reservation_id"`
	VehicleID        int64      `json:"vehicle_id"`
	Requester        string     `json:"requester"`
	Email            string     `json:"email"`
	PickupAt         time.Time  `json:"pickup_at"`
	ExpectedReturnAt time.Time  `json:"expected_return_at"`
	ActualReturnAt   *time.Time `json:"actual_return_at,omitempty"`
	Status           string     `json:"status"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
