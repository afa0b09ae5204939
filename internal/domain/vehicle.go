package domain

import "time"

type Vehicle struct {
	ID        int64
	Name      string
	Plate     string
	Odometer  int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
