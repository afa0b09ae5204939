package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rmfarias/fleetreserve/internal/domain"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Vehicle, error)
	Update(ctx context.Context, v *domain.Vehicle) error
	Delete(ctx context.Context, id int64) error
}

type PGVehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

const uniqueViolation = "23505"

func (r *PGVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `INSERT INTO vehicles (name, plate, odometer, active)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		v.Name, v.Plate, v.Odometer, v.Active).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.NewValidationError("a vehicle with plate %q already exists", v.Plate)
	}
	return err
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, plate, odometer, active, created_at, updated_at FROM vehicles WHERE id=$1`, id)
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.Name, &v.Plate, &v.Odometer, &v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGVehicleRepository) List(ctx context.Context, activeOnly bool) ([]domain.Vehicle, error) {
	query := `SELECT id, name, plate, odometer, active, created_at, updated_at FROM vehicles`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Plate, &v.Odometer, &v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *PGVehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `UPDATE vehicles SET name=$2, plate=$3, odometer=$4, active=$5, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		v.ID, v.Name, v.Plate, v.Odometer, v.Active).Scan(&v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("vehicle %d: %w", v.ID, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.NewValidationError("a vehicle with plate %q already exists", v.Plate)
	}
	return err
}

// Delete refuses while active reservations still reference the vehicle, so
// reservation history never loses its vehicle.
func (r *PGVehicleRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT id FROM vehicles WHERE id=$1 FOR UPDATE`, id); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM reservations WHERE vehicle_id=$1 AND status=$2`,
		id, domain.ReservationStatusReserved).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return domain.NewValidationError("vehicle %d still has %d active reservations", id, count)
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %d: %w", id, domain.ErrNotFound)
	}
	return tx.Commit(ctx)
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
