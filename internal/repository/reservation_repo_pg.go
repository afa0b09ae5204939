package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rmfarias/fleetreserve/internal/domain"
)

type ReservationRepository interface {
	CreateReserved(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	ListActiveByVehicle(ctx context.Context, vehicleID, excludeID int64) ([]domain.Reservation, error)
	UpdateWindow(ctx context.Context, id int64, pickupAt, expectedReturnAt time.Time) (*domain.Reservation, error)
	RegisterReturn(ctx context.Context, id int64, odometer int64, parkedLocation, evidenceRef string, returnedAt time.Time) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, vehicle_id, requester, email, department, pickup_at, expected_return_at, actual_return_at, odometer_at_return, parked_location, evidence_image_ref, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var status string
	if err := row.Scan(&res.ID, &res.VehicleID, &res.Requester, &res.Email, &res.Department,
		&res.PickupAt, &res.ExpectedReturnAt, &res.ActualReturnAt, &res.OdometerAtReturn,
		&res.ParkedLocation, &res.EvidenceImageRef, &status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	res.Status = parsed
	return &res, nil
}

// CreateReserved inserts a new RESERVED reservation. The vehicle row is locked
// for the duration of the transaction, so two concurrent requests for the same
// vehicle cannot both pass the conflict check.
func (r *PGReservationRepository) CreateReserved(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var active bool
	if err := tx.QueryRow(ctx, `SELECT active FROM vehicles WHERE id=$1 FOR UPDATE`, res.VehicleID).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("vehicle %d: %w", res.VehicleID, domain.ErrNotFound)
		}
		return err
	}
	if !active {
		return domain.NewValidationError("vehicle %d is inactive", res.VehicleID)
	}

	if err := conflictingWindow(ctx, tx, res.VehicleID, res.PickupAt, res.ExpectedReturnAt, 0); err != nil {
		return err
	}

	res.Status = domain.ReservationStatusReserved
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (vehicle_id, requester, email, department, pickup_at, expected_return_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		res.VehicleID, res.Requester, res.Email, res.Department, res.PickupAt, res.ExpectedReturnAt, res.Status).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// conflictingWindow returns a *domain.ConflictError describing the first RESERVED
// reservation whose half-open window intersects [pickupAt, expectedReturnAt),
// or nil when the window is free. Must run inside the reserving transaction.
func conflictingWindow(ctx context.Context, tx pgx.Tx, vehicleID int64, pickupAt, expectedReturnAt time.Time, excludeID int64) error {
	var otherPickup, otherReturn time.Time
	err := tx.QueryRow(ctx, `SELECT pickup_at, expected_return_at FROM reservations
		WHERE vehicle_id=$1 AND status=$2 AND id <> $3
		AND $4 < expected_return_at AND pickup_at < $5
		LIMIT 1`,
		vehicleID, domain.ReservationStatusReserved, excludeID, pickupAt, expectedReturnAt).
		Scan(&otherPickup, &otherReturn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return &domain.ConflictError{VehicleID: vehicleID, PickupAt: otherPickup, ExpectedReturnAt: otherReturn}
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	res, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
	}
	return res, err
}

func (r *PGReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.VehicleID != 0 {
		conds = append(conds, "vehicle_id = "+arg(filter.VehicleID))
	}
	if filter.Email != "" {
		conds = append(conds, "email = "+arg(filter.Email))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		conds = append(conds, "pickup_at < "+arg(dayEnd))
		conds = append(conds, "expected_return_at > "+arg(dayStart))
	}
	if filter.OverdueOnly {
		conds = append(conds, "status = "+arg(domain.ReservationStatusReserved))
		conds = append(conds, "expected_return_at < now()")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY pickup_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *PGReservationRepository) ListActiveByVehicle(ctx context.Context, vehicleID, excludeID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE vehicle_id=$1 AND status=$2 AND id <> $3 ORDER BY pickup_at`,
		vehicleID, domain.ReservationStatusReserved, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

// UpdateWindow reschedules a RESERVED reservation, re-running the conflict
// check with the reservation itself excluded.
func (r *PGReservationRepository) UpdateWindow(ctx context.Context, id int64, pickupAt, expectedReturnAt time.Time) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var vehicleID int64
	var status string
	if err := tx.QueryRow(ctx, `SELECT vehicle_id, status FROM reservations WHERE id=$1 FOR UPDATE`, id).Scan(&vehicleID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	if domain.ReservationStatus(status) != domain.ReservationStatusReserved {
		return nil, domain.ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `SELECT id FROM vehicles WHERE id=$1 FOR UPDATE`, vehicleID); err != nil {
		return nil, err
	}
	if err := conflictingWindow(ctx, tx, vehicleID, pickupAt, expectedReturnAt, id); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `UPDATE reservations SET pickup_at=$2, expected_return_at=$3, updated_at=now()
		WHERE id=$1 RETURNING `+reservationColumns, id, pickupAt, expectedReturnAt)
	res, err := scanReservation(row)
	if err != nil {
		return nil, err
	}

	return res, tx.Commit(ctx)
}

// RegisterReturn flips a RESERVED reservation to RETURNED and writes the
// submitted odometer reading back to the vehicle. Both updates commit together
// or not at all.
func (r *PGReservationRepository) RegisterReturn(ctx context.Context, id int64, odometer int64, parkedLocation, evidenceRef string, returnedAt time.Time) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var vehicleID int64
	var status string
	if err := tx.QueryRow(ctx, `SELECT vehicle_id, status FROM reservations WHERE id=$1 FOR UPDATE`, id).Scan(&vehicleID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	if domain.ReservationStatus(status) != domain.ReservationStatusReserved {
		return nil, domain.ErrInvalidState
	}

	row := tx.QueryRow(ctx, `UPDATE reservations
		SET status=$2, actual_return_at=$3, odometer_at_return=$4, parked_location=$5, evidence_image_ref=$6, updated_at=now()
		WHERE id=$1 RETURNING `+reservationColumns,
		id, domain.ReservationStatusReturned, returnedAt, odometer, parkedLocation, evidenceRef)
	res, err := scanReservation(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE vehicles SET odometer=$2, updated_at=now() WHERE id=$1`, vehicleID, odometer); err != nil {
		return nil, err
	}

	return res, tx.Commit(ctx)
}

// Delete removes a reservation that has not been returned yet. Completed
// returns are history and stay forever.
func (r *PGReservationRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id=$1 FOR UPDATE`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
		}
		return err
	}
	if domain.ReservationStatus(status) != domain.ReservationStatusReserved {
		return domain.ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
