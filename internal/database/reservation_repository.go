package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

// ReservationRepository reads the reservation and blocked-time rows the
// availability engine consumes, and owns the operator block write path.
// Reservation lifecycle itself is owned by the confirmation flow.
type ReservationRepository struct {
	db DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// GetOccupyingReservations returns reservations for a service/date
// whose status makes the time range unavailable. Cancelled and rejected
// rows are excluded.
func (r *ReservationRepository) GetOccupyingReservations(serviceID uuid.UUID, date string) ([]models.Reservation, error) {
	query := `
		SELECT id, service_id, reservation_date, start_time, end_time,
		       status, total_price, created_at
		FROM reservations
		WHERE service_id = $1
		  AND reservation_date = $2
		  AND status IN ('pending', 'confirmed', 'modified')
		ORDER BY start_time`

	rows, err := r.db.Query(query, serviceID, date)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to query reservations", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(
			&res.ID, &res.ServiceID, &res.ReservationDate, &res.StartTime,
			&res.EndTime, &res.Status, &res.TotalPrice, &res.CreatedAt,
		); err != nil {
			return nil, errs.Wrap(errs.KindStorage, "failed to scan reservation", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to read reservations", err)
	}
	return reservations, nil
}

// GetBlockedTimes returns the manual operator blocks for a service/date.
func (r *ReservationRepository) GetBlockedTimes(serviceID uuid.UUID, date string) ([]models.BlockedTime, error) {
	query := `
		SELECT id, service_id, blocked_date, start_time, end_time, reason, created_at
		FROM blocked_times
		WHERE service_id = $1 AND blocked_date = $2
		ORDER BY start_time`

	rows, err := r.db.Query(query, serviceID, date)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to query blocked times", err)
	}
	defer rows.Close()

	var blocks []models.BlockedTime
	for rows.Next() {
		var block models.BlockedTime
		var reason sql.NullString
		if err := rows.Scan(
			&block.ID, &block.ServiceID, &block.BlockedDate,
			&block.StartTime, &block.EndTime, &reason, &block.CreatedAt,
		); err != nil {
			return nil, errs.Wrap(errs.KindStorage, "failed to scan blocked time", err)
		}
		if reason.Valid {
			block.Reason = &reason.String
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to read blocked times", err)
	}
	return blocks, nil
}

// CreateBlockedTime inserts a manual operator block.
func (r *ReservationRepository) CreateBlockedTime(block *models.BlockedTime) error {
	block.ID = uuid.New()
	block.CreatedAt = time.Now()

	query := `
		INSERT INTO blocked_times (
			id, service_id, blocked_date, start_time, end_time, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		block.ID, block.ServiceID, block.BlockedDate,
		block.StartTime, block.EndTime, block.Reason, block.CreatedAt,
	)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to create blocked time", err)
	}
	return nil
}

// DeleteBlockedTime removes a block by id. Idempotent.
func (r *ReservationRepository) DeleteBlockedTime(id uuid.UUID) error {
	query := `DELETE FROM blocked_times WHERE id = $1`
	if _, err := r.db.Exec(query, id); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to delete blocked time", err)
	}
	return nil
}
