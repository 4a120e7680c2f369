package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

// StagingRepository persists staged bookings keyed by session id.
// All operations are single-row; no transactions are needed here.
type StagingRepository struct {
	db DB
}

// NewStagingRepository creates a new StagingRepository
func NewStagingRepository(db DB) *StagingRepository {
	return &StagingRepository{db: db}
}

// Put inserts a new staged booking. The session_id unique constraint is
// defense-in-depth only; the generator's entropy makes collisions
// negligible, so Put does not pre-check for them.
func (r *StagingRepository) Put(record *models.StagedBooking) error {
	query := `
		INSERT INTO staging_bookings (
			session_id, encrypted_data, data_hash, expires_at, created_at,
			user_agent, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		record.SessionID, record.EncryptedData, record.DataHash,
		record.ExpiresAt, record.CreatedAt,
		record.UserAgent, record.IPAddress,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errs.Wrap(errs.KindStorage, "session id already staged", err)
		}
		return errs.Wrap(errs.KindStorage, "failed to store staged booking", err)
	}
	return nil
}

// Get returns the staged booking for a session id, or nil when no row
// matches. Absence is not an error.
func (r *StagingRepository) Get(sessionID string) (*models.StagedBooking, error) {
	query := `
		SELECT session_id, encrypted_data, data_hash, expires_at, created_at,
		       user_agent, ip_address
		FROM staging_bookings
		WHERE session_id = $1`

	var record models.StagedBooking
	var userAgent, ipAddress sql.NullString

	err := r.db.QueryRow(query, sessionID).Scan(
		&record.SessionID, &record.EncryptedData, &record.DataHash,
		&record.ExpiresAt, &record.CreatedAt,
		&userAgent, &ipAddress,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to load staged booking", err)
	}

	if userAgent.Valid {
		record.UserAgent = &userAgent.String
	}
	if ipAddress.Valid {
		record.IPAddress = &ipAddress.String
	}
	return &record, nil
}

// Delete removes the staged booking for a session id. Deleting a
// non-existent id is not an error.
func (r *StagingRepository) Delete(sessionID string) error {
	query := `DELETE FROM staging_bookings WHERE session_id = $1`
	if _, err := r.db.Exec(query, sessionID); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to delete staged booking", err)
	}
	return nil
}

// DeleteExpired removes staged bookings past their TTL, up to limit
// rows per call. Used by the background cleanup sweeper; the read path
// already treats expired rows as absent.
func (r *StagingRepository) DeleteExpired(now time.Time, limit int) (int, error) {
	query := `
		DELETE FROM staging_bookings
		WHERE session_id IN (
			SELECT session_id FROM staging_bookings
			WHERE expires_at < $1
			LIMIT $2
		)`

	result, err := r.db.Exec(query, now, limit)
	if err != nil {
		return 0, errs.Wrap(errs.KindStorage, "failed to delete expired staged bookings", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
