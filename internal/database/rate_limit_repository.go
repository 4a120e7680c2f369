package database

import (
	"database/sql"
	"time"

	"github.com/henryympark/pronto2-sub002/internal/errs"
)

// RateLimitRepository counts staging-create requests per identifier in
// a sliding window. The staging create endpoint is anonymous and writes
// rows, so it is the one surface that needs abuse protection.
type RateLimitRepository struct {
	db DB
}

// NewRateLimitRepository creates a new RateLimitRepository
func NewRateLimitRepository(db DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// CountSince returns the number of recorded requests for an identifier
// after windowStart, and the most recent request time.
func (r *RateLimitRepository) CountSince(identifier string, windowStart time.Time) (int, time.Time, error) {
	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM staging_rate_limits
		WHERE identifier = $1 AND created_at > $2`

	var count int
	var lastRequest time.Time
	err := r.db.QueryRow(query, identifier, windowStart).Scan(&count, &lastRequest)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, errs.Wrap(errs.KindStorage, "failed to count rate limit entries", err)
	}
	return count, lastRequest, nil
}

// Record stores one request for an identifier.
func (r *RateLimitRepository) Record(identifier string) error {
	query := `INSERT INTO staging_rate_limits (identifier, created_at) VALUES ($1, NOW())`
	if _, err := r.db.Exec(query, identifier); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to record rate limit entry", err)
	}
	return nil
}

// Prune deletes entries older than the cutoff. Called opportunistically
// by the cleanup sweeper to keep the table small.
func (r *RateLimitRepository) Prune(cutoff time.Time) (int, error) {
	query := `DELETE FROM staging_rate_limits WHERE created_at < $1`
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, errs.Wrap(errs.KindStorage, "failed to prune rate limit entries", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
