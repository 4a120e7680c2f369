package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
)

func testRateLimitService(db *mockDatabase) *RateLimitService {
	repo := database.NewRateLimitRepository(db)
	return NewRateLimitService(repo, config.RateLimitConfig{
		MaxRequests: 3,
		Window:      10 * time.Minute,
	})
}

func TestCheckAndRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := testRateLimitService(&mockDatabase{db: db})

	t.Run("Under Limit", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM staging_rate_limits").
			WithArgs("203.0.113.7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(2, time.Now()))
		mock.ExpectExec("INSERT INTO staging_rate_limits").
			WithArgs("203.0.113.7").
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, service.CheckAndRecord("203.0.113.7"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Over Limit", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM staging_rate_limits").
			WithArgs("203.0.113.7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(3, time.Now()))

		err := service.CheckAndRecord("203.0.113.7")
		require.Error(t, err)
		assert.Equal(t, errs.KindRateLimited, errs.KindOf(err))

		// The retry instant travels as a typed error for the
		// Retry-After header.
		var rlErr *RateLimitError
		require.ErrorAs(t, err, &rlErr)
		assert.True(t, rlErr.RetryAfter.After(time.Now()))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Identifier Is Skipped", func(t *testing.T) {
		// No queries expected.
		assert.NoError(t, service.CheckAndRecord(""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStagingCleanupRunOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	service := NewStagingCleanupService(
		database.NewStagingRepository(mockDB),
		database.NewRateLimitRepository(mockDB),
		time.Minute,
		testLogger(),
	)

	mock.ExpectExec("DELETE FROM staging_bookings").
		WithArgs(sqlmock.AnyArg(), cleanupBatchSize).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM staging_rate_limits").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))

	service.RunOnce()
	assert.NoError(t, mock.ExpectationsWereMet())
}
