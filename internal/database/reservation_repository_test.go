package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

func TestGetOccupyingReservations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(&mockDatabase{db: db})
	serviceID := uuid.New()

	columns := []string{
		"id", "service_id", "reservation_date", "start_time", "end_time",
		"status", "total_price", "created_at",
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, "2026-03-01").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New(), serviceID, "2026-03-01", "10:00", "11:00", "confirmed", int64(44000), now).
				AddRow(uuid.New(), serviceID, "2026-03-01", "14:00", "15:30", "pending", int64(66000), now))

		reservations, err := repo.GetOccupyingReservations(serviceID, "2026-03-01")
		require.NoError(t, err)
		require.Len(t, reservations, 2)
		assert.Equal(t, "10:00", reservations[0].StartTime)
		assert.Equal(t, models.ReservationStatusConfirmed, reservations[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Day", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, "2026-03-02").
			WillReturnRows(sqlmock.NewRows(columns))

		reservations, err := repo.GetOccupyingReservations(serviceID, "2026-03-02")
		require.NoError(t, err)
		assert.Empty(t, reservations)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Backend Failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, "2026-03-01").
			WillReturnError(fmt.Errorf("connection refused"))

		reservations, err := repo.GetOccupyingReservations(serviceID, "2026-03-01")
		require.Error(t, err)
		assert.Nil(t, reservations)
		assert.Equal(t, errs.KindStorage, errs.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBlockedTimes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(&mockDatabase{db: db})
	serviceID := uuid.New()

	columns := []string{
		"id", "service_id", "blocked_date", "start_time", "end_time", "reason", "created_at",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, "2026-03-01").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New(), serviceID, "2026-03-01", "12:00", "13:00", "maintenance", time.Now()).
				AddRow(uuid.New(), serviceID, "2026-03-01", "20:00", "22:00", nil, time.Now()))

		blocks, err := repo.GetBlockedTimes(serviceID, "2026-03-01")
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		require.NotNil(t, blocks[0].Reason)
		assert.Equal(t, "maintenance", *blocks[0].Reason)
		assert.Nil(t, blocks[1].Reason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Backend Failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, "2026-03-01").
			WillReturnError(fmt.Errorf("timeout"))

		blocks, err := repo.GetBlockedTimes(serviceID, "2026-03-01")
		require.Error(t, err)
		assert.Nil(t, blocks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateBlockedTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(&mockDatabase{db: db})
	serviceID := uuid.New()
	reason := "equipment check"

	mock.ExpectExec("INSERT INTO blocked_times").
		WithArgs(sqlmock.AnyArg(), serviceID, "2026-03-01", "12:00", "13:00", &reason, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	block := &models.BlockedTime{
		ServiceID:   serviceID,
		BlockedDate: "2026-03-01",
		StartTime:   "12:00",
		EndTime:     "13:00",
		Reason:      &reason,
	}
	err = repo.CreateBlockedTime(block)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, block.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBlockedTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(&mockDatabase{db: db})
	id := uuid.New()

	mock.ExpectExec("DELETE FROM blocked_times").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Deleting a missing block is not an error.
	assert.NoError(t, repo.DeleteBlockedTime(id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
