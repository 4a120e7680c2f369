package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

var reservationColumns = []string{
	"id", "service_id", "reservation_date", "start_time", "end_time",
	"status", "total_price", "created_at",
}

var blockColumns = []string{
	"id", "service_id", "blocked_date", "start_time", "end_time", "reason", "created_at",
}

func testAvailabilityService(t *testing.T, db *mockDatabase) *AvailabilityService {
	t.Helper()
	repo := database.NewReservationRepository(db)
	service, err := NewAvailabilityService(repo, config.AvailabilityConfig{
		OperatingStart:  "06:00",
		OperatingEnd:    "24:00",
		SlotGranularity: 30 * time.Minute,
		GracePeriod:     10 * time.Minute,
	}, testLogger())
	require.NoError(t, err)
	return service
}

func TestNewAvailabilityService(t *testing.T) {
	repo := database.NewReservationRepository(nil)

	t.Run("Invalid Operating Hours", func(t *testing.T) {
		_, err := NewAvailabilityService(repo, config.AvailabilityConfig{
			OperatingStart:  "26:00",
			OperatingEnd:    "24:00",
			SlotGranularity: 30 * time.Minute,
		}, testLogger())
		assert.Error(t, err)
	})

	t.Run("Inverted Window", func(t *testing.T) {
		_, err := NewAvailabilityService(repo, config.AvailabilityConfig{
			OperatingStart:  "22:00",
			OperatingEnd:    "06:00",
			SlotGranularity: 30 * time.Minute,
		}, testLogger())
		assert.Error(t, err)
	})
}

func TestComputeAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := testAvailabilityService(t, &mockDatabase{db: db})
	serviceID := uuid.New()
	date := "2026-03-01"

	t.Run("Slot Generation And Occupancy", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(reservationColumns).
				AddRow(uuid.New(), serviceID, date, "10:00", "11:00", "confirmed", int64(44000), now))
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(blockColumns).
				AddRow(uuid.New(), serviceID, date, "12:00", "13:00", "maintenance", now))

		availability, err := service.ComputeAvailability(serviceID, date)
		require.NoError(t, err)

		slots := availability.Slots
		require.NotEmpty(t, slots)

		// Walked window plus the explicit terminal boundary slot.
		assert.Equal(t, "06:00", slots[0].Time)
		assert.Equal(t, "23:30", slots[len(slots)-2].Time)
		assert.Equal(t, "24:00", slots[len(slots)-1].Time)
		assert.Len(t, slots, 37)

		byTime := make(map[string]models.SlotStatus)
		for _, slot := range slots {
			byTime[slot.Time] = slot.Status
		}

		// Half-open occupancy: the slot at an interval's end is free.
		assert.Equal(t, models.SlotReserved, byTime["10:00"])
		assert.Equal(t, models.SlotReserved, byTime["10:30"])
		assert.Equal(t, models.SlotAvailable, byTime["11:00"])
		assert.Equal(t, models.SlotBlocked, byTime["12:00"])
		assert.Equal(t, models.SlotBlocked, byTime["12:30"])
		assert.Equal(t, models.SlotAvailable, byTime["13:00"])
		assert.Equal(t, models.SlotAvailable, byTime["24:00"])

		require.Len(t, availability.Occupied, 2)
		assert.Equal(t, models.OccupiedByReservation, availability.Occupied[0].Source)
		assert.Equal(t, models.OccupiedByBlock, availability.Occupied[1].Source)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Block Query Failure Degrades Gracefully", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(reservationColumns).
				AddRow(uuid.New(), serviceID, date, "10:00", "11:00", "pending", int64(44000), now))
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, date).
			WillReturnError(fmt.Errorf("timeout"))

		availability, err := service.ComputeAvailability(serviceID, date)
		require.NoError(t, err)
		assert.Len(t, availability.Reservations, 1)
		assert.Empty(t, availability.BlockedTimes)
		assert.Len(t, availability.Occupied, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reservation Query Failure Propagates", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnError(fmt.Errorf("connection refused"))

		availability, err := service.ComputeAvailability(serviceID, date)
		require.Error(t, err)
		assert.Nil(t, availability)
		assert.Equal(t, errs.KindStorage, errs.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Date", func(t *testing.T) {
		_, err := service.ComputeAvailability(serviceID, "03/01/2026")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("Malformed Row Is Skipped", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(reservationColumns).
				AddRow(uuid.New(), serviceID, date, "not-a-time", "11:00", "confirmed", int64(0), now).
				AddRow(uuid.New(), serviceID, date, "14:00", "15:00", "confirmed", int64(0), now))
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(blockColumns))

		availability, err := service.ComputeAvailability(serviceID, date)
		require.NoError(t, err)
		require.Len(t, availability.Occupied, 1)
		assert.Equal(t, 14*60, availability.Occupied[0].Start)
	})
}

func TestGenerateSlotsEarlyClose(t *testing.T) {
	// An operating end before midnight is walked inclusively; the
	// terminal slot stays the fixed 24:00 boundary.
	repo := database.NewReservationRepository(nil)
	service, err := NewAvailabilityService(repo, config.AvailabilityConfig{
		OperatingStart:  "06:00",
		OperatingEnd:    "23:30",
		SlotGranularity: 30 * time.Minute,
		GracePeriod:     10 * time.Minute,
	}, testLogger())
	require.NoError(t, err)

	slots := service.generateSlots(nil)
	require.Len(t, slots, 37)
	assert.Equal(t, "06:00", slots[0].Time)
	assert.Equal(t, "23:00", slots[len(slots)-3].Time)
	assert.Equal(t, "23:30", slots[len(slots)-2].Time)
	assert.Equal(t, "24:00", slots[len(slots)-1].Time)
}

func TestIsOverlapping(t *testing.T) {
	// Reservation occupying [10:00, 11:00)
	existing := []models.Interval{{Start: 600, End: 660, Source: models.OccupiedByReservation}}

	t.Run("Adjacent Before Is Not Overlap", func(t *testing.T) {
		assert.False(t, IsOverlapping(570, 600, existing)) // [09:30, 10:00)
	})

	t.Run("Adjacent After Is Not Overlap", func(t *testing.T) {
		assert.False(t, IsOverlapping(660, 720, existing)) // [11:00, 12:00)
	})

	t.Run("Partial Overlap", func(t *testing.T) {
		assert.True(t, IsOverlapping(630, 690, existing)) // [10:30, 11:30)
	})

	t.Run("Fully Containing", func(t *testing.T) {
		assert.True(t, IsOverlapping(540, 720, existing)) // [09:00, 12:00)
	})

	t.Run("Fully Contained", func(t *testing.T) {
		assert.True(t, IsOverlapping(615, 645, existing))
	})

	t.Run("No Existing Intervals", func(t *testing.T) {
		assert.False(t, IsOverlapping(600, 660, nil))
	})
}

func TestIsConsecutive(t *testing.T) {
	service := testAvailabilityService(t, nil)

	t.Run("Gap Free Run", func(t *testing.T) {
		assert.True(t, service.IsConsecutive([]string{"09:00", "09:30"}, "10:00"))
	})

	t.Run("Unsorted Input", func(t *testing.T) {
		assert.True(t, service.IsConsecutive([]string{"10:00", "09:00"}, "09:30"))
	})

	t.Run("Gap", func(t *testing.T) {
		assert.False(t, service.IsConsecutive([]string{"09:00"}, "10:00"))
	})

	t.Run("Duplicate Slot", func(t *testing.T) {
		assert.False(t, service.IsConsecutive([]string{"09:00"}, "09:00"))
	})

	t.Run("First Slot", func(t *testing.T) {
		assert.True(t, service.IsConsecutive(nil, "09:00"))
	})

	t.Run("Malformed Label", func(t *testing.T) {
		assert.False(t, service.IsConsecutive([]string{"09:00"}, "9am"))
	})
}

func TestCheckBookable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := testAvailabilityService(t, &mockDatabase{db: db})
	serviceID := uuid.New()
	date := "2026-03-01"

	t.Run("Free Range", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(reservationColumns))
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(blockColumns))

		assert.NoError(t, service.CheckBookable(serviceID, date, "10:00", "12:00"))
	})

	t.Run("Overlapping Range", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reservations").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(reservationColumns).
				AddRow(uuid.New(), serviceID, date, "10:00", "11:00", "confirmed", int64(0), now))
		mock.ExpectQuery("SELECT (.+) FROM blocked_times").
			WithArgs(serviceID, date).
			WillReturnRows(sqlmock.NewRows(blockColumns))

		err := service.CheckBookable(serviceID, date, "10:30", "11:30")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("Outside Operating Hours", func(t *testing.T) {
		err := service.CheckBookable(serviceID, date, "05:00", "07:00")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("Inverted Range", func(t *testing.T) {
		err := service.CheckBookable(serviceID, date, "12:00", "10:00")
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestRemainingGraceMinutes(t *testing.T) {
	service := testAvailabilityService(t, nil)
	end := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	t.Run("Within Grace Window", func(t *testing.T) {
		assert.Equal(t, 10, service.RemainingGraceMinutes(end, end))
		assert.Equal(t, 7, service.RemainingGraceMinutes(end, end.Add(3*time.Minute)))
	})

	t.Run("Window Elapsed", func(t *testing.T) {
		assert.Equal(t, 0, service.RemainingGraceMinutes(end, end.Add(10*time.Minute)))
		assert.Equal(t, 0, service.RemainingGraceMinutes(end, end.Add(time.Hour)))
	})
}
