package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

// AvailabilityService computes which time slots of a day are still
// bookable for a service. It is a pure read-then-compute pass over a
// snapshot of reservation and block rows; it performs no locking and
// never mutates data. The confirmation write path re-checks overlap
// under the store's own concurrency control.
type AvailabilityService struct {
	repo *database.ReservationRepository

	operatingStart int // minutes since midnight
	operatingEnd   int
	granularity    int // minutes
	gracePeriod    time.Duration

	logger *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	repo *database.ReservationRepository,
	cfg config.AvailabilityConfig,
	logger *logrus.Logger,
) (*AvailabilityService, error) {
	start, err := models.ParseClock(cfg.OperatingStart)
	if err != nil {
		return nil, fmt.Errorf("invalid operating start: %w", err)
	}
	end, err := models.ParseClock(cfg.OperatingEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid operating end: %w", err)
	}
	granularity := int(cfg.SlotGranularity.Minutes())
	if granularity <= 0 || start >= end {
		return nil, fmt.Errorf("invalid operating window %s-%s / %v", cfg.OperatingStart, cfg.OperatingEnd, cfg.SlotGranularity)
	}

	return &AvailabilityService{
		repo:           repo,
		operatingStart: start,
		operatingEnd:   end,
		granularity:    granularity,
		gracePeriod:    cfg.GracePeriod,
		logger:         logger,
	}, nil
}

// ComputeAvailability merges occupying reservations and manual blocks
// for one service/date into the definitive slot picture.
//
// Block rows are a secondary signal: when their query fails the result
// degrades to reservations only instead of failing the whole request.
func (s *AvailabilityService) ComputeAvailability(serviceID uuid.UUID, date string) (*models.Availability, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errs.New(errs.KindValidation, "date must be YYYY-MM-DD")
	}

	reservations, err := s.repo.GetOccupyingReservations(serviceID, date)
	if err != nil {
		return nil, err
	}

	blocks, err := s.repo.GetBlockedTimes(serviceID, date)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service_id": serviceID,
			"date":       date,
		}).Warn("Blocked time query failed, degrading to reservations only")
		blocks = nil
	}

	occupied := s.buildIntervals(reservations, blocks)
	slots := s.generateSlots(occupied)

	return &models.Availability{
		ServiceID:    serviceID,
		Date:         date,
		Occupied:     occupied,
		Slots:        slots,
		Reservations: reservations,
		BlockedTimes: blocks,
	}, nil
}

// buildIntervals converts rows into half-open [start, end) intervals,
// skipping rows with malformed times rather than failing the day.
func (s *AvailabilityService) buildIntervals(reservations []models.Reservation, blocks []models.BlockedTime) []models.Interval {
	intervals := make([]models.Interval, 0, len(reservations)+len(blocks))

	for _, res := range reservations {
		start, err := models.ParseClock(res.StartTime)
		if err != nil {
			s.logger.WithError(err).WithField("reservation_id", res.ID).Warn("Skipping reservation with malformed start time")
			continue
		}
		end, err := models.ParseClock(res.EndTime)
		if err != nil {
			s.logger.WithError(err).WithField("reservation_id", res.ID).Warn("Skipping reservation with malformed end time")
			continue
		}
		intervals = append(intervals, models.Interval{Start: start, End: end, Source: models.OccupiedByReservation})
	}

	for _, block := range blocks {
		start, err := models.ParseClock(block.StartTime)
		if err != nil {
			s.logger.WithError(err).WithField("block_id", block.ID).Warn("Skipping block with malformed start time")
			continue
		}
		end, err := models.ParseClock(block.EndTime)
		if err != nil {
			s.logger.WithError(err).WithField("block_id", block.ID).Warn("Skipping block with malformed end time")
			continue
		}
		intervals = append(intervals, models.Interval{Start: start, End: end, Source: models.OccupiedByBlock})
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	return intervals
}

// endOfDay is the fixed terminal boundary in minutes since midnight.
const endOfDay = 24 * 60

// generateSlots walks the operating window in granularity steps,
// inclusive of the configured end, and appends the fixed 24:00
// end-of-day boundary slot explicitly.
func (s *AvailabilityService) generateSlots(occupied []models.Interval) []models.TimeSlot {
	var slots []models.TimeSlot
	for at := s.operatingStart; at <= s.operatingEnd && at < endOfDay; at += s.granularity {
		slots = append(slots, models.TimeSlot{
			Time:   models.FormatClock(at),
			Status: slotStatusAt(at, occupied),
		})
	}
	slots = append(slots, models.TimeSlot{
		Time:   models.FormatClock(endOfDay),
		Status: slotStatusAt(endOfDay, occupied),
	})
	return slots
}

// slotStatusAt reports a slot's status from its start instant. Interval
// membership is half-open: a slot exactly at an interval's end is free.
// Reserved and blocked are both just "occupied"; the source is carried
// as metadata with no priority between the two.
func slotStatusAt(minute int, occupied []models.Interval) models.SlotStatus {
	for _, iv := range occupied {
		if minute >= iv.Start && minute < iv.End {
			if iv.Source == models.OccupiedByBlock {
				return models.SlotBlocked
			}
			return models.SlotReserved
		}
	}
	return models.SlotAvailable
}

// IsOverlapping reports whether [candidateStart, candidateEnd) overlaps
// any existing interval. Equality at a shared boundary is not overlap.
func IsOverlapping(candidateStart, candidateEnd int, existing []models.Interval) bool {
	for _, iv := range existing {
		if candidateStart < iv.End && candidateEnd > iv.Start {
			return true
		}
	}
	return false
}

// IsConsecutive reports whether adding newSlotStart to the selected
// slot starts still forms a gap-free run at the service's granularity.
func (s *AvailabilityService) IsConsecutive(selectedSlotStarts []string, newSlotStart string) bool {
	starts := make([]int, 0, len(selectedSlotStarts)+1)
	for _, label := range append(append([]string{}, selectedSlotStarts...), newSlotStart) {
		minute, err := models.ParseClock(label)
		if err != nil {
			return false
		}
		starts = append(starts, minute)
	}
	sort.Ints(starts)

	for i := 1; i < len(starts); i++ {
		if starts[i]-starts[i-1] != s.granularity {
			return false
		}
	}
	return true
}

// CheckBookable validates a proposed [start, end) range against the
// current snapshot for the service/date. The guarantee is correctness
// against this snapshot only, not against concurrent writers.
func (s *AvailabilityService) CheckBookable(serviceID uuid.UUID, date, startTime, endTime string) error {
	start, err := models.ParseClock(startTime)
	if err != nil {
		return errs.New(errs.KindValidation, "invalid start time")
	}
	end, err := models.ParseClock(endTime)
	if err != nil {
		return errs.New(errs.KindValidation, "invalid end time")
	}
	if start >= end {
		return errs.New(errs.KindValidation, "start time must be before end time")
	}
	if start < s.operatingStart || end > s.operatingEnd {
		return errs.New(errs.KindValidation, "time range is outside operating hours")
	}

	availability, err := s.ComputeAvailability(serviceID, date)
	if err != nil {
		return err
	}
	if IsOverlapping(start, end, availability.Occupied) {
		return errs.New(errs.KindValidation, "time range overlaps an existing reservation or block")
	}
	return nil
}

// RemainingGraceMinutes returns how many whole minutes of the extension
// grace window remain after a reservation's scheduled end, clamped at
// zero once the window has elapsed.
func (s *AvailabilityService) RemainingGraceMinutes(reservationEnd, now time.Time) int {
	deadline := reservationEnd.Add(s.gracePeriod)
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Minutes())
}
