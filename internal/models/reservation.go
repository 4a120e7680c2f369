package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// RESERVATION & BLOCKED TIME (read-only inputs to the availability engine)
// ============================================================================

// ReservationStatus represents the status of a reservation
// Matches PostgreSQL ENUM: reservation_status
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusModified  ReservationStatus = "modified"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// OccupyingStatuses are the reservation statuses that make a time range
// unavailable for new bookings.
var OccupyingStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusModified,
}

// Reservation is an existing booking row. The availability engine only
// reads these; their lifecycle is owned by the confirmation flow.
type Reservation struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	ServiceID       uuid.UUID         `db:"service_id" json:"serviceId"`
	ReservationDate string            `db:"reservation_date" json:"reservationDate"` // "2006-01-02"
	StartTime       string            `db:"start_time" json:"startTime"`             // "HH:MM"
	EndTime         string            `db:"end_time" json:"endTime"`                 // "HH:MM", "24:00" allowed
	Status          ReservationStatus `db:"status" json:"status"`
	TotalPrice      int64             `db:"total_price" json:"totalPrice"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
}

// BlockedTime is a manual operator block. Same occupancy semantics as a
// reservation, without a counterparty.
type BlockedTime struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ServiceID   uuid.UUID `db:"service_id" json:"serviceId"`
	BlockedDate string    `db:"blocked_date" json:"blockedDate"` // "2006-01-02"
	StartTime   string    `db:"start_time" json:"startTime"`
	EndTime     string    `db:"end_time" json:"endTime"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ============================================================================
// DERIVED AVAILABILITY TYPES (computed fresh per query, never persisted)
// ============================================================================

// SlotStatus represents the bookability of a single time slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotReserved  SlotStatus = "reserved"
	SlotBlocked   SlotStatus = "blocked"
)

// TimeSlot is one granularity-aligned slot of a day's schedule.
type TimeSlot struct {
	Time   string     `json:"time"` // "HH:MM" start-of-slot label
	Status SlotStatus `json:"status"`
}

// OccupancySource identifies why an interval is occupied.
type OccupancySource string

const (
	OccupiedByReservation OccupancySource = "reservation"
	OccupiedByBlock       OccupancySource = "block"
)

// Interval is a half-open occupied time range [Start, End) carrying its
// source as metadata. Reserved and blocked carry no priority order;
// both mean occupied.
type Interval struct {
	Start  int             `json:"start"` // minutes since midnight
	End    int             `json:"end"`
	Source OccupancySource `json:"source"`
}

// Availability is the full availability picture for one service/date.
type Availability struct {
	ServiceID    uuid.UUID     `json:"serviceId"`
	Date         string        `json:"date"`
	Occupied     []Interval    `json:"occupied"`
	Slots        []TimeSlot    `json:"slots"`
	Reservations []Reservation `json:"reservations"`
	BlockedTimes []BlockedTime `json:"blockedTimes"`
}

// CreateBlockedTimeRequest is the operator request to block a window.
type CreateBlockedTimeRequest struct {
	BlockedDate string  `json:"blockedDate" binding:"required"`
	StartTime   string  `json:"startTime" binding:"required"`
	EndTime     string  `json:"endTime" binding:"required"`
	Reason      *string `json:"reason,omitempty"`
}
