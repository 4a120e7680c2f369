package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// STAGED BOOKING (pre-authentication reservation staging)
// ============================================================================

// StagedBooking is the persisted form of a pre-auth staged reservation.
// The encrypted payload and its integrity hash are written once at
// creation; updates replace the row, they never mutate it.
type StagedBooking struct {
	SessionID     string    `db:"session_id" json:"sessionId"`
	EncryptedData string    `db:"encrypted_data" json:"-"`
	DataHash      string    `db:"data_hash" json:"-"`
	ExpiresAt     time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	// Advisory client fingerprint, never used to gate access
	UserAgent *string `db:"user_agent" json:"-"`
	IPAddress *string `db:"ip_address" json:"-"`
}

// IsExpired reports whether the record is past its TTL at the given
// instant. Expired records are treated as absent by every reader.
func (s *StagedBooking) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PrivateReservationData is the sensitive portion of a booking form.
// It only ever reaches storage inside an encrypted envelope; the
// consent flag is public metadata but travels with the payload.
type PrivateReservationData struct {
	CustomerName    string `json:"customerName"`
	CompanyName     string `json:"companyName"`
	ShootingPurpose string `json:"shootingPurpose"`
	VehicleNumber   string `json:"vehicleNumber"`
	PrivacyAgreed   bool   `json:"privacyAgreed"`
}

// Serialize produces the canonical JSON form used for both encryption
// and integrity hashing. Struct field order makes the output stable.
func (p *PrivateReservationData) Serialize() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize private data: %w", err)
	}
	return string(raw), nil
}

// DeserializePrivateData parses the canonical JSON form back into
// PrivateReservationData.
func DeserializePrivateData(raw string) (*PrivateReservationData, error) {
	var data PrivateReservationData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to deserialize private data: %w", err)
	}
	return &data, nil
}

// PublicReservationData is the non-sensitive portion of a booking form.
// It is held client-side across the login redirect and never persisted
// by the staging service; it is accepted on stage only for validation.
type PublicReservationData struct {
	ServiceID    string     `json:"serviceId"`
	SelectedDate string     `json:"selectedDate"` // "2006-01-02"
	TimeRange    *TimeRange `json:"timeRange"`
	CapturedAt   time.Time  `json:"capturedAt"`
}

// TimeRange is a selected booking window within a day.
type TimeRange struct {
	Start           string `json:"start"` // "HH:MM"
	End             string `json:"end"`   // "HH:MM", "24:00" allowed
	DurationMinutes int    `json:"durationMinutes"`
	Price           int64  `json:"price"`
}

// ============================================================================
// STAGING REQUEST / RESPONSE DTOs
// ============================================================================

// StageRequest is the body of POST /api/v1/staging.
type StageRequest struct {
	PublicData  *PublicReservationData  `json:"publicData"`
	PrivateData *PrivateReservationData `json:"privateData"`
	ReturnURL   string                  `json:"returnUrl"`
}

// StageResponse is returned after a successful stage.
type StageResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	LoginURL  string    `json:"loginUrl"`
}

// RestoreRequest is the body of POST /api/v1/staging/restore.
type RestoreRequest struct {
	SessionID string `json:"sessionId"`
}

// RestoreResponse carries the decrypted private data back to the
// client, which recombines it with its still-held public data.
type RestoreResponse struct {
	PrivateData *PrivateReservationData `json:"privateData"`
	IsExpired   bool                    `json:"isExpired"`
}

// StagingStatus is the side-effect-free existence/expiry view used for
// lightweight UI polling.
type StagingStatus struct {
	Exists    bool       `json:"exists"`
	IsExpired bool       `json:"isExpired"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
