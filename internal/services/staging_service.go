package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
	"github.com/henryympark/pronto2-sub002/pkg/envelope"
	"github.com/henryympark/pronto2-sub002/pkg/token"
)

// ClientFingerprint is advisory request metadata stored with a staged
// booking. It is never used to gate access.
type ClientFingerprint struct {
	UserAgent string
	IPAddress string
}

// StagingService orchestrates the pre-authentication staging lifecycle:
// an anonymous visitor's private form data is encrypted, parked under an
// opaque session id with a fixed TTL, and handed back after login.
//
// Per session id the lifecycle is Created -> {Restored, Expired,
// Deleted}. Restore is non-consuming: the row stays until the caller
// discards it or the TTL removes it.
type StagingService struct {
	repo     *database.StagingRepository
	envelope envelope.Envelope
	config   config.StagingConfig
	logger   *logrus.Logger

	// now is a clock hook for expiry tests
	now func() time.Time
}

// NewStagingService creates a new StagingService
func NewStagingService(
	repo *database.StagingRepository,
	env envelope.Envelope,
	cfg config.StagingConfig,
	logger *logrus.Logger,
) *StagingService {
	return &StagingService{
		repo:     repo,
		envelope: env,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Stage encrypts the private portion of a booking form and persists it
// under a fresh session id. Consent is mandatory: without privacyAgreed
// no personal data is stored, encrypted or not.
func (s *StagingService) Stage(req *models.StageRequest, fp ClientFingerprint) (*models.StageResponse, error) {
	if req == nil || req.PublicData == nil {
		return nil, errs.New(errs.KindValidation, "publicData is required")
	}
	if req.PrivateData == nil {
		return nil, errs.New(errs.KindValidation, "privateData is required")
	}
	if !req.PrivateData.PrivacyAgreed {
		return nil, errs.New(errs.KindValidation, "privacy consent is required before staging")
	}

	sessionID, err := token.NewSessionID()
	if err != nil {
		return nil, errs.Wrap(errs.KindEncryption, "failed to generate session id", err)
	}

	plaintext, err := req.PrivateData.Serialize()
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, "invalid private data", err)
	}

	dataHash := s.envelope.Hash(plaintext)

	encrypted, err := s.envelope.Seal(plaintext)
	if err != nil {
		// Never include the plaintext in the error chain
		return nil, errs.Wrap(errs.KindEncryption, "failed to encrypt private data", err)
	}

	now := s.now()
	record := &models.StagedBooking{
		SessionID:     sessionID,
		EncryptedData: encrypted,
		DataHash:      dataHash,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.config.TTL),
	}
	if fp.UserAgent != "" {
		record.UserAgent = &fp.UserAgent
	}
	if fp.IPAddress != "" {
		record.IPAddress = &fp.IPAddress
	}

	if err := s.repo.Put(record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"expires_at": record.ExpiresAt,
	}).Info("Staged booking created")

	return &models.StageResponse{
		SessionID: sessionID,
		ExpiresAt: record.ExpiresAt,
		LoginURL:  s.buildLoginURL(req.ReturnURL),
	}, nil
}

// buildLoginURL embeds the return target into the login flow URL so the
// client lands back in the booking flow after authentication.
func (s *StagingService) buildLoginURL(returnTarget string) string {
	if returnTarget == "" {
		returnTarget = "/"
	}
	return fmt.Sprintf("%s?returnUrl=%s", s.config.LoginURL, url.QueryEscape(returnTarget))
}

// Restore decrypts and returns the private data for a live session. The
// only mutation on this path is cleanup-on-read of an expired row; a
// successful restore leaves the record in place until Discard.
func (s *StagingService) Restore(sessionID string) (*models.PrivateReservationData, error) {
	if sessionID == "" {
		return nil, errs.New(errs.KindValidation, "sessionId is required")
	}

	record, err := s.repo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errs.New(errs.KindNotFound, "staged session not found")
	}

	if record.IsExpired(s.now()) {
		// Cleanup-on-read: reclaim the row, then report expiry. This is
		// a routine outcome, not a fault.
		if err := s.repo.Delete(sessionID); err != nil {
			s.logger.WithError(err).WithField("session_id", sessionID).
				Warn("Failed to delete expired staged booking")
		}
		return nil, errs.New(errs.KindExpired, "staged session has expired")
	}

	plaintext, err := s.envelope.Open(record.EncryptedData)
	if err != nil {
		return nil, errs.Wrap(errs.KindDecryption, "failed to decrypt staged data", err)
	}

	// A failed integrity check is treated as tampering; no partial data
	// leaves this function.
	if !s.envelope.Verify(plaintext, record.DataHash) {
		s.logger.WithField("session_id", sessionID).Error("Integrity hash mismatch on staged booking")
		return nil, errs.New(errs.KindIntegrity, "staged data failed integrity verification")
	}

	data, err := models.DeserializePrivateData(plaintext)
	if err != nil {
		return nil, errs.Wrap(errs.KindDecryption, "failed to parse staged data", err)
	}

	s.logger.WithField("session_id", sessionID).Info("Staged booking restored")
	return data, nil
}

// Discard deletes the staged record unconditionally. Idempotent; called
// once the client has merged staged data into a confirmed booking or
// abandoned the flow.
func (s *StagingService) Discard(sessionID string) error {
	if sessionID == "" {
		return errs.New(errs.KindValidation, "sessionId is required")
	}
	if err := s.repo.Delete(sessionID); err != nil {
		return err
	}
	s.logger.WithField("session_id", sessionID).Info("Staged booking discarded")
	return nil
}

// Status is a side-effect-free existence/expiry check for UI polling.
// It never decrypts and never deletes.
func (s *StagingService) Status(sessionID string) (*models.StagingStatus, error) {
	if sessionID == "" {
		return nil, errs.New(errs.KindValidation, "sessionId is required")
	}

	record, err := s.repo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &models.StagingStatus{Exists: false, IsExpired: false}, nil
	}

	expiresAt := record.ExpiresAt
	return &models.StagingStatus{
		Exists:    true,
		IsExpired: record.IsExpired(s.now()),
		ExpiresAt: &expiresAt,
	}, nil
}
