package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/database"
)

// cleanupBatchSize caps the rows reclaimed per sweep
const cleanupBatchSize = 100

// StagingCleanupService deletes expired staged bookings in the
// background. The read path already treats expired rows as absent and
// reclaims them on first read; this sweeper is storage hygiene for
// sessions nobody ever comes back for.
type StagingCleanupService struct {
	stagingRepo   *database.StagingRepository
	rateLimitRepo *database.RateLimitRepository
	logger        *logrus.Logger
	stopCh        chan struct{}
	interval      time.Duration
}

// NewStagingCleanupService creates a new staging cleanup service
func NewStagingCleanupService(
	stagingRepo *database.StagingRepository,
	rateLimitRepo *database.RateLimitRepository,
	interval time.Duration,
	logger *logrus.Logger,
) *StagingCleanupService {
	return &StagingCleanupService{
		stagingRepo:   stagingRepo,
		rateLimitRepo: rateLimitRepo,
		logger:        logger,
		stopCh:        make(chan struct{}),
		interval:      interval,
	}
}

// Start begins the background cleanup job
func (s *StagingCleanupService) Start() {
	s.logger.WithField("interval", s.interval).Info("Starting staging cleanup service")
	go s.run()
}

// Stop stops the background cleanup job
func (s *StagingCleanupService) Stop() {
	s.logger.Info("Stopping staging cleanup service")
	close(s.stopCh)
}

func (s *StagingCleanupService) run() {
	// Run immediately on start
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("Staging cleanup service stopped")
			return
		}
	}
}

func (s *StagingCleanupService) sweep() {
	deleted, err := s.stagingRepo.DeleteExpired(time.Now(), cleanupBatchSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to delete expired staged bookings")
	} else if deleted > 0 {
		s.logger.WithField("count", deleted).Info("Deleted expired staged bookings")
	}

	// Rate limit entries older than a day carry no signal
	pruned, err := s.rateLimitRepo.Prune(time.Now().Add(-24 * time.Hour))
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune rate limit entries")
	} else if pruned > 0 {
		s.logger.WithField("count", pruned).Info("Pruned stale rate limit entries")
	}
}

// RunOnce runs a single cleanup cycle (useful for testing or manual trigger)
func (s *StagingCleanupService) RunOnce() {
	s.sweep()
}
