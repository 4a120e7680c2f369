package services

import (
	"fmt"
	"time"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
)

// RateLimitService limits staging-create requests per client IP. The
// endpoint is anonymous and persists rows, so it is the one surface
// needing abuse protection.
type RateLimitService struct {
	repo   *database.RateLimitRepository
	config config.RateLimitConfig
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(repo *database.RateLimitRepository, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{repo: repo, config: cfg}
}

// RateLimitError carries the retry instant so the HTTP boundary can set
// a Retry-After header.
type RateLimitError struct {
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("retry after %s", e.RetryAfter.Format("15:04:05"))
}

// CheckAndRecord verifies the identifier is under its window limit and
// records this request. Returns a rate-limited error with a retry hint
// when the limit is exceeded.
func (s *RateLimitService) CheckAndRecord(identifier string) error {
	if identifier == "" {
		return nil
	}

	windowStart := time.Now().Add(-s.config.Window)
	count, lastRequest, err := s.repo.CountSince(identifier, windowStart)
	if err != nil {
		return err
	}

	if count >= s.config.MaxRequests {
		retryAfter := lastRequest.Add(s.config.Window)
		return errs.Wrap(errs.KindRateLimited,
			fmt.Sprintf("too many staging requests, retry after %s", retryAfter.Format("15:04:05")),
			&RateLimitError{RetryAfter: retryAfter})
	}

	return s.repo.Record(identifier)
}
