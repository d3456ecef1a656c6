package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// RateLimitError represents a rate limit exceeded error with reset time.
// It matches domain.ErrRateLimited.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap returns domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// wrapError converts go-github errors to domain fetch errors for path.
func (c *Client) wrapError(err error, path string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &domain.FetchError{
			Path:       path,
			StatusCode: http.StatusForbidden,
			Err: &RateLimitError{
				ResetAt:   rateLimitErr.Rate.Reset.Time,
				Remaining: rateLimitErr.Rate.Remaining,
				Limit:     rateLimitErr.Rate.Limit,
			},
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now()
		if abuseErr.RetryAfter != nil {
			resetAt = resetAt.Add(*abuseErr.RetryAfter)
		}
		return &domain.FetchError{
			Path:       path,
			StatusCode: http.StatusForbidden,
			Err:        &RateLimitError{ResetAt: resetAt},
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		fe := domain.NewFetchError(path, ghErr.Response.StatusCode)
		if ghErr.Response.StatusCode != http.StatusNotFound && ghErr.Response.StatusCode != http.StatusTooManyRequests {
			fe.Err = fmt.Errorf("github: %s", ghErr.Message)
		}
		return fe
	}

	return &domain.FetchError{Path: path, Err: err}
}
