package providers

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"
)

// backoffBase is the delay before the first retry; it doubles per attempt.
var backoffBase = time.Second

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return "rate limited" }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string { return "server error: " + e.body }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

func isRetryable(err error) bool {
	var rl *rateLimitError
	var se *serverError
	return errors.As(err, &rl) || errors.As(err, &se)
}

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		wait := backoffBase << uint(attempt)
		var rl *rateLimitError
		if errors.As(lastErr, &rl) && rl.retryAfter > wait {
			wait = rl.retryAfter
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

// classifyStatus maps a non-200 HTTP status to a typed error.
func classifyStatus(status int, body string) error {
	switch {
	case status == 429:
		return &rateLimitError{retryAfter: parseRetryDelay(body)}
	case status == 401 || status == 403:
		return &authError{message: body}
	case status >= 500:
		return &serverError{statusCode: status, body: body}
	default:
		return &apiError{statusCode: status, body: body}
	}
}

type apiError struct {
	statusCode int
	body       string
}

func (e *apiError) Error() string { return "API error: " + e.body }

var retryInRe = regexp.MustCompile(`(?i)retry in ([0-9]+(?:\.[0-9]+)?)s`)

const maxRetryDelay = time.Minute

// parseRetryDelay reads a "retry in 12.5s" hint from a rate-limit body.
func parseRetryDelay(body string) time.Duration {
	m := retryInRe.FindStringSubmatch(body)
	if m == nil {
		return 0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return min(time.Duration(secs*float64(time.Second)), maxRetryDelay)
}
