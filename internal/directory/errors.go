package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrBaseURLNotSet is returned when no team service url is configured.
	ErrBaseURLNotSet = errors.New("team service url not set")

	// ErrMalformedResponse is returned when the team document cannot be decoded.
	ErrMalformedResponse = errors.New("malformed team response")
)

// StatusError reports a non-200 answer of the team service.
type StatusError struct {
	Team       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("team %s: unexpected status %d", e.Team, e.StatusCode)
}
