package token

import "errors"

var (
	// ErrNotStarted is returned by Token before the first token was acquired.
	ErrNotStarted = errors.New("service token supplier not started")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("service token supplier already started")

	// ErrEmptyToken is returned when the issuer answers without an access token.
	ErrEmptyToken = errors.New("issuer returned an empty access token")

	// ErrInitialToken is returned by Start when no attempt produced a token.
	ErrInitialToken = errors.New("could not acquire initial service token")
)
