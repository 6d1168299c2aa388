package auth

import "errors"

var (
	// ErrTokenURLNotSet is returned when the verifier has no token endpoint.
	ErrTokenURLNotSet = errors.New("token url not set")

	// ErrUnexpectedBody is returned when the issuer answers 200 without a token document.
	ErrUnexpectedBody = errors.New("unexpected token response body")
)
