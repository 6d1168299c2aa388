package config

import (
	"errors"
)

var (
	// ErrTokenURLEmpty error if the token issuer url is not configured.
	ErrTokenURLEmpty = errors.New("config tokens.url (STUPS_ACCESS_TOKEN_URL) can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrInvalidConfig error if a config value fails its validation rule.
	ErrInvalidConfig = errors.New("invalid config")
)
