package credentials

import "errors"

var (
	// ErrDirNotSet is returned when no secrets directory is configured.
	ErrDirNotSet = errors.New("credentials directory (CREDENTIALS_DIR) is not set")

	// ErrFileUnreadable is returned when client.json can not be opened or read.
	ErrFileUnreadable = errors.New("client credentials file is unreadable")

	// ErrMalformed is returned when client.json is not a JSON object of strings.
	// The wrapped message carries positions and field names only, never content.
	ErrMalformed = errors.New("client credentials file is malformed")

	// ErrIncomplete is returned when client_id or client_secret is missing or empty.
	ErrIncomplete = errors.New("client credentials file is incomplete")
)
