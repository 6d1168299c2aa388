// Package credentials reads the OAuth2 client credentials from the mounted secrets directory.
//
// The file is read on every Load so rotated secrets are picked up without a restart.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FileName is the client credentials file inside the secrets directory.
const FileName = "client.json"

// Client is the client_id/client_secret pair of this application.
type Client struct {
	ClientID     string `json:"client_id"     validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// String hides the secret, so a Client never leaks through %v or %+v.
func (c Client) String() string {
	return "Client{ClientID: " + c.ClientID + ", ClientSecret: <redacted>}"
}

// GoString hides the secret for %#v.
func (c Client) GoString() string {
	return c.String()
}

// Store loads client credentials from a secrets directory.
type Store struct {
	dir      string
	validate *validator.Validate
}

// NewStore creates a store for dir. An empty dir is reported by Load, not here.
func NewStore(dir string) *Store {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0] //nolint:mnd
	})

	return &Store{
		dir:      dir,
		validate: v,
	}
}

// Path returns the full path of the client credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load reads and validates client.json.
// Errors never include file content.
func (s *Store) Load() (Client, error) {
	var c Client

	if s.dir == "" {
		return c, ErrDirNotSet
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		return c, errors.Wrap(ErrFileUnreadable, describeFSError(err))
	}

	if err = json.Unmarshal(raw, &c); err != nil {
		return Client{}, errors.Wrap(ErrMalformed, describeJSONError(err))
	}

	if err = s.validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return Client{}, errors.Wrapf(ErrIncomplete, "missing %s", fieldErrs[0].Field())
		}

		return Client{}, errors.Wrap(ErrIncomplete, "validation failed")
	}

	return c, nil
}

func describeFSError(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op + " " + pathErr.Path + ": " + pathErr.Err.Error()
	}

	return "read failed"
}

// describeJSONError keeps the position or field of a decode error and drops the rest,
// syntax errors quote the offending input.
func describeJSONError(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return "invalid JSON at offset " + strconv.FormatInt(syntaxErr.Offset, 10)
	case errors.As(err, &typeErr):
		return "unexpected type for field " + typeErr.Field
	default:
		return "invalid JSON"
	}
}
