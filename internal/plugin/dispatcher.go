// Package plugin routes named host requests to the authentication and search components
// and translates their results into host responses.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/zalando-stups/stups-auth-adapter/internal/auth"
)

// Request names understood by the dispatcher.
const (
	RequestConfiguration = "go.authentication.plugin-configuration"
	RequestSearchUser    = "go.authentication.search-user"
	RequestAuthenticate  = "go.authentication.authenticate-user"
)

// Authenticator verifies a username/password pair.
type Authenticator interface {
	Verify(ctx context.Context, username, password string) auth.Result
}

// Searcher returns the usernames matching a search term.
type Searcher interface {
	Search(ctx context.Context, term string) []string
}

// Request is a named host request with its raw JSON body.
type Request struct {
	Name string
	Body []byte
}

type descriptor struct {
	DisplayName                         string `json:"display-name"`
	SupportsPasswordBasedAuthentication bool   `json:"supports-password-based-authentication"`
	SupportsUserSearch                  bool   `json:"supports-user-search"`
}

type searchRequest struct {
	SearchTerm string `json:"search-term"`
}

type authenticateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

type user struct {
	Username string `json:"username"`
}

type authenticateResponse struct {
	User user `json:"user"`
}

// Dispatcher handles host requests by name.
type Dispatcher struct {
	auth       Authenticator
	search     Searcher
	validate   *validator.Validate
	descriptor []byte
}

// NewDispatcher creates a dispatcher announcing displayName in its descriptor.
func NewDispatcher(authenticator Authenticator, searcher Searcher, displayName string) *Dispatcher {
	d, _ := json.Marshal(Descriptor(displayName)) //nolint:errchkjson // plain struct

	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0] //nolint:mnd
	})

	return &Dispatcher{
		auth:       authenticator,
		search:     searcher,
		validate:   v,
		descriptor: d,
	}
}

// Descriptor returns the capability descriptor for displayName.
func Descriptor(displayName string) any {
	return descriptor{
		DisplayName:                         displayName,
		SupportsPasswordBasedAuthentication: true,
		SupportsUserSearch:                  true,
	}
}

// Handle answers req. It never returns an error, failures are expressed as status codes.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	switch req.Name {
	case RequestConfiguration:
		return jsonResponse(d.descriptor)
	case RequestSearchUser:
		return d.handleSearch(ctx, req.Body)
	case RequestAuthenticate:
		return d.handleAuthenticate(ctx, req.Body)
	default:
		log.Warn().Str("request", req.Name).Msg("unknown plugin request")

		return NewResponse(http.StatusNotFound, nil, "")
	}
}

func (d *Dispatcher) handleSearch(ctx context.Context, body []byte) Response {
	var in searchRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return badRequest(RequestSearchUser, err)
	}

	usernames := d.search.Search(ctx, in.SearchTerm)

	users := make([]user, 0, len(usernames))
	for _, u := range usernames {
		users = append(users, user{Username: u})
	}

	out, err := json.Marshal(users)
	if err != nil {
		return textResponse(http.StatusInternalServerError, err.Error())
	}

	return jsonResponse(out)
}

func (d *Dispatcher) handleAuthenticate(ctx context.Context, body []byte) Response {
	var in authenticateRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return badRequest(RequestAuthenticate, err)
	}

	if err := d.validate.Struct(in); err != nil {
		return badRequest(RequestAuthenticate, err)
	}

	// an empty password goes to the issuer like any other, which rejects it
	res := d.auth.Verify(ctx, in.Username, in.Password)

	switch res.Outcome {
	case auth.Authenticated:
		out, err := json.Marshal(authenticateResponse{User: user{Username: res.Username}})
		if err != nil {
			return textResponse(http.StatusInternalServerError, err.Error())
		}

		return jsonResponse(out)
	case auth.Rejected:
		// the host reads an empty 200 as "not authenticated"
		return NewResponse(http.StatusOK, nil, "")
	default:
		return textResponse(http.StatusInternalServerError, res.Detail)
	}
}

// badRequest never echoes the body, it may carry a password.
func badRequest(name string, err error) Response {
	var (
		detail   = "malformed request body"
		fieldErr validator.ValidationErrors
	)

	if errors.As(err, &fieldErr) && len(fieldErr) > 0 {
		detail = "missing " + fieldErr[0].Field()
	}

	log.Warn().Str("request", name).Str("reason", detail).Msg("invalid plugin request")

	return textResponse(http.StatusBadRequest, detail)
}
