package plugin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando-stups/stups-auth-adapter/internal/auth"
	"github.com/zalando-stups/stups-auth-adapter/internal/plugin"
)

type fakeAuth struct {
	calls        int
	lastPassword string
}

func (f *fakeAuth) Verify(_ context.Context, username, password string) auth.Result {
	f.calls++
	f.lastPassword = password

	switch {
	case username == "broken":
		return auth.Result{Outcome: auth.InternalError, Username: username, Detail: "issuer unreachable"}
	case password == "secret":
		return auth.Result{Outcome: auth.Authenticated, Username: username}
	default:
		return auth.Result{Outcome: auth.Rejected, Username: username}
	}
}

type fakeSearch struct {
	lastTerm string
	result   []string
}

func (f *fakeSearch) Search(_ context.Context, term string) []string {
	f.lastTerm = term

	return f.result
}

func newDispatcher() (*plugin.Dispatcher, *fakeAuth, *fakeSearch) {
	a := &fakeAuth{}
	s := &fakeSearch{result: []string{"alice", "alice"}}

	return plugin.NewDispatcher(a, s, "STUPS"), a, s
}

func TestConfiguration(t *testing.T) {
	d, _, _ := newDispatcher()

	first := d.Handle(context.Background(), plugin.Request{Name: plugin.RequestConfiguration})
	second := d.Handle(context.Background(), plugin.Request{Name: plugin.RequestConfiguration, Body: []byte("ignored")})

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, first, second)
	assert.JSONEq(t, `{
		"display-name": "STUPS",
		"supports-password-based-authentication": true,
		"supports-user-search": true
	}`, first.Body)
	assert.Equal(t, "application/json", first.Headers["Content-Type"])
}

func TestSearchUser(t *testing.T) {
	d, _, s := newDispatcher()

	resp := d.Handle(context.Background(), plugin.Request{
		Name: plugin.RequestSearchUser,
		Body: []byte(`{"search-term":"al"}`),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "al", s.lastTerm)
	assert.JSONEq(t, `[{"username":"alice"},{"username":"alice"}]`, resp.Body)
}

func TestSearchUserEmpty(t *testing.T) {
	d, _, s := newDispatcher()
	s.result = []string{}

	resp := d.Handle(context.Background(), plugin.Request{Name: plugin.RequestSearchUser, Body: []byte(`{}`)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, s.lastTerm)
	assert.Equal(t, "[]", resp.Body)
}

func TestAuthenticateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantJSON   bool
		wantCalls  int
	}{
		{
			name:       "authenticated",
			body:       `{"username":"alice","password":"secret"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"user":{"username":"alice"}}`,
			wantJSON:   true,
			wantCalls:  1,
		},
		{
			name:       "rejected is empty 200",
			body:       `{"username":"alice","password":"wrong"}`,
			wantStatus: http.StatusOK,
			wantBody:   "",
			wantCalls:  1,
		},
		{
			name:       "internal error",
			body:       `{"username":"broken","password":"secret"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "issuer unreachable",
			wantCalls:  1,
		},
		{
			name:       "malformed body",
			body:       `{"username":"alice","password":"secret"`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "malformed request body",
		},
		{
			name:       "empty password forwarded and rejected",
			body:       `{"username":"alice","password":""}`,
			wantStatus: http.StatusOK,
			wantBody:   "",
			wantCalls:  1,
		},
		{
			name:       "absent password forwarded and rejected",
			body:       `{"username":"alice"}`,
			wantStatus: http.StatusOK,
			wantBody:   "",
			wantCalls:  1,
		},
		{
			name:       "missing username",
			body:       `{"password":"secret"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "missing username",
		},
		{
			name:       "empty username",
			body:       `{"username":"","password":"secret"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "missing username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, a, _ := newDispatcher()

			resp := d.Handle(context.Background(), plugin.Request{
				Name: plugin.RequestAuthenticate,
				Body: []byte(tt.body),
			})

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, a.calls)
			assert.NotContains(t, resp.Body, "secret")

			if tt.wantJSON {
				assert.JSONEq(t, tt.wantBody, resp.Body)

				return
			}

			assert.Equal(t, tt.wantBody, resp.Body)
		})
	}
}

func TestAuthenticateUserEmptyPasswordReachesVerifier(t *testing.T) {
	d, a, _ := newDispatcher()

	resp := d.Handle(context.Background(), plugin.Request{
		Name: plugin.RequestAuthenticate,
		Body: []byte(`{"username":"alice","password":""}`),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, 1, a.calls)
	assert.Empty(t, a.lastPassword)
}

func TestUnknownRequest(t *testing.T) {
	d, a, s := newDispatcher()

	resp := d.Handle(context.Background(), plugin.Request{Name: "go.authentication.get-user-roles"})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Zero(t, a.calls)
	assert.Empty(t, s.lastTerm)
}

func TestNewResponseCopiesHeaders(t *testing.T) {
	h := map[string]string{"X-Test": "a"}
	resp := plugin.NewResponse(http.StatusOK, h, "body")

	h["X-Test"] = "b"

	assert.Equal(t, "a", resp.Headers["X-Test"])
}

func TestDescriptor(t *testing.T) {
	out, err := json.Marshal(plugin.Descriptor("Other"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"display-name": "Other",
		"supports-password-based-authentication": true,
		"supports-user-search": true
	}`, string(out))
}
