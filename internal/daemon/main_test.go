package daemon

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	"github.com/zalando-stups/stups-auth-adapter/internal/plugin"
)

// newUpstream fakes the token issuer and the team service.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("realm") + " " + r.PostForm.Get("grant_type") {
		case "/services client_credentials":
			_, _ = w.Write([]byte(`{"access_token":"svc-token","expires_in":3600}`))
		case "/employees password":
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			_, _ = w.Write([]byte(`{"access_token":"user-token","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/teams/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		switch strings.TrimPrefix(r.URL.Path, "/teams/") {
		case "ducks":
			_, _ = w.Write([]byte(`{"member":["alice","bob"]}`))
		case "otters":
			_, _ = w.Write([]byte(`{"member":["alice","carol"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestConfig(t *testing.T, upstream string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "client.json"),
		[]byte(`{"client_id":"adapter","client_secret":"s3cret"}`),
		0o600,
	))

	cfg := &config.Config{DevMode: true}
	cfg.Log.AppName = "stups-auth-adapter"
	cfg.Webserver.Port = 8080
	cfg.Webserver.CheckAliveURI = "/checkalive"
	cfg.Plugin.DisplayName = "STUPS"
	cfg.Tokens = config.Tokens{
		URL:                upstream + "/oauth2/access_token",
		ServiceRealm:       "/services",
		EmployeeRealm:      "/employees",
		Scope:              "uid",
		RefreshRatio:       0.5,
		StartupAttempts:    1,
		MinRefreshInterval: time.Second,
		MaxBackoff:         time.Second,
	}
	cfg.Directory = config.Directory{
		URL:         upstream,
		Teams:       []string{"ducks", "beavers", "otters"},
		Concurrency: 2,
	}
	cfg.Credentials.Dir = dir
	cfg.HTTP = config.HTTP{
		ConnectTimeout:      time.Second,
		TLSHandshakeTimeout: time.Second,
		ReadTimeout:         time.Second,
		RequestTimeout:      2 * time.Second,
	}

	return cfg
}

func post(t *testing.T, d *Daemon, request, body string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/plugin/"+request, strings.NewReader(body))

	resp, err := d.webService.App.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(raw)
}

func TestDaemonEndToEnd(t *testing.T) {
	upstream := newUpstream(t)

	d, err := New(newTestConfig(t, upstream.URL))
	require.NoError(t, err)

	require.NoError(t, d.supplier.Start(t.Context()))
	t.Cleanup(d.supplier.Stop)

	status, body := post(t, d, plugin.RequestConfiguration, "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"display-name":"STUPS","supports-password-based-authentication":true,"supports-user-search":true}`, body)

	status, body = post(t, d, plugin.RequestSearchUser, `{"search-term":"al"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"username":"alice"},{"username":"alice"}]`, body)

	status, body = post(t, d, plugin.RequestAuthenticate, `{"username":"alice","password":"secret"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"user":{"username":"alice"}}`, body)

	status, body = post(t, d, plugin.RequestAuthenticate, `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	status, _ = post(t, d, "go.authentication.unknown", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDaemonStartFailsWithoutServiceToken(t *testing.T) {
	upstream := newUpstream(t)

	cfg := newTestConfig(t, upstream.URL)
	cfg.Credentials.Dir = t.TempDir()

	d, err := New(cfg)
	require.NoError(t, err)

	assert.Error(t, d.Start())
}

func TestNewLogsConfiguredTeams(t *testing.T) {
	var buf bytes.Buffer

	prev := log.Logger
	log.Logger = zerolog.New(&buf)

	t.Cleanup(func() { log.Logger = prev })

	_, err := New(newTestConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"teams":["ducks","beavers","otters"]`)
}

func TestNewInvalidTokenURL(t *testing.T) {
	cfg := newTestConfig(t, "http://[::1")

	_, err := New(cfg)
	assert.Error(t, err)

	_, err = New(nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
