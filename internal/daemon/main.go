// Package daemon wires the adapter components and runs them until shutdown.
package daemon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/zalando-stups/stups-auth-adapter/internal/auth"
	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	"github.com/zalando-stups/stups-auth-adapter/internal/credentials"
	"github.com/zalando-stups/stups-auth-adapter/internal/directory"
	"github.com/zalando-stups/stups-auth-adapter/internal/httpclient"
	"github.com/zalando-stups/stups-auth-adapter/internal/plugin"
	"github.com/zalando-stups/stups-auth-adapter/internal/search"
	"github.com/zalando-stups/stups-auth-adapter/internal/token"
	"github.com/zalando-stups/stups-auth-adapter/internal/web"
)

// startupTimeout bounds the initial service token acquisition.
const startupTimeout = 2 * time.Minute

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	supplier   *token.Supplier
	webService *web.Service
}

// Start acquires the service token, serves until a shutdown signal and stops the refresh.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := d.supplier.Start(ctx); err != nil {
		return fmt.Errorf("service token: %w", err)
	}

	defer d.supplier.Stop()

	done := make(chan error, 1)

	go func() {
		done <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	go d.webService.WaitShutdown()

	return <-done
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrInvalidConfig
	}

	store := credentials.NewStore(cfg.Credentials.Dir)
	transport := httpclient.NewTransport(cfg.HTTP)
	scopes := strings.Fields(cfg.Tokens.Scope)

	serviceTokenURL, err := token.RealmURL(cfg.Tokens.URL, cfg.Tokens.ServiceRealm)
	if err != nil {
		return nil, err
	}

	employeeTokenURL, err := token.RealmURL(cfg.Tokens.URL, cfg.Tokens.EmployeeRealm)
	if err != nil {
		return nil, err
	}

	supplier := token.NewSupplier(
		token.NewClientCredentialsSource(serviceTokenURL, scopes, store, httpclient.New(cfg.HTTP, transport)),
		token.WithRefreshRatio(cfg.Tokens.RefreshRatio),
		token.WithMinRefreshInterval(cfg.Tokens.MinRefreshInterval),
		token.WithBackoff(min(time.Second, cfg.Tokens.MaxBackoff), cfg.Tokens.MaxBackoff),
		token.WithStartupAttempts(cfg.Tokens.StartupAttempts),
	)

	// directory calls carry the current service token as bearer
	directoryClient := httpclient.New(cfg.HTTP, &oauth2.Transport{
		Source: supplier,
		Base:   transport,
	})

	searcher := search.NewService(
		directory.New(cfg.Directory.URL, directoryClient),
		cfg.Directory.Teams,
		search.WithConcurrency(cfg.Directory.Concurrency),
	)

	verifier := auth.NewPasswordVerifier(auth.PasswordConfig{
		TokenURL: employeeTokenURL,
		Scopes:   scopes,
	}, store, httpclient.New(cfg.HTTP, transport))

	dispatcher := plugin.NewDispatcher(verifier, searcher, cfg.Plugin.DisplayName)

	log.Info().
		Str("token_url", cfg.Tokens.URL).
		Str("team_service_url", cfg.Directory.URL).
		Strs("teams", searcher.Teams()).
		Msg("stups auth adapter configured")

	return &Daemon{
		cfg:        cfg,
		supplier:   supplier,
		webService: web.New(cfg, dispatcher),
	}, nil
}
