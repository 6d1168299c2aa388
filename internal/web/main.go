// Package web serves the plugin endpoint, the health check and the metrics to the host.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	adapter "github.com/zalando-stups/stups-auth-adapter/internal/logger/adapter/fiber"
	"github.com/zalando-stups/stups-auth-adapter/internal/requestid"
	"github.com/zalando-stups/stups-auth-adapter/internal/web/handler"
	"github.com/zalando-stups/stups-auth-adapter/internal/web/handler/plugin"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it is shut down.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets checkalive fail for the configured drain time, then stops the http server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, dispatcher handler.Dispatcher) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        8192,
			AppName:               cfg.Log.AppName,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			DisableStartupMessage: !cfg.DevMode,
		},
	)

	app.Use(recover.New())
	app.Use(requestid.Middleware())
	app.Use(adapter.New(adapter.Config{
		Config:        cfg.Log,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(cfg.Webserver.CheckAliveURI, service.checkAlive)
	app.Get(handler.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	new(plugin.Service).Init(app, cfg, dispatcher)

	return service
}
