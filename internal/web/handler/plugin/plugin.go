// Package plugin exposes the request dispatcher to the host over HTTP.
package plugin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	adapter "github.com/zalando-stups/stups-auth-adapter/internal/logger/adapter/fiber"
	dispatch "github.com/zalando-stups/stups-auth-adapter/internal/plugin"
	"github.com/zalando-stups/stups-auth-adapter/internal/web/handler"
)

// Service is the plugin request handler service. Create one per fiber app.
type Service struct {
	handler.Service
	dispatcher handler.Dispatcher
}

// Init registers the plugin route.
func (s *Service) Init(app *fiber.App, cfg *config.Config, dispatcher handler.Dispatcher) {
	if app == nil || cfg == nil || dispatcher == nil {
		log.Fatal().Msg(handler.ErrNilAppFatalLogMsg)

		return
	}

	s.dispatcher = dispatcher

	app.Post(handler.PluginPath, s.Post)
}

// Post hands the raw body to the dispatcher and writes its response verbatim.
func (s *Service) Post(c *fiber.Ctx) error {
	name := c.Params("request")
	c.Locals(adapter.LocalsPluginRequest, name)

	resp := s.dispatcher.Handle(c.UserContext(), dispatch.Request{
		Name: name,
		Body: c.Body(),
	})

	for k, v := range resp.Headers {
		c.Set(k, v)
	}

	return c.Status(resp.StatusCode).SendString(resp.Body)
}
