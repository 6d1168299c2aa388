package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	"github.com/zalando-stups/stups-auth-adapter/internal/plugin"
)

// Dispatcher answers named host requests.
type Dispatcher interface {
	Handle(ctx context.Context, req plugin.Request) plugin.Response
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, dispatcher Dispatcher)
}
