package router

import (
	"github.com/a7motors/dealerbot/core/logger"
	tg "github.com/a7motors/dealerbot/core/telegram"
	"github.com/a7motors/dealerbot/core/telegram/middleware"
	"log/slog"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Gate middleware.Gate
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Admin-only commands are re-checked against the allow-list on every
// invocation.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = opts.Gate.Require(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
