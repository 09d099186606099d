package middleware

import (
	"log/slog"

	"github.com/a7motors/dealerbot/core/config"
	"github.com/a7motors/dealerbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Gate answers whether a sender may perform privileged actions. The check is
// repeated on every privileged step, not cached per dialog, so removing an
// entry from the allow-list takes effect mid-conversation.
type Gate struct {
	Allowlist config.Allowlist
	OnReject  tele.HandlerFunc
}

// Allowed reports whether the sender of the current update is on the allow-list.
func (g Gate) Allowed(c tele.Context) bool {
	user := c.Sender()
	if user == nil {
		return false
	}
	return g.Allowlist.Contains(user.ID, user.Username)
}

// Require wraps a handler so it only runs for allow-listed senders.
func (g Gate) Require(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !g.Allowed(c) {
			g.logReject(c)
			if g.OnReject != nil {
				return g.OnReject(c)
			}
			return nil
		}
		return h(c)
	}
}

// Middleware enforces the allow-list for every downstream handler.
func (g Gate) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return g.Require(next)
	}
}

func (g Gate) logReject(c tele.Context) {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("outcome", "denied"),
	}
	if user := c.Sender(); user != nil {
		attrs = append(attrs, slog.Int64("user_id", user.ID))
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
	}
	logger.LogEvent(logger.Background(), logger.TG, slog.LevelWarn, "access.denied", attrs...)
}
