package bot

import (
	"github.com/a7motors/dealerbot/core/telegram/callbacks"
	tghelpers "github.com/a7motors/dealerbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func payload(c tele.Context) string {
	return callbacks.CallbackPayload(c)
}

// renderMenu replaces the message a callback originated from, or sends a
// fresh message when the update is not a callback (e.g. a command).
func renderMenu(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}
	return tghelpers.RenderOrReplace(c, text, markup)
}
