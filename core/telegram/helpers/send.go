package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/a7motors/dealerbot/core/logger"
	"github.com/a7motors/dealerbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// RenderOrReplace edits the current message in place and, when Telegram
// refuses the edit (media/text mismatch, message too old, already deleted),
// replaces it: delete the old message, send a new one. A failed delete still
// results in a send, so the user always ends up with a fresh view.
func RenderOrReplace(c tele.Context, what interface{}, opts ...interface{}) error {
	err := c.Edit(what, opts...)
	if err == nil || IsNotModified(err) {
		return nil
	}
	if !IsEditRefused(err) {
		return err
	}
	if delErr := c.Delete(); delErr != nil {
		logger.Warn(BuildContext(c), "tg", "render.delete_failed",
			slog.String("err", delErr.Error()),
		)
	}
	return c.Send(what, opts...)
}

// IsNotModified reports the benign "message is not modified" outcome.
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}

var editRefusedMarkers = []string{
	"message can't be edited",
	"message to edit not found",
	"there is no media in the message",
	"message can't be deleted",
	"wrong message content type",
}

// IsEditRefused reports whether Telegram refused an edit in a way that the
// delete-and-resend fallback can recover from.
func IsEditRefused(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 400 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range editRefusedMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
