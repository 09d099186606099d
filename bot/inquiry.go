package bot

import (
	"strings"

	"github.com/a7motors/dealerbot/core/logger"
	"github.com/a7motors/dealerbot/core/telegram/callbacks"
	"github.com/a7motors/dealerbot/core/telegram/dialog"
	"github.com/a7motors/dealerbot/core/telegram/keyboard"
	"log/slog"

	"github.com/a7motors/dealerbot/catalog"
	"github.com/a7motors/dealerbot/notify"

	tele "gopkg.in/telebot.v4"
)

const (
	stateInquiryName  dialog.State = "inquiry.name"
	stateInquiryPhone dialog.State = "inquiry.phone"
	stateInquiryPrefs dialog.State = "inquiry.prefs"
)

const (
	tmpInquiryName  = "inquiry_name"
	tmpInquiryPhone = "inquiry_phone"
	tmpInquiryCar   = "inquiry_car"
	tmpInquiryFirst = "inquiry_first_name"
)

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnCancel, Unique: cbDlgCancel, Data: "go"},
	})
}

func skipMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnSkip, Unique: cbSkip, Data: "go"}},
		[]keyboard.InlineBtn{{Text: btnCancel, Unique: cbDlgCancel, Data: "go"}},
	)
}

// startInquiry opens the inquiry dialog. A non-nil car pins a snapshot of
// the selected vehicle into the draft.
func (a *App) startInquiry(c tele.Context, car *catalog.Car) error {
	user := c.Sender()
	a.dialogs.Start(user.ID, user.Username, stateInquiryName)
	// Stash the sender identity and, if any, the car snapshot before the
	// first answer arrives.
	a.withSession(user.ID, func(sess *dialog.Session) {
		sess.SetTemp(tmpInquiryFirst, user.FirstName)
		if car != nil {
			sess.SetTemp(tmpInquiryCar, *car)
		}
	})
	return c.Send(textAskName, cancelMarkup())
}

// handleInquire starts the inquiry flow for the car currently shown by the
// user's browsing cursor.
func (a *App) handleInquire(c tele.Context) error {
	cur, ok := a.cursors.get(c.Sender().ID)
	if !ok {
		return renderMenu(c, textSessionLost, backToMenuMarkup())
	}
	idx, err := callbacks.PayloadInt(c)
	if err != nil || idx < 0 || idx >= len(cur.cars) {
		return renderMenu(c, textCarNotFound, backToMenuMarkup())
	}
	car := cur.cars[idx]
	return a.startInquiry(c, &car)
}

func (a *App) registerInquiryFlow() {
	a.dialogs.RegisterStep(stateInquiryName, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputText {
			return retry(stateInquiryName, textExpectedText, cancelMarkup())
		}
		name := strings.TrimSpace(in.Text)
		if name == "" {
			return retry(stateInquiryName, textNameEmpty, cancelMarkup())
		}
		sess.SetTemp(tmpInquiryName, name)
		return advance(stateInquiryPhone, textAskPhone, cancelMarkup())
	})

	a.dialogs.RegisterStep(stateInquiryPhone, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputText {
			return retry(stateInquiryPhone, textExpectedText, cancelMarkup())
		}
		phone := strings.TrimSpace(in.Text)
		if phone == "" {
			return retry(stateInquiryPhone, textPhoneEmpty, cancelMarkup())
		}
		sess.SetTemp(tmpInquiryPhone, phone)
		return advance(stateInquiryPrefs, textAskPrefs, skipMarkup())
	})

	a.dialogs.RegisterStep(stateInquiryPrefs, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		prefs := ""
		switch in.Kind {
		case dialog.InputText:
			prefs = strings.TrimSpace(in.Text)
		case dialog.InputChoice:
			// The skip button arrives as an empty choice.
		default:
			return retry(stateInquiryPrefs, textExpectedText, skipMarkup())
		}
		a.finishInquiry(sess, prefs)
		return done(textInquiryDone, backToMenuMarkup())
	})
}

// finishInquiry dispatches the completed draft. The customer confirmation is
// unconditional: delivery failure is an operational concern handled by
// logging inside the dispatcher.
func (a *App) finishInquiry(sess *dialog.Session, prefs string) {
	name, _ := sess.TempString(tmpInquiryName)
	phone, _ := sess.TempString(tmpInquiryPhone)

	inq := notify.Inquiry{
		Ref:         notify.NewRef(),
		Name:        name,
		Phone:       phone,
		Preferences: prefs,
	}
	if v, ok := sess.Temp(tmpInquiryCar); ok {
		if car, ok := v.(catalog.Car); ok {
			inq.Car = &car
		}
	}

	notifier := a.currentNotifier()
	if notifier == nil {
		logger.Error(logger.Background(), "notify", "dispatch.unavailable",
			slog.String("inquiry_ref", inq.Ref),
		)
		return
	}
	first, _ := sess.TempString(tmpInquiryFirst)
	notifier.Dispatch(notify.Profile{
		UserID:    sess.UserID,
		Username:  sess.Username,
		FirstName: first,
	}, inq)
}

// withSession runs fn against the user's live session, if any.
func (a *App) withSession(userID int64, fn func(*dialog.Session)) {
	a.dialogs.WithSession(userID, fn)
}

// Shared step outcomes.

func retry(st dialog.State, text string, markup *tele.ReplyMarkup) dialog.Step {
	return dialog.Step{
		Replies: []dialog.Reply{{Text: text, Markup: markup}},
		Next:    st,
	}
}

func advance(st dialog.State, text string, markup *tele.ReplyMarkup) dialog.Step {
	return dialog.Step{
		Replies: []dialog.Reply{{Text: text, Markup: markup}},
		Next:    st,
	}
}

func done(text string, markup *tele.ReplyMarkup) dialog.Step {
	return dialog.Step{
		Replies: []dialog.Reply{{Text: text, Markup: markup}},
		Done:    true,
	}
}

// Dialog choice/skip/cancel callbacks shared by every flow.

func (a *App) handleDialogChoice(c tele.Context) error {
	in := dialog.Input{Kind: dialog.InputChoice, Text: payload(c)}
	return a.feedDialog(c, in)
}

func (a *App) handleDialogSkip(c tele.Context) error {
	in := dialog.Input{Kind: dialog.InputChoice, Text: ""}
	return a.feedDialog(c, in)
}

func (a *App) handleDialogCancel(c tele.Context) error {
	if !a.dialogs.Cancel(c.Sender().ID) {
		return renderMenu(c, textNothingCancel, backToMenuMarkup())
	}
	return renderMenu(c, textCancelled, backToMenuMarkup())
}
