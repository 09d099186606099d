package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a7motors/dealerbot/core/logger"
	"github.com/a7motors/dealerbot/core/telegram/dialog"
	"github.com/a7motors/dealerbot/core/telegram/keyboard"
	"log/slog"

	"github.com/a7motors/dealerbot/catalog"
	"github.com/a7motors/dealerbot/media"

	tele "gopkg.in/telebot.v4"
)

const (
	statePhotoCarID    dialog.State = "photos.car_id"
	statePhotoDelCarID dialog.State = "photodel.car_id"
	stateDeleteCarID   dialog.State = "delete.car_id"
	stateToggleCarID   dialog.State = "toggle.car_id"
)

func (a *App) adminMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnAdminList, Unique: cbAdmin, Data: "list"}},
		[]keyboard.InlineBtn{{Text: btnAdminAdd, Unique: cbAdmin, Data: "add"}},
		[]keyboard.InlineBtn{{Text: btnAdminPhotos, Unique: cbAdmin, Data: "photos"}},
		[]keyboard.InlineBtn{{Text: btnAdminDelPhoto, Unique: cbAdmin, Data: "delphoto"}},
		[]keyboard.InlineBtn{{Text: btnAdminToggle, Unique: cbAdmin, Data: "toggle"}},
		[]keyboard.InlineBtn{{Text: btnAdminDelete, Unique: cbAdmin, Data: "del"}},
		[]keyboard.InlineBtn{{Text: btnBack, Unique: cbMenu, Data: "main"}},
	)
}

func (a *App) handleAdminMenu(c tele.Context) error {
	a.dialogs.Cancel(c.Sender().ID)
	return c.Send(textAdminMenu, a.adminMenuMarkup())
}

// handleAdminCallback routes the admin panel actions. The allow-list is
// enforced by the gate wrapper at registration and again inside each
// privileged dialog step.
func (a *App) handleAdminCallback(c tele.Context) error {
	user := c.Sender()
	switch payload(c) {
	case "menu":
		return renderMenu(c, textAdminMenu, a.adminMenuMarkup())
	case "list":
		return a.showAdminList(c)
	case "add":
		return a.startAddCar(c)
	case "photos":
		a.dialogs.Start(user.ID, user.Username, statePhotoCarID)
		return renderMenu(c, textAskCarIDPhotos, cancelMarkup())
	case "delphoto":
		a.dialogs.Start(user.ID, user.Username, statePhotoDelCarID)
		return renderMenu(c, textAskCarIDDelPhoto, cancelMarkup())
	case "del":
		a.dialogs.Start(user.ID, user.Username, stateDeleteCarID)
		return renderMenu(c, textAskCarIDDelete, cancelMarkup())
	case "toggle":
		a.dialogs.Start(user.ID, user.Username, stateToggleCarID)
		return renderMenu(c, textAskCarIDToggle, cancelMarkup())
	}
	return renderMenu(c, textUnknownAction, a.adminMenuMarkup())
}

func (a *App) showAdminList(c tele.Context) error {
	doc := a.store.Load()
	if len(doc.Cars) == 0 {
		return renderMenu(c, textAdminListEmpty, a.adminMenuMarkup())
	}
	var b strings.Builder
	b.WriteString("Автомобили в каталоге:\n\n")
	for _, car := range doc.Cars {
		mark := "✅"
		if !car.Available {
			mark = "🚫"
		}
		fmt.Fprintf(&b, "%s id %d — %s %s, %d г., %d BYN, фото: %d\n",
			mark, car.ID, car.Brand, car.Model, car.Year, car.Price, media.LocalCount(car.Photos))
	}
	return renderMenu(c, b.String(), a.adminMenuMarkup())
}

// carIDStep builds the shared "enter a car id" step used by the photo,
// delete and toggle entry prompts.
func (a *App) carIDStep(st dialog.State, act func(sess *dialog.Session, car catalog.Car) dialog.Step) dialog.StepFunc {
	return func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputText {
			return retry(st, textExpectedText, cancelMarkup())
		}
		id, err := strconv.ParseInt(strings.TrimSpace(in.Text), 10, 64)
		if err != nil {
			return retry(st, textBadCarID, cancelMarkup())
		}
		car, ok := a.store.Load().FindCar(id)
		if !ok {
			return retry(st, textCarNotFound+" "+textBadCarID, cancelMarkup())
		}
		return act(sess, car)
	}
}

func (a *App) registerAdminPromptFlows() {
	a.registerAdminStep(statePhotoCarID, a.carIDStep(statePhotoCarID,
		func(sess *dialog.Session, car catalog.Car) dialog.Step {
			// Entry-time cap check: a full car never reaches the upload state.
			if media.LocalCount(car.Photos) >= media.MaxLocalPhotos {
				return done(textPhotoLimit, backToMenuMarkup())
			}
			sess.SetTemp(tmpPhotoCarID, car.ID)
			return advance(statePhotoAwait, textSendPhoto, photoLoopMarkup())
		}))

	a.registerAdminStep(statePhotoDelCarID, a.carIDStep(statePhotoDelCarID,
		func(sess *dialog.Session, car catalog.Car) dialog.Step {
			markup := photoDelMarkup(car)
			if markup == nil {
				return done(textNoLocalPhotos, backToMenuMarkup())
			}
			// The picker continues via its callback buttons, so the prompt
			// dialog itself is finished.
			return done(textChoosePhotoDel, markup)
		}))

	a.registerAdminStep(stateDeleteCarID, a.carIDStep(stateDeleteCarID,
		func(sess *dialog.Session, car catalog.Car) dialog.Step {
			removed, err := a.store.DeleteCar(car.ID)
			if err != nil {
				return done(textDeleteFailed, backToMenuMarkup())
			}
			a.photos.DeleteCarPhotos(removed)
			return done(textCarDeleted, backToMenuMarkup())
		}))

	a.registerAdminStep(stateToggleCarID, a.carIDStep(stateToggleCarID,
		func(sess *dialog.Session, car catalog.Car) dialog.Step {
			if err := a.store.SetAvailability(car.ID, !car.Available); err != nil {
				return done(textToggleFailed, backToMenuMarkup())
			}
			status := "снят с продажи"
			if !car.Available {
				status = "снова в продаже"
			}
			return done(fmt.Sprintf("Автомобиль id %d %s.", car.ID, status), backToMenuMarkup())
		}))
}

// photoDelMarkup lists the car's local photos as delete buttons. Nil when the
// car has no local photos.
func photoDelMarkup(car catalog.Car) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, entry := range car.Photos {
		if media.IsURL(entry) {
			continue
		}
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   entry,
			Unique: cbPhotoDel,
			Data:   fmt.Sprintf("%d|%s", car.ID, entry),
		}})
	}
	if len(rows) == 0 {
		return nil
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: btnBack, Unique: cbAdmin, Data: "menu"}})
	return keyboard.InlineButtonsRows(rows...)
}

// handlePhotoDel removes a picked photo: the catalog entry first, then the
// file on disk.
func (a *App) handlePhotoDel(c tele.Context) error {
	parts := strings.SplitN(payload(c), "|", 2)
	if len(parts) != 2 {
		return renderMenu(c, textUnknownAction, a.adminMenuMarkup())
	}
	carID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return renderMenu(c, textUnknownAction, a.adminMenuMarkup())
	}
	entry := parts[1]

	if err := a.store.RemovePhoto(carID, entry); err != nil {
		return renderMenu(c, textPhotoDeleteFailed, a.adminMenuMarkup())
	}
	if err := a.photos.Remove(entry); err != nil {
		logger.Warn(logger.Background(), "media", "photo.delete_failed",
			slog.Int64("car_id", carID),
			slog.String("file", entry),
			slog.String("err", err.Error()),
		)
	}

	// Offer the remaining photos so several can be removed in a row.
	if car, ok := a.store.Load().FindCar(carID); ok {
		if markup := photoDelMarkup(car); markup != nil {
			return renderMenu(c, textPhotoDeleted+" "+textChoosePhotoDel, markup)
		}
	}
	return renderMenu(c, textPhotoDeleted, a.adminMenuMarkup())
}
