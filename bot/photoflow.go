package bot

import (
	"fmt"

	"github.com/a7motors/dealerbot/core/telegram/dialog"
	"github.com/a7motors/dealerbot/core/telegram/keyboard"

	"github.com/a7motors/dealerbot/media"

	tele "gopkg.in/telebot.v4"
)

const statePhotoAwait dialog.State = "photos.await"

const tmpPhotoCarID = "photo_car_id"

func photoLoopMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnDone, Unique: cbPhotosDone, Data: "go"}},
		[]keyboard.InlineBtn{{Text: btnCancel, Unique: cbDlgCancel, Data: "go"}},
	)
}

// registerPhotoFlow wires the looped photo-upload state: every accepted
// photo is saved and persisted, then the same state prompts again until the
// cap is hit or the admin finishes.
func (a *App) registerPhotoFlow() {
	a.registerAdminStep(statePhotoAwait, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputPhoto || in.Photo == nil {
			return retry(statePhotoAwait, textExpectedPhoto, photoLoopMarkup())
		}

		carID, ok := sess.TempInt64(tmpPhotoCarID)
		if !ok {
			return done(textSessionLost, backToMenuMarkup())
		}
		car, found := a.store.Load().FindCar(carID)
		if !found {
			return done(textCarNotFound, backToMenuMarkup())
		}

		// Cap check comes before any byte is downloaded.
		if media.LocalCount(car.Photos) >= media.MaxLocalPhotos {
			return done(textPhotoLimit, backToMenuMarkup())
		}

		name, err := a.photos.SaveUpload(in.Photo, car)
		if err != nil {
			return retry(statePhotoAwait, textPhotoSaveFailed, photoLoopMarkup())
		}
		if err := a.store.AppendPhoto(carID, name); err != nil {
			return retry(statePhotoAwait, textPhotoSaveFailed, photoLoopMarkup())
		}

		count := media.LocalCount(car.Photos) + 1
		if count >= media.MaxLocalPhotos {
			return done(fmt.Sprintf(textPhotoAddedFmt, count, media.MaxLocalPhotos)+"\n"+textPhotoLimit, backToMenuMarkup())
		}
		return retry(statePhotoAwait, fmt.Sprintf(textPhotoAddedFmt, count, media.MaxLocalPhotos), photoLoopMarkup())
	})
}

// handlePhotosDone ends the photo-upload loop from its inline button.
func (a *App) handlePhotosDone(c tele.Context) error {
	a.dialogs.Cancel(c.Sender().ID)
	return renderMenu(c, textAdminMenu, a.adminMenuMarkup())
}
