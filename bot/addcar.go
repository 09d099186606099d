package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a7motors/dealerbot/core/telegram/dialog"
	"github.com/a7motors/dealerbot/core/telegram/keyboard"

	"github.com/a7motors/dealerbot/catalog"

	tele "gopkg.in/telebot.v4"
)

const (
	stateAddBrand        dialog.State = "addcar.brand"
	stateAddModel        dialog.State = "addcar.model"
	stateAddYear         dialog.State = "addcar.year"
	stateAddPrice        dialog.State = "addcar.price"
	stateAddBody         dialog.State = "addcar.body"
	stateAddEngine       dialog.State = "addcar.engine"
	stateAddVolume       dialog.State = "addcar.volume"
	stateAddTransmission dialog.State = "addcar.transmission"
	stateAddColor        dialog.State = "addcar.color"
	stateAddMileage      dialog.State = "addcar.mileage"
	stateAddDescription  dialog.State = "addcar.description"
	stateAddFeatures     dialog.State = "addcar.features"
)

const tmpDraftCar = "draft_car"

// registerAdminStep wraps a step with the allow-list re-check: privileged
// dialogs verify the identity on every turn, not just at entry.
func (a *App) registerAdminStep(st dialog.State, fn dialog.StepFunc) {
	a.dialogs.RegisterStep(st, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if !a.allowed(sess) {
			return done(textAccessDenied, nil)
		}
		return fn(sess, in)
	})
}

func draftCar(sess *dialog.Session) *catalog.Car {
	if v, ok := sess.Temp(tmpDraftCar); ok {
		if car, ok := v.(*catalog.Car); ok {
			return car
		}
	}
	car := &catalog.Car{}
	sess.SetTemp(tmpDraftCar, car)
	return car
}

func (a *App) choiceMarkup(options []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, keyboard.InlineBtn{Text: opt, Unique: cbChoice, Data: opt})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	markup.InlineKeyboard = append(markup.InlineKeyboard,
		keyboard.InlineButtonsRows([]keyboard.InlineBtn{
			{Text: btnCancel, Unique: cbDlgCancel, Data: "go"},
		}).InlineKeyboard...)
	return markup
}

// startAddCar opens the add-car wizard for an allow-listed admin.
func (a *App) startAddCar(c tele.Context) error {
	user := c.Sender()
	a.dialogs.Start(user.ID, user.Username, stateAddBrand)
	return renderMenu(c, textAskBrand, cancelMarkup())
}

func (a *App) registerAddCarFlow() {
	textStep := func(st, next dialog.State, prompt string, markup func() *tele.ReplyMarkup, assign func(*catalog.Car, string)) {
		a.registerAdminStep(st, func(sess *dialog.Session, in dialog.Input) dialog.Step {
			if in.Kind != dialog.InputText || strings.TrimSpace(in.Text) == "" {
				return retry(st, textExpectedText, cancelMarkup())
			}
			assign(draftCar(sess), strings.TrimSpace(in.Text))
			return advance(next, prompt, markup())
		})
	}

	intStep := func(st, next dialog.State, badText, prompt string, markup func() *tele.ReplyMarkup, assign func(*catalog.Car, int)) {
		a.registerAdminStep(st, func(sess *dialog.Session, in dialog.Input) dialog.Step {
			if in.Kind != dialog.InputText {
				return retry(st, textExpectedText, cancelMarkup())
			}
			val, err := strconv.Atoi(strings.TrimSpace(in.Text))
			if err != nil || val < 0 {
				return retry(st, badText, cancelMarkup())
			}
			assign(draftCar(sess), val)
			return advance(next, prompt, markup())
		})
	}

	choiceStep := func(st, next dialog.State, prompt string, markup func() *tele.ReplyMarkup, assign func(*catalog.Car, string)) {
		a.registerAdminStep(st, func(sess *dialog.Session, in dialog.Input) dialog.Step {
			if in.Kind != dialog.InputChoice || in.Text == "" {
				return retry(st, textExpectedChoice, a.currentChoiceMarkup(st))
			}
			assign(draftCar(sess), in.Text)
			return advance(next, prompt, markup())
		})
	}

	plain := cancelMarkup

	textStep(stateAddBrand, stateAddModel, textAskModel, plain,
		func(car *catalog.Car, v string) { car.Brand = v })
	textStep(stateAddModel, stateAddYear, textAskYear, plain,
		func(car *catalog.Car, v string) { car.Model = v })
	intStep(stateAddYear, stateAddPrice, textBadYear, textAskPrice, plain,
		func(car *catalog.Car, v int) { car.Year = v })
	// Price success branches into the button-choice part of the wizard.
	intStep(stateAddPrice, stateAddBody, textBadPrice, textAskBody,
		func() *tele.ReplyMarkup { return a.choiceMarkup(a.cfg.Catalog.BodyTypes) },
		func(car *catalog.Car, v int) { car.Price = v })
	choiceStep(stateAddBody, stateAddEngine, textAskEngine,
		func() *tele.ReplyMarkup { return a.choiceMarkup(a.cfg.Catalog.EngineTypes) },
		func(car *catalog.Car, v string) { car.BodyType = v })
	choiceStep(stateAddEngine, stateAddVolume, textAskVolume, plain,
		func(car *catalog.Car, v string) { car.EngineType = v })

	a.registerAdminStep(stateAddVolume, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputText {
			return retry(stateAddVolume, textExpectedText, cancelMarkup())
		}
		val, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(in.Text), ",", "."), 64)
		if err != nil || val <= 0 {
			return retry(stateAddVolume, textBadVolume, cancelMarkup())
		}
		draftCar(sess).EngineVolume = val
		return advance(stateAddTransmission, textAskTransmission, a.choiceMarkup(a.cfg.Catalog.Transmissions))
	})

	choiceStep(stateAddTransmission, stateAddColor, textAskColor, plain,
		func(car *catalog.Car, v string) { car.Transmission = v })
	textStep(stateAddColor, stateAddMileage, textAskMileage, plain,
		func(car *catalog.Car, v string) { car.Color = v })
	intStep(stateAddMileage, stateAddDescription, textBadMileage, textAskDescription, plain,
		func(car *catalog.Car, v int) { car.Mileage = v })
	textStep(stateAddDescription, stateAddFeatures, textAskFeatures, plain,
		func(car *catalog.Car, v string) { car.Description = v })

	a.registerAdminStep(stateAddFeatures, func(sess *dialog.Session, in dialog.Input) dialog.Step {
		if in.Kind != dialog.InputText {
			return retry(stateAddFeatures, textExpectedText, cancelMarkup())
		}
		car := draftCar(sess)
		raw := strings.TrimSpace(in.Text)
		if raw != "/skip" && raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if f := strings.TrimSpace(part); f != "" {
					car.Features = append(car.Features, f)
				}
			}
		}
		return a.finishAddCar(car)
	})
}

// currentChoiceMarkup rebuilds the keyboard for a choice state so a
// mismatched input can re-prompt with the same buttons.
func (a *App) currentChoiceMarkup(st dialog.State) *tele.ReplyMarkup {
	switch st {
	case stateAddBody:
		return a.choiceMarkup(a.cfg.Catalog.BodyTypes)
	case stateAddEngine:
		return a.choiceMarkup(a.cfg.Catalog.EngineTypes)
	case stateAddTransmission:
		return a.choiceMarkup(a.cfg.Catalog.Transmissions)
	}
	return cancelMarkup()
}

// finishAddCar validates the completed draft and persists it. A draft with
// missing required fields aborts without touching the document.
func (a *App) finishAddCar(car *catalog.Car) dialog.Step {
	if missing := missingCarFields(car); len(missing) > 0 {
		return done(fmt.Sprintf(textMissingFieldsFmt, strings.Join(missing, ", ")), backToMenuMarkup())
	}
	car.Available = true
	saved, err := a.store.AddCar(*car)
	if err != nil {
		return done(textCarSaveFailed, backToMenuMarkup())
	}
	return done(fmt.Sprintf(textCarSavedFmt, saved.ID), backToMenuMarkup())
}

func missingCarFields(car *catalog.Car) []string {
	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(car.Brand != "", "марка")
	check(car.Model != "", "модель")
	check(car.Year > 0, "год")
	check(car.Price > 0, "цена")
	check(car.BodyType != "", "кузов")
	check(car.EngineType != "", "двигатель")
	check(car.EngineVolume > 0, "объём")
	check(car.Transmission != "", "коробка")
	check(car.Color != "", "цвет")
	check(car.Mileage >= 0, "пробег")
	check(car.Description != "", "описание")
	return missing
}
