package bot

import (
	"fmt"

	"github.com/a7motors/dealerbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnCatalog, Unique: cbMenu, Data: "catalog"}},
		[]keyboard.InlineBtn{{Text: btnFilters, Unique: cbMenu, Data: "filters"}},
		[]keyboard.InlineBtn{{Text: btnInquiry, Unique: cbMenu, Data: "inquiry"}},
		[]keyboard.InlineBtn{{Text: btnContacts, Unique: cbMenu, Data: "contacts"}},
	)
}

func contactsMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnInquiry, Unique: cbMenu, Data: "inquiry"}},
		[]keyboard.InlineBtn{{Text: btnBack, Unique: cbMenu, Data: "main"}},
	)
}

func backToMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnBack, Unique: cbMenu, Data: "main"},
	})
}

func (a *App) handleStart(c tele.Context) error {
	// A command always interrupts whatever dialog was open.
	a.dialogs.Cancel(c.Sender().ID)
	if err := c.Send(textGreeting); err != nil {
		return err
	}
	return c.Send(textMainMenu, mainMenuMarkup())
}

func (a *App) handleHelp(c tele.Context) error {
	return c.Send(textHelp, backToMenuMarkup())
}

func (a *App) handleCancel(c tele.Context) error {
	if !a.dialogs.Cancel(c.Sender().ID) {
		return c.Send(textNothingCancel)
	}
	return c.Send(textCancelled, backToMenuMarkup())
}

func (a *App) handleMenuCallback(c tele.Context) error {
	switch payload(c) {
	case "main":
		return a.showMainMenu(c)
	case "catalog":
		return a.openCatalog(c, nil)
	case "filters":
		return a.showFiltersMenu(c)
	case "inquiry":
		return a.startInquiry(c, nil)
	case "contacts":
		return a.showContacts(c)
	}
	return c.Send(textUnknownAction)
}

func (a *App) showMainMenu(c tele.Context) error {
	return renderMenu(c, textMainMenu, mainMenuMarkup())
}

func (a *App) showContacts(c tele.Context) error {
	contacts := a.store.Load().Contacts
	text := "Наши контакты:\n\n"
	if contacts.Phone != "" {
		text += fmt.Sprintf("📞 %s\n", contacts.Phone)
	}
	if contacts.WhatsApp != "" {
		text += fmt.Sprintf("💬 WhatsApp: %s\n", contacts.WhatsApp)
	}
	if contacts.Email != "" {
		text += fmt.Sprintf("✉️ %s\n", contacts.Email)
	}
	if contacts.Address != "" {
		text += fmt.Sprintf("📍 %s\n", contacts.Address)
	}
	if contacts.WorkHours != "" {
		text += fmt.Sprintf("🕘 %s\n", contacts.WorkHours)
	}
	return renderMenu(c, text, contactsMarkup())
}
