package bot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/a7motors/dealerbot/core/telegram/keyboard"

	"github.com/a7motors/dealerbot/catalog"

	tele "gopkg.in/telebot.v4"
)

// filterTable keeps each user's in-progress filter selection until they hit
// "show".
type filterTable struct {
	mu sync.Mutex
	m  map[int64]*catalog.Filters
}

func newFilterTable() *filterTable {
	return &filterTable{m: make(map[int64]*catalog.Filters)}
}

func (t *filterTable) get(userID int64) *catalog.Filters {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.m[userID]
	if !ok {
		f = &catalog.Filters{}
		t.m[userID] = f
	}
	return f
}

func (t *filterTable) reset(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, userID)
}

const fieldPrice = "price"

func (a *App) showFiltersMenu(c tele.Context) error {
	f := a.filters.get(c.Sender().ID)
	return renderMenu(c, textFiltersMenu, a.filtersMenuMarkup(f))
}

func (a *App) filtersMenuMarkup(f *catalog.Filters) *tele.ReplyMarkup {
	label := func(base, current string) string {
		if current == "" {
			return base
		}
		return fmt.Sprintf("%s: %s", base, current)
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: label(btnFilterBrand, f.Brand), Unique: cbFilterField, Data: string(catalog.FieldBrand)}},
		[]keyboard.InlineBtn{{Text: label(btnFilterPrice, f.PriceBucket), Unique: cbFilterField, Data: fieldPrice}},
		[]keyboard.InlineBtn{{Text: label(btnFilterBody, f.BodyType), Unique: cbFilterField, Data: string(catalog.FieldBodyType)}},
		[]keyboard.InlineBtn{{Text: label(btnFilterEngine, f.EngineType), Unique: cbFilterField, Data: string(catalog.FieldEngineType)}},
		[]keyboard.InlineBtn{{Text: label(btnFilterGearbox, f.Transmission), Unique: cbFilterField, Data: string(catalog.FieldTransmission)}},
		[]keyboard.InlineBtn{
			{Text: btnFilterShow, Unique: cbFilterShow, Data: "go"},
			{Text: btnFilterReset, Unique: cbFilterReset, Data: "go"},
		},
		[]keyboard.InlineBtn{{Text: btnFilterCount, Unique: cbFilterCount, Data: "go"}},
		[]keyboard.InlineBtn{{Text: btnBack, Unique: cbMenu, Data: "main"}},
	)
}

func (a *App) handleFilterField(c tele.Context) error {
	field := payload(c)

	var options []string
	if field == fieldPrice {
		for _, b := range a.engine.Buckets() {
			options = append(options, b.Label)
		}
	} else {
		options = a.engine.Options(catalog.FilterField(field))
	}
	if len(options) == 0 {
		return a.showFiltersMenu(c)
	}

	buttons := make([]keyboard.InlineBtn, 0, len(options)+1)
	for _, opt := range options {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   opt,
			Unique: cbFilterValue,
			Data:   field + "|" + opt,
		})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	markup.InlineKeyboard = append(markup.InlineKeyboard,
		keyboard.InlineButtonsRows([]keyboard.InlineBtn{
			{Text: btnBack, Unique: cbMenu, Data: "filters"},
		}).InlineKeyboard...)
	return renderMenu(c, textFiltersMenu, markup)
}

func (a *App) handleFilterValue(c tele.Context) error {
	parts := strings.SplitN(payload(c), "|", 2)
	if len(parts) != 2 {
		return a.showFiltersMenu(c)
	}
	field, value := parts[0], parts[1]

	f := a.filters.get(c.Sender().ID)
	switch field {
	case string(catalog.FieldBrand):
		f.Brand = value
	case fieldPrice:
		f.PriceBucket = value
	case string(catalog.FieldBodyType):
		f.BodyType = value
	case string(catalog.FieldEngineType):
		f.EngineType = value
	case string(catalog.FieldTransmission):
		f.Transmission = value
	}
	return renderMenu(c, textFiltersMenu, a.filtersMenuMarkup(f))
}

func (a *App) handleFilterShow(c tele.Context) error {
	f := a.filters.get(c.Sender().ID)
	return a.openCatalog(c, f)
}

// handleFilterCount answers with the number of available cars matching the
// pending filter without opening the catalog.
func (a *App) handleFilterCount(c tele.Context) error {
	f := a.filters.get(c.Sender().ID)
	count := len(a.engine.Cars(*f))
	return renderMenu(c, fmt.Sprintf(textFoundCountFmt, count), a.filtersMenuMarkup(f))
}

func (a *App) handleFilterReset(c tele.Context) error {
	a.filters.reset(c.Sender().ID)
	return a.showFiltersMenu(c)
}
