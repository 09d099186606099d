package bot

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/a7motors/dealerbot/core/logger"
	"github.com/a7motors/dealerbot/core/telegram/callbacks"
	tghelpers "github.com/a7motors/dealerbot/core/telegram/helpers"
	"github.com/a7motors/dealerbot/core/telegram/keyboard"
	"log/slog"

	"github.com/a7motors/dealerbot/catalog"

	tele "gopkg.in/telebot.v4"
)

// cursor is one user's browsing position: the snapshot of cars taken when
// the filter ran, plus the current car and photo indexes. Catalog changes
// after the snapshot do not affect an open cursor.
type cursor struct {
	cars     []catalog.Car
	carIdx   int
	photoIdx int
	filters  catalog.Filters
}

type cursorTable struct {
	mu sync.RWMutex
	m  map[int64]*cursor
}

func newCursorTable() *cursorTable {
	return &cursorTable{m: make(map[int64]*cursor)}
}

func (t *cursorTable) get(userID int64) (*cursor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cur, ok := t.m[userID]
	return cur, ok
}

func (t *cursorTable) put(userID int64, cur *cursor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[userID] = cur
}

// renderKey addresses one cached photo upload: a concrete car photo or the
// shared placeholder (zero key).
type renderKey struct {
	carID    int64
	photoIdx int
}

var placeholderKey = renderKey{}

// renderCache maps photos to transport file ids so repeat renders reuse the
// uploaded bytes. Process-lifetime, unbounded, purely best-effort: a miss
// just re-uploads.
type renderCache struct {
	mu sync.RWMutex
	m  map[renderKey]string
}

func newRenderCache() *renderCache {
	return &renderCache{m: make(map[renderKey]string)}
}

func (r *renderCache) get(k renderKey) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.m[k]
	return id, ok
}

func (r *renderCache) put(k renderKey, fileID string) {
	if fileID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[k] = fileID
}

// clampPhotoIndex applies the reset-to-zero rule: an index beyond the photo
// count starts over at the first photo.
func clampPhotoIndex(idx, count int) int {
	if count <= 0 {
		return 0
	}
	if idx < 0 || idx >= count {
		return 0
	}
	return idx
}

func carCaption(car catalog.Car, pos, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, %d г.\n", car.Brand, car.Model, car.Year)
	fmt.Fprintf(&b, "💰 %d BYN\n", car.Price)
	fmt.Fprintf(&b, "🚘 %s, %s %.1f л, %s\n", car.BodyType, car.EngineType, car.EngineVolume, car.Transmission)
	fmt.Fprintf(&b, "🎨 %s, пробег %d км\n", car.Color, car.Mileage)
	if car.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", car.Description)
	}
	if len(car.Features) > 0 {
		fmt.Fprintf(&b, "\nКомплектация: %s\n", strings.Join(car.Features, ", "))
	}
	fmt.Fprintf(&b, "\n%d из %d", pos+1, total)
	return b.String()
}

// browseMarkup builds the navigation keyboard for the current position.
// Car navigation is bounded; photo navigation appears only with more than
// one photo.
func browseMarkup(cur *cursor, photoCount int) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn

	var carRow []keyboard.InlineBtn
	if cur.carIdx > 0 {
		carRow = append(carRow, keyboard.InlineBtn{
			Text: btnPrevCar, Unique: cbCarNav, Data: strconv.Itoa(cur.carIdx - 1),
		})
	}
	if cur.carIdx < len(cur.cars)-1 {
		carRow = append(carRow, keyboard.InlineBtn{
			Text: btnNextCar, Unique: cbCarNav, Data: strconv.Itoa(cur.carIdx + 1),
		})
	}
	if len(carRow) > 0 {
		rows = append(rows, carRow)
	}

	if photoCount > 1 {
		var photoRow []keyboard.InlineBtn
		if cur.photoIdx > 0 {
			photoRow = append(photoRow, keyboard.InlineBtn{
				Text: btnPrevPhoto, Unique: cbPhotoNav, Data: strconv.Itoa(cur.photoIdx - 1),
			})
		}
		if cur.photoIdx < photoCount-1 {
			photoRow = append(photoRow, keyboard.InlineBtn{
				Text: btnNextPhoto, Unique: cbPhotoNav, Data: strconv.Itoa(cur.photoIdx + 1),
			})
		}
		if len(photoRow) > 0 {
			rows = append(rows, photoRow)
		}
	}

	rows = append(rows, []keyboard.InlineBtn{
		{Text: btnInquire, Unique: cbInquire, Data: strconv.Itoa(cur.carIdx)},
	})
	rows = append(rows, []keyboard.InlineBtn{
		{Text: btnBack, Unique: cbMenu, Data: "main"},
	})
	return keyboard.InlineButtonsRows(rows...)
}

// openCatalog snapshots the filtered result set into a fresh cursor and
// renders the first car.
func (a *App) openCatalog(c tele.Context, filters *catalog.Filters) error {
	f := catalog.Filters{}
	if filters != nil {
		f = *filters
	}
	cars := a.engine.Cars(f)
	if len(cars) == 0 {
		return renderMenu(c, textCatalogEmpty, backToMenuMarkup())
	}
	cur := &cursor{cars: cars, filters: f}
	a.cursors.put(c.Sender().ID, cur)
	return a.renderCar(c, cur)
}

func (a *App) handleCarNav(c tele.Context) error {
	cur, ok := a.cursors.get(c.Sender().ID)
	if !ok {
		return renderMenu(c, textSessionLost, backToMenuMarkup())
	}
	idx, err := callbacks.PayloadInt(c)
	if err != nil || idx < 0 || idx >= len(cur.cars) {
		return renderMenu(c, textCarNotFound, backToMenuMarkup())
	}
	cur.carIdx = idx
	cur.photoIdx = 0
	return a.renderCar(c, cur)
}

func (a *App) handlePhotoNav(c tele.Context) error {
	cur, ok := a.cursors.get(c.Sender().ID)
	if !ok {
		return renderMenu(c, textSessionLost, backToMenuMarkup())
	}
	idx, err := callbacks.PayloadInt(c)
	if err != nil {
		idx = 0
	}
	cur.photoIdx = idx
	return a.renderCar(c, cur)
}

// renderCar renders the cursor's current car and photo into the chat,
// editing the previous render in place when possible.
func (a *App) renderCar(c tele.Context, cur *cursor) error {
	if cur.carIdx < 0 || cur.carIdx >= len(cur.cars) {
		return renderMenu(c, textSessionLost, backToMenuMarkup())
	}
	car := cur.cars[cur.carIdx]
	cur.photoIdx = clampPhotoIndex(cur.photoIdx, len(car.Photos))

	photo, key := a.resolvePhoto(cur, car)
	photo.Caption = carCaption(car, cur.carIdx, len(cur.cars))
	markup := browseMarkup(cur, len(car.Photos))

	msg, err := a.sendOrEditPhoto(c, photo, markup)
	if err != nil {
		// Photo path exhausted: degrade to a plain text render.
		logger.Warn(tghelpers.BuildContext(c), "tg", "render.photo_failed",
			slog.Int64("car_id", car.ID),
			slog.String("err", err.Error()),
		)
		return renderMenu(c, photo.Caption, markup)
	}
	if msg != nil && msg.Photo != nil {
		a.renders.put(key, msg.Photo.FileID)
	}
	return nil
}

// resolvePhoto picks the photo to render, migrating URL entries and falling
// back to the placeholder. It returns the sendable photo plus its cache key.
func (a *App) resolvePhoto(cur *cursor, car catalog.Car) (*tele.Photo, renderKey) {
	if len(car.Photos) == 0 {
		return a.placeholderPhoto(), placeholderKey
	}

	entry := car.Photos[cur.photoIdx]
	path, migrated := a.photos.Resolve(car, entry, cur.photoIdx+1)
	if migrated != "" {
		// Rewrite the catalog entry in place so the fetch happens once.
		if fresh, ok := a.store.Load().FindCar(car.ID); ok {
			if cur.photoIdx < len(fresh.Photos) && fresh.Photos[cur.photoIdx] == entry {
				fresh.Photos[cur.photoIdx] = migrated
				if err := a.store.UpdateCar(fresh); err != nil {
					logger.Warn(logger.Background(), "media", "photo.rewrite_failed",
						slog.Int64("car_id", car.ID),
						slog.String("err", err.Error()),
					)
				}
			}
		}
		cur.cars[cur.carIdx].Photos[cur.photoIdx] = migrated
	}

	if path == a.photos.PlaceholderPath() {
		return a.placeholderPhoto(), placeholderKey
	}
	key := renderKey{carID: car.ID, photoIdx: cur.photoIdx}
	if fileID, ok := a.renders.get(key); ok {
		return &tele.Photo{File: tele.File{FileID: fileID}}, key
	}
	return &tele.Photo{File: tele.FromDisk(path)}, key
}

func (a *App) placeholderPhoto() *tele.Photo {
	if fileID, ok := a.renders.get(placeholderKey); ok {
		return &tele.Photo{File: tele.File{FileID: fileID}}
	}
	return &tele.Photo{File: tele.FromDisk(a.photos.PlaceholderPath())}
}

// sendOrEditPhoto runs the render fallback chain: edit in place, then
// delete-and-send, then plain send. The sent message is returned so the
// photo's transport file id can be cached.
func (a *App) sendOrEditPhoto(c tele.Context, photo *tele.Photo, markup *tele.ReplyMarkup) (*tele.Message, error) {
	bot := a.currentBot()
	if bot == nil {
		// No transport handle (tests): fall back to context sends without
		// file id capture.
		if c.Callback() != nil {
			return nil, tghelpers.RenderOrReplace(c, photo, markup)
		}
		return nil, c.Send(photo, markup)
	}

	if c.Callback() != nil && c.Message() != nil {
		msg, err := bot.Edit(c.Message(), photo, markup)
		if err == nil {
			return msg, nil
		}
		if tghelpers.IsNotModified(err) {
			return nil, nil
		}
		if !tghelpers.IsEditRefused(err) {
			return nil, err
		}
		if delErr := bot.Delete(c.Message()); delErr != nil {
			logger.Warn(tghelpers.BuildContext(c), "tg", "render.delete_failed",
				slog.String("err", delErr.Error()),
			)
		}
	}
	return bot.Send(c.Chat(), photo, markup)
}
