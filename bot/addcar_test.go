package bot

import (
	"path/filepath"
	"strings"
	"testing"

	coreconfig "github.com/a7motors/dealerbot/core/config"
	"github.com/a7motors/dealerbot/core/telegram/dialog"

	"github.com/a7motors/dealerbot/catalog"
)

const (
	adminID   = int64(1)
	adminName = "boss"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "test-token"
	cfg.Admins.Allowlist = []string{"1", "@chief"}
	cfg.Catalog.DataFile = filepath.Join(dir, "cars.json")
	cfg.Catalog.PhotosDir = filepath.Join(dir, "photos")
	if err := coreconfig.Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func feedText(a *App, userID int64, text string) []dialog.Reply {
	return a.dialogs.Feed(userID, dialog.Input{Kind: dialog.InputText, Text: text})
}

func feedChoice(a *App, userID int64, value string) []dialog.Reply {
	return a.dialogs.Feed(userID, dialog.Input{Kind: dialog.InputChoice, Text: value})
}

func startAdminFlow(a *App, st dialog.State) {
	a.dialogs.Start(adminID, adminName, st)
}

func TestAddCarYearValidation(t *testing.T) {
	a := newTestApp(t)
	startAdminFlow(a, stateAddYear)

	replies := feedText(a, adminID, "abc")
	if got := a.dialogs.State(adminID); got != stateAddYear {
		t.Fatalf("state advanced on bad year: %s", got)
	}
	if len(replies) != 1 || replies[0].Text != textBadYear {
		t.Fatalf("expected year re-prompt, got %+v", replies)
	}
	a.withSession(adminID, func(sess *dialog.Session) {
		if draftCar(sess).Year != 0 {
			t.Fatal("draft year mutated by invalid input")
		}
	})

	feedText(a, adminID, "2020")
	if got := a.dialogs.State(adminID); got != stateAddPrice {
		t.Fatalf("state = %s, expected price after valid year", got)
	}
	a.withSession(adminID, func(sess *dialog.Session) {
		if draftCar(sess).Year != 2020 {
			t.Fatal("valid year not written to draft")
		}
	})
}

func TestAddCarFullFlowPersists(t *testing.T) {
	a := newTestApp(t)
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{{ID: 4, Brand: "Old", Available: true}}}); err != nil {
		t.Fatal(err)
	}

	startAdminFlow(a, stateAddBrand)
	feedText(a, adminID, "Toyota")
	feedText(a, adminID, "Camry")
	feedText(a, adminID, "2019")
	feedText(a, adminID, "18000")
	feedChoice(a, adminID, "Седан")
	feedChoice(a, adminID, "Бензин")
	feedText(a, adminID, "2.5")
	feedChoice(a, adminID, "Автомат")
	feedText(a, adminID, "Белый")
	feedText(a, adminID, "64000")
	feedText(a, adminID, "Один владелец, не бит")
	replies := feedText(a, adminID, "Климат-контроль, Камера")

	if a.dialogs.InProgress(adminID) {
		t.Fatal("flow should be finished")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "id 5") {
		t.Fatalf("expected saved confirmation with new id, got %+v", replies)
	}

	car, ok := a.store.Load().FindCar(5)
	if !ok {
		t.Fatal("car not persisted")
	}
	if !car.Available {
		t.Fatal("new car must be available")
	}
	if car.Brand != "Toyota" || car.Year != 2019 || car.Price != 18000 {
		t.Fatalf("car fields wrong: %+v", car)
	}
	if car.EngineVolume != 2.5 || car.Transmission != "Автомат" {
		t.Fatalf("car fields wrong: %+v", car)
	}
	if len(car.Features) != 2 {
		t.Fatalf("features = %v", car.Features)
	}
}

func TestAddCarFeaturesSkip(t *testing.T) {
	a := newTestApp(t)
	startAdminFlow(a, stateAddFeatures)
	a.withSession(adminID, func(sess *dialog.Session) {
		*draftCar(sess) = catalog.Car{
			Brand: "Kia", Model: "Rio", Year: 2022, Price: 30000,
			BodyType: "Седан", EngineType: "Бензин", EngineVolume: 1.6,
			Transmission: "Автомат", Color: "Серый", Mileage: 10, Description: "ок",
		}
	})

	feedText(a, adminID, "/skip")

	car, ok := a.store.Load().FindCar(1)
	if !ok {
		t.Fatal("car not persisted after feature skip")
	}
	if len(car.Features) != 0 {
		t.Fatalf("features should be empty, got %v", car.Features)
	}
}

func TestAddCarMissingFieldAborts(t *testing.T) {
	a := newTestApp(t)
	startAdminFlow(a, stateAddFeatures)
	a.withSession(adminID, func(sess *dialog.Session) {
		// Color deliberately left empty.
		*draftCar(sess) = catalog.Car{
			Brand: "Kia", Model: "Rio", Year: 2022, Price: 30000,
			BodyType: "Седан", EngineType: "Бензин", EngineVolume: 1.6,
			Transmission: "Автомат", Mileage: 10, Description: "ок",
		}
	})

	replies := feedText(a, adminID, "/skip")

	if len(a.store.Load().Cars) != 0 {
		t.Fatal("document must not be mutated when required fields are missing")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "цвет") {
		t.Fatalf("abort message should list the missing field, got %+v", replies)
	}
	if a.dialogs.InProgress(adminID) {
		t.Fatal("aborted flow should not stay open")
	}
}

func TestAdminStepRejectsUnlistedIdentityMidDialog(t *testing.T) {
	a := newTestApp(t)
	// Session exists (the user entered the flow earlier), but the identity
	// is no longer on the allow-list at step time.
	a.dialogs.Start(99, "stranger", stateAddBrand)

	replies := feedText(a, 99, "Toyota")
	if len(replies) != 1 || replies[0].Text != textAccessDenied {
		t.Fatalf("expected denial, got %+v", replies)
	}
	if a.dialogs.InProgress(99) {
		t.Fatal("denied dialog should be terminated")
	}
}

func TestAdminStepAllowsHandleIdentity(t *testing.T) {
	a := newTestApp(t)
	a.dialogs.Start(50, "Chief", stateAddBrand)

	feedText(a, 50, "BMW")
	if got := a.dialogs.State(50); got != stateAddModel {
		t.Fatalf("handle-listed admin should advance, state = %s", got)
	}
}

func TestMissingCarFields(t *testing.T) {
	car := &catalog.Car{Brand: "A", Model: "B", Year: 1, Price: 1, BodyType: "c",
		EngineType: "d", EngineVolume: 1, Transmission: "e", Color: "f", Mileage: 0, Description: "g"}
	if got := missingCarFields(car); len(got) != 0 {
		t.Fatalf("complete car reported missing: %v", got)
	}
	car.Description = ""
	car.Model = ""
	got := missingCarFields(car)
	if len(got) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", got)
	}
}
