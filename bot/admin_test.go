package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a7motors/dealerbot/catalog"
)

func TestCarIDPromptValidation(t *testing.T) {
	a := newTestApp(t)
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{{ID: 7, Brand: "VW"}}}); err != nil {
		t.Fatal(err)
	}
	startAdminFlow(a, statePhotoCarID)

	replies := feedText(a, adminID, "abc")
	if got := a.dialogs.State(adminID); got != statePhotoCarID {
		t.Fatalf("non-numeric id should re-prompt, state = %s", got)
	}
	if len(replies) != 1 || replies[0].Text != textBadCarID {
		t.Fatalf("expected bad-id message, got %+v", replies)
	}

	feedText(a, adminID, "99")
	if got := a.dialogs.State(adminID); got != statePhotoCarID {
		t.Fatalf("unknown id should re-prompt, state = %s", got)
	}

	feedText(a, adminID, " 7 ")
	if got := a.dialogs.State(adminID); got != statePhotoAwait {
		t.Fatalf("valid id should enter the upload loop, state = %s", got)
	}
}

func TestCarIDPromptRejectsFullCar(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 1, Photos: []string{
		"car_1_1.jpg", "car_1_2.jpg", "car_1_3.jpg", "car_1_4.jpg", "car_1_5.jpg",
	}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}
	startAdminFlow(a, statePhotoCarID)

	replies := feedText(a, adminID, "1")
	if len(replies) != 1 || replies[0].Text != textPhotoLimit {
		t.Fatalf("full car should be refused at entry, got %+v", replies)
	}
	if a.dialogs.InProgress(adminID) {
		t.Fatal("refused prompt should close the dialog")
	}
}

func TestDeleteCarCascadesPhotos(t *testing.T) {
	a := newTestApp(t)
	dir := a.cfg.Catalog.PhotosDir
	for _, name := range []string{"car_4_1.jpg", "car_4_2.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	car := catalog.Car{ID: 4, Brand: "Ford", Photos: []string{"car_4_1.jpg", "car_4_2.jpg", "https://cdn.example.com/a.jpg"}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startAdminFlow(a, stateDeleteCarID)
	replies := feedText(a, adminID, "4")

	if len(replies) != 1 || replies[0].Text != textCarDeleted {
		t.Fatalf("expected delete confirmation, got %+v", replies)
	}
	if len(a.store.Load().Cars) != 0 {
		t.Fatal("car not removed from document")
	}
	for _, name := range []string{"car_4_1.jpg", "car_4_2.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("photo %s should be deleted", name)
		}
	}
}

func TestPhotoDeletePrompt(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 8, Photos: []string{"car_8_1.jpg", "https://cdn.example.com/x.jpg", "car_8_2.jpg"}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startAdminFlow(a, statePhotoDelCarID)
	replies := feedText(a, adminID, "8")

	if len(replies) != 1 || replies[0].Text != textChoosePhotoDel {
		t.Fatalf("expected picker prompt, got %+v", replies)
	}
	markup := replies[0].Markup
	if markup == nil {
		t.Fatal("picker needs a keyboard")
	}
	// Two local photos plus the back row; the URL entry is not deletable.
	if got := len(markup.InlineKeyboard); got != 3 {
		t.Fatalf("picker rows = %d, want 3", got)
	}
	if a.dialogs.InProgress(adminID) {
		t.Fatal("picker continues via callbacks, the prompt dialog should close")
	}
}

func TestPhotoDeletePromptNoLocalPhotos(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 9, Photos: []string{"https://cdn.example.com/x.jpg"}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startAdminFlow(a, statePhotoDelCarID)
	replies := feedText(a, adminID, "9")
	if len(replies) != 1 || replies[0].Text != textNoLocalPhotos {
		t.Fatalf("expected no-photos message, got %+v", replies)
	}
}

func TestToggleAvailability(t *testing.T) {
	a := newTestApp(t)
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{{ID: 6, Brand: "Opel", Available: true}}}); err != nil {
		t.Fatal(err)
	}

	startAdminFlow(a, stateToggleCarID)
	replies := feedText(a, adminID, "6")

	car, _ := a.store.Load().FindCar(6)
	if car.Available {
		t.Fatal("toggle should hide an available car")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "снят с продажи") {
		t.Fatalf("expected hidden status, got %+v", replies)
	}

	startAdminFlow(a, stateToggleCarID)
	replies = feedText(a, adminID, "6")
	car, _ = a.store.Load().FindCar(6)
	if !car.Available {
		t.Fatal("second toggle should restore the car")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "снова в продаже") {
		t.Fatalf("expected restored status, got %+v", replies)
	}
}
