package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a7motors/dealerbot/core/telegram/dialog"

	"github.com/a7motors/dealerbot/catalog"
)

type fakePhoto struct {
	stored []string
}

func (f *fakePhoto) Ext() string { return ".jpg" }

func (f *fakePhoto) Store(path string) error {
	f.stored = append(f.stored, path)
	return os.WriteFile(path, []byte("jpeg"), 0o644)
}

func feedPhoto(a *App, userID int64, p dialog.Photo) []dialog.Reply {
	return a.dialogs.Feed(userID, dialog.Input{Kind: dialog.InputPhoto, Photo: p})
}

func startPhotoUpload(a *App, carID int64) {
	a.dialogs.Start(adminID, adminName, statePhotoAwait)
	a.withSession(adminID, func(sess *dialog.Session) {
		sess.SetTemp(tmpPhotoCarID, carID)
	})
}

func TestPhotoUploadSavesAndCounts(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 9, Brand: "Kia", Photos: []string{"car_9_1.jpg", "https://cdn.example.com/x.jpg"}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startPhotoUpload(a, 9)
	up := &fakePhoto{}
	replies := feedPhoto(a, adminID, up)

	if len(up.stored) != 1 {
		t.Fatalf("expected one download, got %d", len(up.stored))
	}
	if got := filepath.Base(up.stored[0]); got != "car_9_2.jpg" {
		t.Fatalf("photo name = %s", got)
	}
	saved, _ := a.store.Load().FindCar(9)
	if len(saved.Photos) != 3 || saved.Photos[2] != "car_9_2.jpg" {
		t.Fatalf("photo entry not persisted: %v", saved.Photos)
	}
	if got := a.dialogs.State(adminID); got != statePhotoAwait {
		t.Fatalf("loop should stay open below the cap, state = %s", got)
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "2/5") {
		t.Fatalf("expected 2/5 progress, got %+v", replies)
	}
}

func TestPhotoUploadCapRejectedBeforeDownload(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 2, Brand: "BMW", Photos: []string{
		"car_2_1.jpg", "car_2_2.jpg", "car_2_3.jpg", "car_2_4.jpg", "car_2_5.jpg",
	}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startPhotoUpload(a, 2)
	up := &fakePhoto{}
	replies := feedPhoto(a, adminID, up)

	if len(up.stored) != 0 {
		t.Fatal("full car must be rejected before any byte is downloaded")
	}
	if len(replies) != 1 || replies[0].Text != textPhotoLimit {
		t.Fatalf("expected limit message, got %+v", replies)
	}
	if a.dialogs.InProgress(adminID) {
		t.Fatal("upload loop should close at the cap")
	}
}

func TestPhotoUploadFifthClosesLoop(t *testing.T) {
	a := newTestApp(t)
	car := catalog.Car{ID: 3, Photos: []string{
		"car_3_1.jpg", "car_3_2.jpg", "car_3_3.jpg", "car_3_4.jpg",
	}}
	if err := a.store.Save(catalog.Document{Cars: []catalog.Car{car}}); err != nil {
		t.Fatal(err)
	}

	startPhotoUpload(a, 3)
	replies := feedPhoto(a, adminID, &fakePhoto{})

	if a.dialogs.InProgress(adminID) {
		t.Fatal("fifth photo should finish the loop")
	}
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "5/5") {
		t.Fatalf("expected 5/5 closing message, got %+v", replies)
	}
}

func TestPhotoUploadTextReprompts(t *testing.T) {
	a := newTestApp(t)
	startPhotoUpload(a, 1)

	replies := feedText(a, adminID, "вот фото")
	if got := a.dialogs.State(adminID); got != statePhotoAwait {
		t.Fatalf("state = %s, want to stay awaiting a photo", got)
	}
	if len(replies) != 1 || replies[0].Text != textExpectedPhoto {
		t.Fatalf("expected photo re-prompt, got %+v", replies)
	}
}

func TestPhotoUploadCarDeletedMidLoop(t *testing.T) {
	a := newTestApp(t)
	startPhotoUpload(a, 42) // never existed

	replies := feedPhoto(a, adminID, &fakePhoto{})
	if len(replies) != 1 || replies[0].Text != textCarNotFound {
		t.Fatalf("expected car-gone message, got %+v", replies)
	}
	if a.dialogs.InProgress(adminID) {
		t.Fatal("loop should close when the car is gone")
	}
}
