package media

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/a7motors/dealerbot/core/config"

	"github.com/a7motors/dealerbot/catalog"
)

func testLibrary(t *testing.T) *Library {
	t.Helper()
	cfg := config.CatalogConfig{
		PhotosDir:   t.TempDir(),
		Placeholder: "placeholder.jpg",
	}
	return NewLibrary(cfg, http.DefaultClient)
}

func writePhoto(t *testing.T, l *Library, name string) {
	t.Helper()
	if err := os.WriteFile(l.Path(name), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPhotoName(t *testing.T) {
	tests := []struct {
		carID int64
		seq   int
		ext   string
		want  string
	}{
		{7, 1, ".jpg", "car_7_1.jpg"},
		{7, 3, "png", "car_7_3.png"},
		{12, 2, "", "car_12_2.jpg"},
	}
	for _, tc := range tests {
		if got := PhotoName(tc.carID, tc.seq, tc.ext); got != tc.want {
			t.Fatalf("PhotoName(%d, %d, %q) = %q, want %q", tc.carID, tc.seq, tc.ext, got, tc.want)
		}
	}
}

func TestLocalCountIgnoresURLs(t *testing.T) {
	photos := []string{"car_1_1.jpg", "https://example.com/a.jpg", "car_1_2.jpg", "http://example.com/b.png"}
	if got := LocalCount(photos); got != 2 {
		t.Fatalf("LocalCount = %d, want 2", got)
	}
	if LocalCount(nil) != 0 {
		t.Fatal("LocalCount(nil) should be 0")
	}
}

func TestResolveLocalEntry(t *testing.T) {
	l := testLibrary(t)
	writePhoto(t, l, "car_1_1.jpg")
	car := catalog.Car{ID: 1, Photos: []string{"car_1_1.jpg"}}

	got, migrated := l.Resolve(car, "car_1_1.jpg", 1)
	if got != l.Path("car_1_1.jpg") {
		t.Fatalf("path = %s", got)
	}
	if migrated != "" {
		t.Fatalf("unexpected migration: %s", migrated)
	}
}

func TestResolveMissingLocalFallsBackToPlaceholder(t *testing.T) {
	l := testLibrary(t)
	car := catalog.Car{ID: 1, Photos: []string{"car_1_1.jpg"}}

	got, _ := l.Resolve(car, "car_1_1.jpg", 1)
	if got != l.PlaceholderPath() {
		t.Fatalf("expected placeholder, got %s", got)
	}
}

func TestResolveMigratesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-jpeg"))
	}))
	defer srv.Close()

	l := testLibrary(t)
	car := catalog.Car{ID: 4, Photos: []string{srv.URL + "/photo.png"}}

	got, migrated := l.Resolve(car, srv.URL+"/photo.png", 1)
	if migrated != "car_4_1.png" {
		t.Fatalf("migrated = %q, want car_4_1.png", migrated)
	}
	if got != l.Path("car_4_1.png") {
		t.Fatalf("path = %s", got)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("migrated file unreadable: %v", err)
	}
	if string(data) != "remote-jpeg" {
		t.Fatalf("migrated bytes = %q", data)
	}
}

func TestResolveFetchFailureFallsBackToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := testLibrary(t)
	car := catalog.Car{ID: 4}

	got, migrated := l.Resolve(car, srv.URL+"/gone.jpg", 1)
	if migrated != "" {
		t.Fatalf("unexpected migration on failed fetch: %s", migrated)
	}
	if got != l.PlaceholderPath() {
		t.Fatalf("expected placeholder, got %s", got)
	}
}

type fakeUpload struct {
	ext     string
	stored  string
	content []byte
}

func (f *fakeUpload) Store(path string) error {
	f.stored = path
	return os.WriteFile(path, f.content, 0o644)
}

func (f *fakeUpload) Ext() string { return f.ext }

func TestSaveUploadNamesByLocalCount(t *testing.T) {
	l := testLibrary(t)
	car := catalog.Car{ID: 9, Photos: []string{"car_9_1.jpg", "https://example.com/x.jpg"}}

	up := &fakeUpload{ext: ".jpg", content: []byte("new")}
	name, err := l.SaveUpload(up, car)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	// Two entries but only one local: next seq is 2.
	if name != "car_9_2.jpg" {
		t.Fatalf("name = %q, want car_9_2.jpg", name)
	}
	if up.stored != l.Path(name) {
		t.Fatalf("stored at %s", up.stored)
	}
}

func TestRemoveSingle(t *testing.T) {
	l := testLibrary(t)
	writePhoto(t, l, "car_3_1.jpg")
	writePhoto(t, l, "placeholder.jpg")

	if err := l.Remove("car_3_1.jpg"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(l.Path("car_3_1.jpg")); !os.IsNotExist(err) {
		t.Fatal("photo should be removed")
	}
	if err := l.Remove("car_3_1.jpg"); err != nil {
		t.Fatalf("removing a missing file should not error: %v", err)
	}
	if err := l.Remove("placeholder.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.PlaceholderPath()); err != nil {
		t.Fatal("placeholder must never be removed")
	}
	if err := l.Remove("https://example.com/a.jpg"); err != nil {
		t.Fatalf("URL entries are not files: %v", err)
	}
}

func TestDeleteCarPhotosSkipsURLsAndPlaceholder(t *testing.T) {
	l := testLibrary(t)
	writePhoto(t, l, "car_2_1.jpg")
	writePhoto(t, l, "placeholder.jpg")
	car := catalog.Car{ID: 2, Photos: []string{"car_2_1.jpg", "https://example.com/a.jpg", "placeholder.jpg"}}

	l.DeleteCarPhotos(car)

	if _, err := os.Stat(l.Path("car_2_1.jpg")); !os.IsNotExist(err) {
		t.Fatal("local photo should be removed")
	}
	if _, err := os.Stat(l.PlaceholderPath()); err != nil {
		t.Fatal("placeholder must survive cascade delete")
	}
	if _, err := os.Stat(filepath.Join(l.Dir(), "unrelated.jpg")); !os.IsNotExist(err) {
		// sanity: nothing else appeared
		t.Fatal("unexpected file in library")
	}
}
