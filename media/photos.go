// Package media manages the flat directory of car photo files: deterministic
// naming, lazy migration of URL entries to local files, the shared
// placeholder and cascade cleanup on car deletion.
package media

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/a7motors/dealerbot/core/config"
	"github.com/a7motors/dealerbot/core/logger"
	"log/slog"

	"github.com/a7motors/dealerbot/catalog"
)

// MaxLocalPhotos caps how many local photo files one car may hold. URL
// entries do not count until they are migrated.
const MaxLocalPhotos = 5

// Source is an uploaded photo that can be persisted to disk.
type Source interface {
	Store(path string) error
	Ext() string
}

// Library is the photo directory bound to its placeholder image.
type Library struct {
	dir         string
	placeholder string
	client      *http.Client
}

// NewLibrary builds a Library from catalog configuration. The client is used
// for URL migration fetches; nil falls back to http.DefaultClient.
func NewLibrary(cfg config.CatalogConfig, client *http.Client) *Library {
	if client == nil {
		client = http.DefaultClient
	}
	return &Library{
		dir:         cfg.PhotosDir,
		placeholder: cfg.Placeholder,
		client:      client,
	}
}

// EnsureDir creates the photo directory if missing.
func (l *Library) EnsureDir() error {
	return os.MkdirAll(l.dir, 0o755)
}

// Dir reports the photo directory.
func (l *Library) Dir() string {
	return l.dir
}

// PlaceholderPath returns the path of the shared placeholder image.
func (l *Library) PlaceholderPath() string {
	return filepath.Join(l.dir, l.placeholder)
}

// Path resolves a photo entry to a filesystem path inside the library.
func (l *Library) Path(name string) string {
	return filepath.Join(l.dir, name)
}

// IsURL reports whether a photo entry is a remote URL rather than a local
// filename.
func IsURL(entry string) bool {
	return strings.HasPrefix(entry, "http")
}

// LocalCount counts the local-filename entries of a photo list. Only these
// count toward the per-car cap.
func LocalCount(photos []string) int {
	n := 0
	for _, p := range photos {
		if !IsURL(p) {
			n++
		}
	}
	return n
}

// PhotoName builds the deterministic filename for a car photo.
func PhotoName(carID int64, seq int, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("car_%d_%d%s", carID, seq, ext)
}

// SaveUpload persists an uploaded photo under the next deterministic name
// for the car and returns that name. The caller checks the cap before
// invoking; this is a plain write.
func (l *Library) SaveUpload(src Source, car catalog.Car) (string, error) {
	if err := l.EnsureDir(); err != nil {
		return "", fmt.Errorf("media: ensure dir: %w", err)
	}
	name := PhotoName(car.ID, LocalCount(car.Photos)+1, src.Ext())
	if err := src.Store(l.Path(name)); err != nil {
		return "", fmt.Errorf("media: store upload: %w", err)
	}
	return name, nil
}

// Resolve maps a photo entry to a local file path for rendering. URL entries
// are fetched once and persisted under a deterministic name; the migrated
// name is returned so the caller can rewrite the catalog entry. A fetch
// failure falls back to the placeholder without error.
func (l *Library) Resolve(car catalog.Car, entry string, seq int) (filePath, migrated string) {
	if !IsURL(entry) {
		p := l.Path(entry)
		if _, err := os.Stat(p); err != nil {
			logger.Debug(logger.Background(), "media", "photo.missing",
				slog.Int64("car_id", car.ID),
				slog.String("file", entry),
			)
			return l.PlaceholderPath(), ""
		}
		return p, ""
	}

	name, err := l.fetch(entry, car.ID, seq)
	if err != nil {
		logger.Warn(logger.Background(), "media", "photo.fetch_failed",
			slog.Int64("car_id", car.ID),
			slog.String("url", logger.SanitizeLimit(entry, 256)),
			slog.String("err", err.Error()),
		)
		return l.PlaceholderPath(), ""
	}
	logger.Info(logger.Background(), "media", "photo.migrated",
		slog.String("status", "ok"),
		slog.Int64("car_id", car.ID),
		slog.String("file", name),
	)
	return l.Path(name), name
}

func (l *Library) fetch(rawURL string, carID int64, seq int) (string, error) {
	if err := l.EnsureDir(); err != nil {
		return "", err
	}
	resp, err := l.client.Get(rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	name := PhotoName(carID, seq, urlExt(rawURL))
	f, err := os.Create(l.Path(name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(l.Path(name))
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(l.Path(name))
		return "", err
	}
	return name, nil
}

func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return ".jpg"
}

// Remove deletes a single local photo file. URL entries and the shared
// placeholder are never touched; a missing file is not an error.
func (l *Library) Remove(entry string) error {
	if IsURL(entry) || entry == l.placeholder {
		return nil
	}
	if err := os.Remove(l.Path(entry)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteCarPhotos removes the local photo files of a deleted car. The
// placeholder is shared and never removed. Missing files are skipped.
func (l *Library) DeleteCarPhotos(car catalog.Car) {
	for _, entry := range car.Photos {
		if IsURL(entry) || entry == l.placeholder {
			continue
		}
		if err := os.Remove(l.Path(entry)); err != nil && !os.IsNotExist(err) {
			logger.Warn(logger.Background(), "media", "photo.delete_failed",
				slog.Int64("car_id", car.ID),
				slog.String("file", entry),
				slog.String("err", err.Error()),
			)
		}
	}
}
