package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/a7motors/dealerbot/core/logger"
	"log/slog"
)

// Store persists the inventory document as a single JSON file. Every write
// rewrites the whole document; the in-process mutex serialises writers, but
// across processes the policy stays last-write-wins.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store bound to the given file path. The file does not have
// to exist yet; a missing file loads as an empty document.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path reports the underlying document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole inventory document. A missing file yields an empty
// document. A malformed file also yields an empty document so the bot stays
// responsive, but the corruption is logged loudly since it otherwise looks
// like "no cars yet".
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error(logger.Background(), "catalog", "store.read_failed",
				slog.String("file", s.path),
				slog.String("err", err.Error()),
			)
		}
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Error(logger.Background(), "catalog", "store.corrupt",
			slog.String("file", s.path),
			slog.String("err", err.Error()),
		)
		return Document{}
	}
	return doc
}

// Save rewrites the whole inventory document atomically via a temp file
// rename.
func (s *Store) Save(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(doc)
}

func (s *Store) saveLocked(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: marshal document: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("catalog: create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cars-*.json")
	if err != nil {
		return fmt.Errorf("catalog: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: replace document: %w", err)
	}
	return nil
}

// AddCar assigns a fresh id, appends the car and persists the document. The
// store is re-read afterwards to confirm the write actually landed before
// the caller reports success.
func (s *Store) AddCar(car Car) (Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	car.ID = doc.NextID()
	doc.Cars = append(doc.Cars, car)
	if err := s.saveLocked(doc); err != nil {
		return Car{}, err
	}

	check := s.loadLocked()
	if _, ok := check.FindCar(car.ID); !ok {
		logger.Error(logger.Background(), "catalog", "store.verify_failed",
			slog.String("file", s.path),
			slog.Int64("car_id", car.ID),
		)
		return Car{}, fmt.Errorf("catalog: car %d not found after save", car.ID)
	}
	logger.Info(logger.Background(), "catalog", "store.saved",
		slog.String("status", "ok"),
		slog.Int64("car_id", car.ID),
	)
	return car, nil
}

// UpdateCar replaces the stored car with the same id and persists the
// document.
func (s *Store) UpdateCar(car Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	for i := range doc.Cars {
		if doc.Cars[i].ID == car.ID {
			doc.Cars[i] = car
			return s.saveLocked(doc)
		}
	}
	return fmt.Errorf("catalog: car %d not found", car.ID)
}

// AppendPhoto adds a photo entry to the car and persists the document. The
// store is re-read to confirm that specific entry survived the write.
func (s *Store) AppendPhoto(carID int64, photo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	idx := -1
	for i := range doc.Cars {
		if doc.Cars[i].ID == carID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("catalog: car %d not found", carID)
	}
	doc.Cars[idx].Photos = append(doc.Cars[idx].Photos, photo)
	if err := s.saveLocked(doc); err != nil {
		return err
	}

	check := s.loadLocked()
	saved, ok := check.FindCar(carID)
	if !ok || !containsString(saved.Photos, photo) {
		logger.Error(logger.Background(), "catalog", "store.verify_failed",
			slog.Int64("car_id", carID),
			slog.String("file", photo),
		)
		return fmt.Errorf("catalog: photo %s not found after save", photo)
	}
	return nil
}

// RemovePhoto drops a photo entry from the car and persists the document.
func (s *Store) RemovePhoto(carID int64, photo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	for i := range doc.Cars {
		if doc.Cars[i].ID != carID {
			continue
		}
		for j, entry := range doc.Cars[i].Photos {
			if entry == photo {
				doc.Cars[i].Photos = append(doc.Cars[i].Photos[:j], doc.Cars[i].Photos[j+1:]...)
				return s.saveLocked(doc)
			}
		}
		return fmt.Errorf("catalog: car %d has no photo %s", carID, photo)
	}
	return fmt.Errorf("catalog: car %d not found", carID)
}

// DeleteCar removes the car from the document and persists it. The removed
// record is returned so the caller can clean up associated photo files.
func (s *Store) DeleteCar(carID int64) (Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	for i := range doc.Cars {
		if doc.Cars[i].ID == carID {
			removed := doc.Cars[i]
			doc.Cars = append(doc.Cars[:i], doc.Cars[i+1:]...)
			if err := s.saveLocked(doc); err != nil {
				return Car{}, err
			}
			return removed, nil
		}
	}
	return Car{}, fmt.Errorf("catalog: car %d not found", carID)
}

// SetAvailability flips the availability flag of a car and persists the
// document.
func (s *Store) SetAvailability(carID int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked()
	for i := range doc.Cars {
		if doc.Cars[i].ID == carID {
			doc.Cars[i].Available = available
			return s.saveLocked(doc)
		}
	}
	return fmt.Errorf("catalog: car %d not found", carID)
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
