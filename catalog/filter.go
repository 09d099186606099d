package catalog

import (
	"sort"
	"strings"

	"github.com/a7motors/dealerbot/core/config"
)

// Filters is a sparse set of constraints over the inventory. Empty fields
// impose no constraint; set fields combine with AND. PriceBucket holds the
// label of one configured bucket.
type Filters struct {
	Brand        string
	BodyType     string
	EngineType   string
	Transmission string
	PriceBucket  string
}

// Empty reports whether no constraint is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Engine evaluates filters against the store using the configured price
// buckets and vocabularies.
type Engine struct {
	store   *Store
	buckets []config.PriceBucket
	vocab   config.CatalogConfig
}

// NewEngine builds a filter engine over the store.
func NewEngine(store *Store, cfg config.CatalogConfig) *Engine {
	return &Engine{
		store:   store,
		buckets: cfg.PriceBuckets,
		vocab:   cfg,
	}
}

// Cars returns the available cars matching every set constraint, in document
// order. An all-unset Filters returns every available car.
func (e *Engine) Cars(f Filters) []Car {
	doc := e.store.Load()
	var out []Car
	for _, car := range doc.Cars {
		if !car.Available {
			continue
		}
		if e.matches(car, f) {
			out = append(out, car)
		}
	}
	return out
}

func (e *Engine) matches(car Car, f Filters) bool {
	if f.Brand != "" && !strings.EqualFold(car.Brand, f.Brand) {
		return false
	}
	if f.BodyType != "" && !strings.EqualFold(car.BodyType, f.BodyType) {
		return false
	}
	if f.EngineType != "" && !strings.EqualFold(car.EngineType, f.EngineType) {
		return false
	}
	if f.Transmission != "" && !strings.EqualFold(car.Transmission, f.Transmission) {
		return false
	}
	if f.PriceBucket != "" {
		bucket, ok := e.Bucket(f.PriceBucket)
		if !ok || !BucketMatches(bucket, car.Price) {
			return false
		}
	}
	return true
}

// Bucket resolves a configured price bucket by its label.
func (e *Engine) Bucket(label string) (config.PriceBucket, bool) {
	for _, b := range e.buckets {
		if b.Label == label {
			return b, true
		}
	}
	return config.PriceBucket{}, false
}

// Buckets returns the configured price buckets in order.
func (e *Engine) Buckets() []config.PriceBucket {
	return e.buckets
}

// BucketMatches reports whether a price falls into the bucket. Min is
// exclusive and Max inclusive, so adjacent buckets sharing a boundary stay
// mutually exclusive; Max == 0 means unbounded above.
func BucketMatches(b config.PriceBucket, price int) bool {
	if b.Min > 0 && price <= b.Min {
		return false
	}
	if b.Max > 0 && price > b.Max {
		return false
	}
	return true
}

// FilterField names one filterable car attribute for option listing.
type FilterField string

const (
	FieldBrand        FilterField = "brand"
	FieldBodyType     FilterField = "body_type"
	FieldEngineType   FilterField = "engine_type"
	FieldTransmission FilterField = "transmission"
)

// Options returns the distinct values the available inventory holds for the
// field, sorted. When the inventory yields nothing it falls back to the
// configured vocabulary so the choice list is never empty.
func (e *Engine) Options(field FilterField) []string {
	doc := e.store.Load()
	seen := make(map[string]struct{})
	var out []string
	for _, car := range doc.Cars {
		if !car.Available {
			continue
		}
		val := fieldValue(car, field)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	if len(out) == 0 {
		return append([]string(nil), e.fallbackVocab(field)...)
	}
	sort.Strings(out)
	return out
}

func fieldValue(car Car, field FilterField) string {
	switch field {
	case FieldBrand:
		return car.Brand
	case FieldBodyType:
		return car.BodyType
	case FieldEngineType:
		return car.EngineType
	case FieldTransmission:
		return car.Transmission
	}
	return ""
}

func (e *Engine) fallbackVocab(field FilterField) []string {
	switch field {
	case FieldBrand:
		return e.vocab.Brands
	case FieldBodyType:
		return e.vocab.BodyTypes
	case FieldEngineType:
		return e.vocab.EngineTypes
	case FieldTransmission:
		return e.vocab.Transmissions
	}
	return nil
}
