package catalog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/a7motors/dealerbot/core/config"
)

func testEngine(t *testing.T, cars []Car) *Engine {
	t.Helper()
	s := Open(filepath.Join(t.TempDir(), "cars.json"))
	if err := s.Save(Document{Cars: cars}); err != nil {
		t.Fatal(err)
	}
	cfg := config.CatalogConfig{
		Brands:        config.DefaultBrands,
		BodyTypes:     config.DefaultBodyTypes,
		EngineTypes:   config.DefaultEngineTypes,
		Transmissions: config.DefaultTransmissions,
		PriceBuckets:  config.DefaultPriceBuckets,
	}
	return NewEngine(s, cfg)
}

func testInventory() []Car {
	return []Car{
		{ID: 1, Brand: "Toyota", BodyType: "Седан", EngineType: "Бензин", Transmission: "Автомат", Price: 5000, Available: true},
		{ID: 2, Brand: "Toyota", BodyType: "Внедорожник", EngineType: "Дизель", Transmission: "Механика", Price: 9000, Available: true},
		{ID: 3, Brand: "BMW", BodyType: "Седан", EngineType: "Бензин", Transmission: "Автомат", Price: 52000, Available: true},
		{ID: 4, Brand: "Audi", BodyType: "Седан", EngineType: "Бензин", Transmission: "Автомат", Price: 7000, Available: false},
	}
}

func carIDs(cars []Car) []int64 {
	if len(cars) == 0 {
		return nil
	}
	out := make([]int64, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.ID)
	}
	return out
}

func TestCarsUnfilteredReturnsAvailableOnly(t *testing.T) {
	e := testEngine(t, testInventory())
	got := carIDs(e.Cars(Filters{}))
	want := []int64{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func TestCarsFilterCombination(t *testing.T) {
	e := testEngine(t, testInventory())
	tests := []struct {
		name    string
		filters Filters
		want    []int64
	}{
		{"brand", Filters{Brand: "Toyota"}, []int64{1, 2}},
		{"brand case-insensitive", Filters{Brand: "toyota"}, []int64{1, 2}},
		{"body type", Filters{BodyType: "Седан"}, []int64{1, 3}},
		{"brand and body", Filters{Brand: "Toyota", BodyType: "Седан"}, []int64{1}},
		{"engine and transmission", Filters{EngineType: "Дизель", Transmission: "Механика"}, []int64{2}},
		{"bucket under 5000", Filters{PriceBucket: "До 5000 BYN"}, []int64{1}},
		{"bucket over 50000", Filters{PriceBucket: "Свыше 50000 BYN"}, []int64{3}},
		{"unknown bucket", Filters{PriceBucket: "нет такого"}, nil},
		{"no match", Filters{Brand: "BMW", BodyType: "Внедорожник"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := carIDs(e.Cars(tc.filters))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
		})
	}
}

// A price sitting exactly on a boundary must match only one bucket: the one
// whose inclusive upper bound it equals.
func TestBucketBoundariesMutuallyExclusive(t *testing.T) {
	prices := []int{1, 5000, 5001, 10000, 20000, 50000, 50001, 999999}
	for _, price := range prices {
		matched := 0
		for _, b := range config.DefaultPriceBuckets {
			if BucketMatches(b, price) {
				matched++
			}
		}
		if matched != 1 {
			t.Fatalf("price %d matched %d buckets, expected exactly 1", price, matched)
		}
	}
	under := config.DefaultPriceBuckets[0]
	next := config.DefaultPriceBuckets[1]
	if !BucketMatches(under, 5000) || BucketMatches(next, 5000) {
		t.Fatal("price 5000 must fall into the bottom bucket only")
	}
}

func TestOptionsDistinctSorted(t *testing.T) {
	e := testEngine(t, testInventory())
	got := e.Options(FieldBrand)
	want := []string{"BMW", "Toyota"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("brands = %v, want %v (unavailable cars must not contribute)", got, want)
	}
}

func TestOptionsFallBackToVocabulary(t *testing.T) {
	e := testEngine(t, nil)
	got := e.Options(FieldBodyType)
	if !reflect.DeepEqual(got, config.DefaultBodyTypes) {
		t.Fatalf("expected vocabulary fallback, got %v", got)
	}
}
