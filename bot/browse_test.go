package bot

import (
	"strings"
	"testing"

	"github.com/a7motors/dealerbot/catalog"
)

func TestClampPhotoIndex(t *testing.T) {
	cases := []struct {
		idx, count, want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 0},
		{-1, 3, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := clampPhotoIndex(tc.idx, tc.count); got != tc.want {
			t.Errorf("clampPhotoIndex(%d, %d) = %d, want %d", tc.idx, tc.count, tc.want, got)
		}
	}
}

func TestCarCaption(t *testing.T) {
	car := catalog.Car{
		Brand: "Toyota", Model: "Camry", Year: 2019, Price: 18000,
		BodyType: "Седан", EngineType: "Бензин", EngineVolume: 2.5,
		Transmission: "Автомат", Color: "Белый", Mileage: 64000,
		Description: "Один владелец",
		Features:    []string{"Камера", "Климат-контроль"},
	}
	got := carCaption(car, 1, 4)
	for _, want := range []string{
		"Toyota Camry, 2019 г.",
		"18000 BYN",
		"2.5 л",
		"пробег 64000 км",
		"Один владелец",
		"Камера, Климат-контроль",
		"2 из 4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("caption missing %q:\n%s", want, got)
		}
	}
}

func TestCarCaptionOmitsEmptySections(t *testing.T) {
	got := carCaption(catalog.Car{Brand: "Kia", Model: "Rio", Year: 2020}, 0, 1)
	if strings.Contains(got, "Комплектация") {
		t.Error("caption should omit the features line when empty")
	}
	if !strings.Contains(got, "1 из 1") {
		t.Errorf("caption missing position line:\n%s", got)
	}
}

func markupButtons(cur *cursor, photoCount int) []string {
	return markupTexts(browseMarkup(cur, photoCount))
}

func TestBrowseMarkupBounds(t *testing.T) {
	cars := make([]catalog.Car, 3)

	first := markupButtons(&cursor{cars: cars, carIdx: 0}, 1)
	if contains(first, btnPrevCar) || !contains(first, btnNextCar) {
		t.Errorf("first car buttons wrong: %v", first)
	}
	if contains(first, btnPrevPhoto) || contains(first, btnNextPhoto) {
		t.Errorf("single photo must hide photo navigation: %v", first)
	}

	middle := markupButtons(&cursor{cars: cars, carIdx: 1}, 1)
	if !contains(middle, btnPrevCar) || !contains(middle, btnNextCar) {
		t.Errorf("middle car buttons wrong: %v", middle)
	}

	last := markupButtons(&cursor{cars: cars, carIdx: 2}, 1)
	if !contains(last, btnPrevCar) || contains(last, btnNextCar) {
		t.Errorf("last car buttons wrong: %v", last)
	}

	if all := markupButtons(&cursor{cars: cars, carIdx: 1, photoIdx: 1}, 3); !contains(all, btnPrevPhoto) || !contains(all, btnNextPhoto) {
		t.Errorf("middle photo should offer both directions: %v", all)
	}
	for _, btns := range [][]string{first, middle, last} {
		if !contains(btns, btnInquire) || !contains(btns, btnBack) {
			t.Errorf("inquire/back row missing: %v", btns)
		}
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func TestRenderCache(t *testing.T) {
	rc := newRenderCache()
	key := renderKey{carID: 1, photoIdx: 0}
	if _, ok := rc.get(key); ok {
		t.Fatal("empty cache should miss")
	}
	rc.put(key, "")
	if _, ok := rc.get(key); ok {
		t.Fatal("empty file id must not be cached")
	}
	rc.put(key, "file-1")
	if id, ok := rc.get(key); !ok || id != "file-1" {
		t.Fatalf("cache returned %q, %v", id, ok)
	}
}
