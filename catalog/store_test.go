package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "cars.json"))
}

func sampleDoc() Document {
	return Document{
		Cars: []Car{
			{
				ID: 1, Brand: "Toyota", Model: "Camry", Year: 2019, Price: 18000,
				BodyType: "Седан", EngineType: "Бензин", EngineVolume: 2.5,
				Transmission: "Автомат", Color: "Белый", Mileage: 64000,
				Description: "Один владелец", Features: []string{"Климат-контроль", "Камера"},
				Photos: []string{"car_1_1.jpg", "https://example.com/camry.jpg"}, Available: true,
			},
			{
				ID: 3, Brand: "BMW", Model: "X5", Year: 2021, Price: 52000,
				BodyType: "Внедорожник", EngineType: "Дизель", EngineVolume: 3.0,
				Transmission: "Автомат", Color: "Чёрный", Mileage: 30000,
				Photos: []string{}, Available: true,
			},
		},
		Contacts: Contacts{
			Phone: "+375 29 123-45-67", WhatsApp: "+375291234567",
			Email: "sales@a7motors.by", Address: "Минск, пр. Победителей 100",
			WorkHours: "Пн-Вс 9:00-21:00",
		},
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := testStore(t)
	doc := s.Load()
	if len(doc.Cars) != 0 {
		t.Fatalf("expected empty document, got %d cars", len(doc.Cars))
	}
}

func TestLoadCorruptDegradesToEmpty(t *testing.T) {
	s := testStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := s.Load()
	if len(doc.Cars) != 0 {
		t.Fatalf("expected empty document on corrupt store, got %d cars", len(doc.Cars))
	}
}

func TestRoundTrip(t *testing.T) {
	s := testStore(t)
	original := sampleDoc()
	if err := s.Save(original); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := s.Load()
	if !reflect.DeepEqual(original, loaded) {
		t.Fatalf("round-trip mismatch:\nwant %+v\ngot  %+v", original, loaded)
	}
	if err := s.Save(loaded); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if again := s.Load(); !reflect.DeepEqual(loaded, again) {
		t.Fatalf("second round-trip mismatch")
	}
}

func TestNextID(t *testing.T) {
	if got := (Document{}).NextID(); got != 1 {
		t.Fatalf("empty catalog NextID = %d, expected 1", got)
	}
	doc := Document{Cars: []Car{{ID: 3}, {ID: 7}, {ID: 2}}}
	if got := doc.NextID(); got != 8 {
		t.Fatalf("NextID = %d, expected 8", got)
	}
}

func TestAddCarAssignsIDAndVerifies(t *testing.T) {
	s := testStore(t)
	if err := s.Save(Document{Cars: []Car{{ID: 5, Brand: "Audi", Available: true}}}); err != nil {
		t.Fatal(err)
	}
	saved, err := s.AddCar(Car{Brand: "Kia", Model: "Rio", Available: true})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if saved.ID != 6 {
		t.Fatalf("assigned id = %d, expected 6", saved.ID)
	}
	doc := s.Load()
	if _, ok := doc.FindCar(6); !ok {
		t.Fatal("added car not persisted")
	}
}

func TestAppendPhotoVerifies(t *testing.T) {
	s := testStore(t)
	if err := s.Save(Document{Cars: []Car{{ID: 2, Brand: "BMW", Available: true}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendPhoto(2, "car_2_1.jpg"); err != nil {
		t.Fatalf("append: %v", err)
	}
	car, _ := s.Load().FindCar(2)
	if len(car.Photos) != 1 || car.Photos[0] != "car_2_1.jpg" {
		t.Fatalf("photos = %v", car.Photos)
	}
	if err := s.AppendPhoto(99, "car_99_1.jpg"); err == nil {
		t.Fatal("expected error for unknown car")
	}
}

func TestRemovePhoto(t *testing.T) {
	s := testStore(t)
	if err := s.Save(sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if err := s.RemovePhoto(1, "car_1_1.jpg"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	car, _ := s.Load().FindCar(1)
	if len(car.Photos) != 1 || car.Photos[0] != "https://example.com/camry.jpg" {
		t.Fatalf("photos = %v", car.Photos)
	}
	if err := s.RemovePhoto(1, "car_1_1.jpg"); err == nil {
		t.Fatal("expected error for missing entry")
	}
	if err := s.RemovePhoto(99, "x.jpg"); err == nil {
		t.Fatal("expected error for unknown car")
	}
}

func TestDeleteCarReturnsRemoved(t *testing.T) {
	s := testStore(t)
	if err := s.Save(sampleDoc()); err != nil {
		t.Fatal(err)
	}
	removed, err := s.DeleteCar(1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.Brand != "Toyota" {
		t.Fatalf("removed wrong car: %+v", removed)
	}
	doc := s.Load()
	if _, ok := doc.FindCar(1); ok {
		t.Fatal("car still present after delete")
	}
	if len(doc.Cars) != 1 {
		t.Fatalf("expected 1 car left, got %d", len(doc.Cars))
	}
	if _, err := s.DeleteCar(1); err == nil {
		t.Fatal("expected error deleting twice")
	}
}

func TestSetAvailability(t *testing.T) {
	s := testStore(t)
	if err := s.Save(sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAvailability(3, false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	car, _ := s.Load().FindCar(3)
	if car.Available {
		t.Fatal("expected car unavailable")
	}
}
