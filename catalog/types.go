package catalog

// Car is one inventory record. Photos hold either relative local filenames
// or absolute URLs; URLs are migrated to local files on first display.
type Car struct {
	ID           int64    `json:"id"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        int      `json:"price"`
	BodyType     string   `json:"body_type"`
	EngineType   string   `json:"engine_type"`
	EngineVolume float64  `json:"engine_volume"`
	Transmission string   `json:"transmission"`
	Color        string   `json:"color"`
	Mileage      int      `json:"mileage"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Photos       []string `json:"photos"`
	Available    bool     `json:"is_available"`
}

// Contacts is the dealership contact card shown in the contacts menu.
// The bot reads it from the document but never edits it.
type Contacts struct {
	Phone     string `json:"phone"`
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	WorkHours string `json:"work_hours"`
}

// Document is the whole persisted inventory. It is always loaded and saved
// as one unit.
type Document struct {
	Cars     []Car    `json:"cars"`
	Contacts Contacts `json:"contacts"`
}

// NextID returns the id to assign to the next car: max existing id plus one,
// or 1 for an empty catalog.
func (d Document) NextID() int64 {
	var max int64
	for _, car := range d.Cars {
		if car.ID > max {
			max = car.ID
		}
	}
	return max + 1
}

// FindCar returns the car with the given id, if present.
func (d Document) FindCar(id int64) (Car, bool) {
	for _, car := range d.Cars {
		if car.ID == id {
			return car, true
		}
	}
	return Car{}, false
}
