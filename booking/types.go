package booking

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// AllSports is the sport selector value that disables sport filtering.
	AllSports = "Todos"
)

type Field struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Sport        string       `json:"sport"`
	PricePerHour float64      `json:"pricePerHour"`
	Rating       float64      `json:"rating"`
	ReviewCount  int          `json:"reviewCount"`
	Images       []string     `json:"images,omitempty"`
	Location     Location     `json:"location"`
	Amenities    []string     `json:"amenities"`
	Availability Availability `json:"availability"`
	IsAvailable  bool         `json:"isAvailable"`
}

type Location struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Coordinates Coordinates `json:"coordinates"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Request is one booking attempt built from user selections.
type Request struct {
	FieldID  string `json:"fieldId"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Duration int    `json:"duration"`
}

// Quote is a validated request paired with its price.
type Quote struct {
	Request Request `json:"request"`
	Field   Field   `json:"-"`
	Price   float64 `json:"price"`
}

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID          string  `json:"id"`
	FieldID     string  `json:"fieldId"`
	FieldName   string  `json:"fieldName"`
	Date        string  `json:"date"`
	TimeSlot    string  `json:"timeSlot"`
	Duration    int     `json:"duration"`
	TotalPrice  float64 `json:"totalPrice"`
	Status      Status  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	CancelledAt string  `json:"cancelledAt,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// FieldLookup resolves a field id against a catalog.
type FieldLookup interface {
	Field(id string) (Field, bool)
}
