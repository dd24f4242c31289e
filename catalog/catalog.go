package catalog

import (
	"fmt"
	"strings"

	"cancha-cli/booking"
)

// Catalog is the read-only set of bookable fields plus the bookings the
// ledger is seeded with.
type Catalog struct {
	fields   []booking.Field
	byID     map[string]int
	aliases  map[string]string
	bookings []booking.Booking
}

// Alias maps a short user-chosen name to a field id.
type Alias struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

type City struct {
	Name   string `json:"name"`
	Fields int    `json:"fields"`
}

func New(fields []booking.Field, bookings []booking.Booking) (*Catalog, error) {
	c := &Catalog{
		fields:   make([]booking.Field, 0, len(fields)),
		byID:     make(map[string]int, len(fields)),
		aliases:  map[string]string{},
		bookings: make([]booking.Booking, 0, len(bookings)),
	}
	for _, field := range fields {
		if err := checkField(field); err != nil {
			return nil, err
		}
		if _, dup := c.byID[field.ID]; dup {
			return nil, fmt.Errorf("duplicate field id %q", field.ID)
		}
		c.byID[field.ID] = len(c.fields)
		c.fields = append(c.fields, field)
	}
	for _, b := range bookings {
		if err := checkBooking(b); err != nil {
			return nil, err
		}
		c.bookings = append(c.bookings, b)
	}
	return c, nil
}

// WithAliases registers field aliases. Aliases pointing at unknown fields
// are rejected.
func (c *Catalog) WithAliases(aliases []Alias) error {
	for _, a := range aliases {
		key := strings.ToLower(strings.TrimSpace(a.Alias))
		if key == "" {
			continue
		}
		if _, ok := c.byID[a.ID]; !ok {
			return fmt.Errorf("alias %q points at unknown field %q", a.Alias, a.ID)
		}
		c.aliases[key] = a.ID
	}
	return nil
}

func (c *Catalog) Fields() []booking.Field {
	out := make([]booking.Field, len(c.fields))
	copy(out, c.fields)
	return out
}

func (c *Catalog) Field(id string) (booking.Field, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return booking.Field{}, false
	}
	return c.fields[idx], true
}

// ResolveField accepts a field id or a registered alias.
func (c *Catalog) ResolveField(input string) (booking.Field, error) {
	input = strings.TrimSpace(input)
	if field, ok := c.Field(input); ok {
		return field, nil
	}
	if id, ok := c.aliases[strings.ToLower(input)]; ok {
		if field, ok := c.Field(id); ok {
			return field, nil
		}
	}
	return booking.Field{}, fmt.Errorf("field %q not found", input)
}

func (c *Catalog) Bookings() []booking.Booking {
	out := make([]booking.Booking, len(c.bookings))
	copy(out, c.bookings)
	return out
}

// Cities lists each city once, in order of first appearance, with the
// number of fields located there.
func (c *Catalog) Cities() []City {
	cities := []City{}
	index := map[string]int{}
	for _, field := range c.fields {
		name := field.Location.City
		if i, ok := index[name]; ok {
			cities[i].Fields++
			continue
		}
		index[name] = len(cities)
		cities = append(cities, City{Name: name, Fields: 1})
	}
	return cities
}

// Sports returns the sport selector values, starting with booking.AllSports.
func (c *Catalog) Sports() []string {
	sports := []string{booking.AllSports}
	seen := map[string]struct{}{}
	for _, field := range c.fields {
		if _, ok := seen[field.Sport]; ok {
			continue
		}
		seen[field.Sport] = struct{}{}
		sports = append(sports, field.Sport)
	}
	return sports
}

func checkField(f booking.Field) error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("field %q: missing id", f.Name)
	}
	if f.PricePerHour <= 0 {
		return fmt.Errorf("field %s: pricePerHour must be positive", f.ID)
	}
	if f.Rating < 0 || f.Rating > 5 {
		return fmt.Errorf("field %s: rating %.1f out of range [0,5]", f.ID, f.Rating)
	}
	if f.ReviewCount < 0 {
		return fmt.Errorf("field %s: negative reviewCount", f.ID)
	}
	coords := f.Location.Coordinates
	if coords.Latitude < -90 || coords.Latitude > 90 {
		return fmt.Errorf("field %s: latitude %f out of range", f.ID, coords.Latitude)
	}
	if coords.Longitude < -180 || coords.Longitude > 180 {
		return fmt.Errorf("field %s: longitude %f out of range", f.ID, coords.Longitude)
	}
	if err := f.Availability.Check(); err != nil {
		return fmt.Errorf("field %s: %w", f.ID, err)
	}
	return nil
}

func checkBooking(b booking.Booking) error {
	if b.ID == "" {
		return fmt.Errorf("booking for field %s: missing id", b.FieldID)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("booking %s: unknown status %q", b.ID, b.Status)
	}
	if b.Duration <= 0 {
		return fmt.Errorf("booking %s: duration must be positive", b.ID)
	}
	if _, err := booking.StartsAt(b, nil); err != nil {
		return err
	}
	return nil
}
