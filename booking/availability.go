package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Availability maps ISO dates to the open time slots of that date. Keys
// keep the order in which they were set or decoded.
type Availability struct {
	days *orderedmap.OrderedMap[string, []string]
}

func NewAvailability() Availability {
	return Availability{days: orderedmap.New[string, []string]()}
}

// Set replaces the slots of a date. Duplicate slots are dropped, keeping
// the first occurrence.
func (a *Availability) Set(date string, slots []string) {
	if a.days == nil {
		a.days = orderedmap.New[string, []string]()
	}
	a.days.Set(date, dedupe(slots))
}

func (a Availability) Dates() []string {
	if a.days == nil {
		return []string{}
	}
	dates := make([]string, 0, a.days.Len())
	for pair := a.days.Oldest(); pair != nil; pair = pair.Next() {
		dates = append(dates, pair.Key)
	}
	return dates
}

func (a Availability) Slots(date string) []string {
	if a.days == nil {
		return []string{}
	}
	slots, ok := a.days.Get(date)
	if !ok {
		return []string{}
	}
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

func (a Availability) Len() int {
	if a.days == nil {
		return 0
	}
	return a.days.Len()
}

// Check reports the first malformed date or slot.
func (a Availability) Check() error {
	if a.days == nil {
		return nil
	}
	for pair := a.days.Oldest(); pair != nil; pair = pair.Next() {
		if _, err := time.Parse(DateLayout, pair.Key); err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", pair.Key)
		}
		for _, slot := range pair.Value {
			if !ValidSlot(slot) {
				return fmt.Errorf("invalid time slot %q on %s (expected HH:MM)", slot, pair.Key)
			}
		}
	}
	return nil
}

func (a Availability) MarshalJSON() ([]byte, error) {
	if a.days == nil {
		return []byte("{}"), nil
	}
	return a.days.MarshalJSON()
}

func (a *Availability) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		a.days = nil
		return nil
	}
	days := orderedmap.New[string, []string]()
	if err := days.UnmarshalJSON(data); err != nil {
		return err
	}
	for pair := days.Oldest(); pair != nil; pair = pair.Next() {
		days.Set(pair.Key, dedupe(pair.Value))
	}
	a.days = days
	return nil
}

var _ json.Marshaler = Availability{}

// ValidSlot reports whether s is a zero-padded 24h HH:MM time.
func ValidSlot(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func dedupe(slots []string) []string {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}
	return out
}

// ComputePrice returns the total price for duration hours on the field.
func ComputePrice(field Field, duration int) float64 {
	return field.PricePerHour * float64(duration)
}

// AvailableDates returns the field's bookable dates in catalog order.
func AvailableDates(field Field) []string {
	return field.Availability.Dates()
}

// AvailableSlots returns the open slots of a date. A date without
// availability yields an empty slice.
func AvailableSlots(field Field, date string) []string {
	return field.Availability.Slots(date)
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
