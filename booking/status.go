package booking

import (
	"fmt"
	"time"
)

type Event string

const (
	EventCancel Event = "cancel"
	EventElapse Event = "elapse"
)

// Transition returns the status reached from s on ev. Only upcoming
// bookings move; completed and cancelled are final.
func Transition(s Status, ev Event) (Status, error) {
	if s == StatusUpcoming {
		switch ev {
		case EventCancel:
			return StatusCancelled, nil
		case EventElapse:
			return StatusCompleted, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s booking", ErrInvalidTransition, ev, s)
}

// Partitioned holds bookings split by status. Cancelled bookings are in
// neither bucket.
type Partitioned struct {
	Upcoming  []Booking `json:"upcoming"`
	Completed []Booking `json:"completed"`
}

func Partition(bookings []Booking) Partitioned {
	p := Partitioned{Upcoming: []Booking{}, Completed: []Booking{}}
	for _, b := range bookings {
		switch b.Status {
		case StatusUpcoming:
			p.Upcoming = append(p.Upcoming, b)
		case StatusCompleted:
			p.Completed = append(p.Completed, b)
		}
	}
	return p
}

// StartsAt parses the booking's date and slot in loc.
func StartsAt(b Booking, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, b.Date+" "+b.TimeSlot, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("booking %s: invalid start %s %s: %w", b.ID, b.Date, b.TimeSlot, err)
	}
	return start, nil
}

// EndsAt is StartsAt plus the booked hours.
func EndsAt(b Booking, loc *time.Location) (time.Time, error) {
	start, err := StartsAt(b, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.Duration) * time.Hour), nil
}
