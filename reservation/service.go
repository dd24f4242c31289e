package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"cancha-cli/booking"
	"cancha-cli/catalog"
	"cancha-cli/storage"

	"github.com/google/uuid"
)

const sourceCLI = "cli"
const sourceSeed = "seed"

type Options struct {
	// DurationMenu lists the offered durations in hours. Empty offers any
	// positive duration.
	DurationMenu []int
	// ConsumeSlots makes a confirmed booking claim its slot so no other
	// booking can take it until cancelled.
	ConsumeSlots bool
	Location     *time.Location
	Now          func() time.Time
	Logger       *slog.Logger
}

type Service struct {
	catalog *catalog.Catalog
	db      *sql.DB
	opts    Options
	log     *slog.Logger
}

func New(c *catalog.Catalog, db *sql.DB, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{catalog: c, db: db, opts: opts, log: logger}
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Seed records the catalog's bookings. Existing ids are left untouched.
func (s *Service) Seed(ctx context.Context) (int, error) {
	const op = "reservation.Seed"

	added := 0
	for _, b := range s.catalog.Bookings() {
		if b.Source == "" {
			b.Source = sourceSeed
		}
		inserted, err := storage.AddBookingIfNotExists(ctx, s.db, b)
		if err != nil {
			return added, fmt.Errorf("%s: %w", op, err)
		}
		if inserted {
			added++
		}
	}
	s.log.Debug("seeded bookings", slog.Int("added", added))
	return added, nil
}

// Offered reports whether the duration is on the menu.
func (s *Service) Offered(duration int) bool {
	if len(s.opts.DurationMenu) == 0 {
		return duration > 0
	}
	for _, d := range s.opts.DurationMenu {
		if d == duration {
			return true
		}
	}
	return false
}

func (s *Service) DurationMenu() []int {
	out := make([]int, len(s.opts.DurationMenu))
	copy(out, s.opts.DurationMenu)
	return out
}

// Quote validates a request and prices it without recording anything.
func (s *Service) Quote(ctx context.Context, req booking.Request) (booking.Quote, error) {
	quote, err := booking.Validate(s.catalog, req)
	if err != nil {
		return booking.Quote{}, err
	}
	if !s.Offered(req.Duration) {
		return booking.Quote{}, &booking.ValidationError{
			Code:     booking.CodeDurationNotOffered,
			FieldID:  req.FieldID,
			Duration: req.Duration,
		}
	}
	if s.opts.ConsumeSlots {
		claimed, err := storage.ClaimedSlots(ctx, s.db, req.FieldID, req.Date)
		if err != nil {
			return booking.Quote{}, fmt.Errorf("reservation.Quote: %w", err)
		}
		for _, slot := range claimed {
			if slot == req.TimeSlot {
				return booking.Quote{}, slotTaken(req)
			}
		}
	}
	return quote, nil
}

// Confirm validates the request and records an upcoming booking.
func (s *Service) Confirm(ctx context.Context, req booking.Request) (booking.Booking, error) {
	const op = "reservation.Confirm"

	quote, err := s.Quote(ctx, req)
	if err != nil {
		return booking.Booking{}, err
	}

	b := booking.Booking{
		ID:         uuid.NewString(),
		FieldID:    quote.Field.ID,
		FieldName:  quote.Field.Name,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
		Duration:   req.Duration,
		TotalPrice: quote.Price,
		Status:     booking.StatusUpcoming,
		CreatedAt:  s.opts.Now().UTC().Format(time.RFC3339),
		Source:     sourceCLI,
	}

	if err := storage.RecordBooking(ctx, s.db, b, s.opts.ConsumeSlots); err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			return booking.Booking{}, slotTaken(req)
		}
		return booking.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking confirmed",
		slog.String("booking_id", b.ID),
		slog.String("field_id", b.FieldID),
		slog.String("date", b.Date),
		slog.String("time_slot", b.TimeSlot),
		slog.Int("duration", b.Duration),
		slog.Float64("total_price", b.TotalPrice),
	)
	return b, nil
}

func slotTaken(req booking.Request) error {
	return &booking.ValidationError{
		Code:     booking.CodeSlotNotAvailable,
		FieldID:  req.FieldID,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	}
}

// OpenSlots returns the field's slots on date that can still be booked.
func (s *Service) OpenSlots(ctx context.Context, field booking.Field, date string) ([]string, error) {
	slots := booking.AvailableSlots(field, date)
	if !s.opts.ConsumeSlots || len(slots) == 0 {
		return slots, nil
	}

	claimed, err := storage.ClaimedSlots(ctx, s.db, field.ID, date)
	if err != nil {
		return nil, fmt.Errorf("reservation.OpenSlots: %w", err)
	}
	taken := make(map[string]struct{}, len(claimed))
	for _, slot := range claimed {
		taken[slot] = struct{}{}
	}
	open := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, ok := taken[slot]; ok {
			continue
		}
		open = append(open, slot)
	}
	return open, nil
}

// Cancel moves an upcoming booking to cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (booking.Booking, error) {
	const op = "reservation.Cancel"

	b, err := storage.GetBooking(ctx, s.db, id)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	next, err := booking.Transition(b.Status, booking.EventCancel)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("%s: booking %s: %w", op, id, err)
	}

	now := s.opts.Now()
	if err := storage.UpdateStatus(ctx, s.db, id, b.Status, next, now); err != nil {
		return booking.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	b.Status = next
	b.CancelledAt = now.UTC().Format(time.RFC3339)

	s.log.Info("booking cancelled", slog.String("booking_id", id), slog.String("field_id", b.FieldID))
	return b, nil
}

// Sweep completes every upcoming booking whose end time has passed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	const op = "reservation.Sweep"

	upcoming, err := storage.ListBookings(ctx, s.db, storage.BookingFilter{Status: booking.StatusUpcoming})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := s.opts.Now()
	moved := 0
	for _, b := range upcoming {
		end, err := booking.EndsAt(b, s.opts.Location)
		if err != nil {
			s.log.Warn("skipping booking with invalid start", slog.String("booking_id", b.ID), slog.Any("error", err))
			continue
		}
		if end.After(now) {
			continue
		}
		next, err := booking.Transition(b.Status, booking.EventElapse)
		if err != nil {
			return moved, fmt.Errorf("%s: %w", op, err)
		}
		err = storage.UpdateStatus(ctx, s.db, b.ID, b.Status, next, now)
		if errors.Is(err, storage.ErrStatusChanged) {
			continue
		}
		if err != nil {
			return moved, fmt.Errorf("%s: %w", op, err)
		}
		moved++
		s.log.Info("booking completed", slog.String("booking_id", b.ID), slog.Time("ended_at", end))
	}
	return moved, nil
}

func (s *Service) Booking(ctx context.Context, id string) (booking.Booking, error) {
	return storage.GetBooking(ctx, s.db, id)
}

// Bookings returns the recorded bookings split into upcoming and
// completed.
func (s *Service) Bookings(ctx context.Context) (booking.Partitioned, error) {
	all, err := storage.ListBookings(ctx, s.db, storage.BookingFilter{})
	if err != nil {
		return booking.Partitioned{}, fmt.Errorf("reservation.Bookings: %w", err)
	}
	return booking.Partition(all), nil
}

type Stats struct {
	TotalBookings       int     `json:"total_bookings"`
	TotalSpent          float64 `json:"total_spent"`
	FavouriteField      string  `json:"favourite_field"`
	FavouriteFieldCount int     `json:"favourite_field_count"`
	UsualTime           string  `json:"usual_time"`
	LastPlayed          string  `json:"last_played"`
}

// Stats summarizes non-cancelled bookings.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	p, err := s.Bookings(ctx)
	if err != nil {
		return Stats{}, err
	}
	active := append(append([]booking.Booking{}, p.Upcoming...), p.Completed...)
	return computeStats(active, s.opts.Now(), s.opts.Location), nil
}

func computeStats(bookings []booking.Booking, now time.Time, loc *time.Location) Stats {
	stats := Stats{TotalBookings: len(bookings), FavouriteField: "N/A", UsualTime: "N/A", LastPlayed: "N/A"}

	fieldCounts := map[string]int{}
	fieldNames := map[string]string{}
	timeCounts := map[string]int{}
	var last time.Time
	for _, b := range bookings {
		stats.TotalSpent += b.TotalPrice
		fieldCounts[b.FieldID]++
		if b.FieldName != "" {
			fieldNames[b.FieldID] = b.FieldName
		}

		start, err := booking.StartsAt(b, loc)
		if err != nil {
			continue
		}
		timeCounts[fmt.Sprintf("%s %s", start.Weekday(), b.TimeSlot)]++
		if !start.After(now) && start.After(last) {
			last = start
		}
	}

	if id, count := mostCommon(fieldCounts); count > 0 {
		stats.FavouriteField = id
		if name, ok := fieldNames[id]; ok {
			stats.FavouriteField = name
		}
		stats.FavouriteFieldCount = count
	}
	if label, count := mostCommon(timeCounts); count > 0 {
		stats.UsualTime = label
	}
	if !last.IsZero() {
		stats.LastPlayed = last.Format(booking.DateLayout)
	}
	return stats
}

// mostCommon breaks ties by key order so results are stable.
func mostCommon(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	best := ""
	max := 0
	for _, key := range keys {
		if counts[key] > max {
			best = key
			max = counts[key]
		}
	}
	return best, max
}
