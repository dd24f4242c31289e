package reservation

import (
	"context"
	"testing"
	"time"

	"cancha-cli/booking"
	"cancha-cli/catalog"
	"cancha-cli/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, consume bool) *Service {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	db, err := storage.OpenLedger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(c, db, Options{
		DurationMenu: []int{1, 2, 3, 4},
		ConsumeSlots: consume,
		Location:     time.UTC,
		Now:          func() time.Time { return testNow },
	})
}

func request(slot string, duration int) booking.Request {
	return booking.Request{FieldID: "1", Date: "2024-01-20", TimeSlot: slot, Duration: duration}
}

func TestQuote(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	quote, err := svc.Quote(ctx, request("11:00", 2))
	require.NoError(t, err)
	assert.Equal(t, 50.0, quote.Price)
	assert.Equal(t, "Cancha Futbol Norte", quote.Field.Name)

	_, err = svc.Quote(ctx, request("11:00", 5))
	assert.ErrorIs(t, err, booking.ErrDurationNotOffered)

	_, err = svc.Quote(ctx, request("", 2))
	assert.ErrorIs(t, err, booking.ErrMissingTimeSlot)

	_, err = svc.Quote(ctx, request("22:00", 2))
	assert.ErrorIs(t, err, booking.ErrSlotNotAvailable)
}

func TestOfferedWithoutMenu(t *testing.T) {
	svc := New(nil, nil, Options{})
	assert.True(t, svc.Offered(7))
	assert.False(t, svc.Offered(0))
	assert.Empty(t, svc.DurationMenu())
}

func TestConfirmClaimsSlot(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	b, err := svc.Confirm(ctx, request("11:00", 2))
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, booking.StatusUpcoming, b.Status)
	assert.Equal(t, 50.0, b.TotalPrice)
	assert.Equal(t, "2024-01-19T12:00:00Z", b.CreatedAt)
	assert.Equal(t, "cli", b.Source)

	stored, err := svc.Booking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, stored)

	_, err = svc.Confirm(ctx, request("11:00", 1))
	assert.ErrorIs(t, err, booking.ErrSlotNotAvailable)

	field, ok := svc.Catalog().Field("1")
	require.True(t, ok)
	open, err := svc.OpenSlots(ctx, field, "2024-01-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "15:00", "17:00", "19:00"}, open)
}

func TestConfirmWithoutClaimAllowsDoubleBooking(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	first, err := svc.Confirm(ctx, request("11:00", 2))
	require.NoError(t, err)
	second, err := svc.Confirm(ctx, request("11:00", 2))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	field, _ := svc.Catalog().Field("1")
	open, err := svc.OpenSlots(ctx, field, "2024-01-20")
	require.NoError(t, err)
	assert.Contains(t, open, "11:00")
}

func TestCancelReleasesSlot(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	b, err := svc.Confirm(ctx, request("15:00", 1))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)
	assert.Equal(t, "2024-01-19T12:00:00Z", cancelled.CancelledAt)

	_, err = svc.Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	_, err = svc.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.Confirm(ctx, request("15:00", 1))
	assert.NoError(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	added, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	added, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	p, err := svc.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, bookingIDs(p.Upcoming))
	assert.Equal(t, []string{"3", "4"}, bookingIDs(p.Completed))

	seeded, err := svc.Booking(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "seed", seeded.Source)
}

func TestBookingsSkipsCancelled(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.Seed(ctx)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "2")
	require.NoError(t, err)

	p, err := svc.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, bookingIDs(p.Upcoming))
	assert.Equal(t, []string{"3", "4"}, bookingIDs(p.Completed))
}

func TestSweepCompletesEndedBookings(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.Seed(ctx)
	require.NoError(t, err)

	// Booking 2 runs 18:00-19:00 on 2024-01-22.
	svc.opts.Now = func() time.Time { return time.Date(2024, 1, 22, 18, 30, 0, 0, time.UTC) }
	moved, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	svc.opts.Now = func() time.Time { return time.Date(2024, 1, 22, 19, 0, 0, 0, time.UTC) }
	moved, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	p, err := svc.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, bookingIDs(p.Upcoming))
	assert.Equal(t, []string{"2", "3", "4"}, bookingIDs(p.Completed))

	moved, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.Seed(ctx)
	require.NoError(t, err)
	svc.opts.Now = func() time.Time { return time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC) }

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalBookings)
	assert.InDelta(t, 118.0, stats.TotalSpent, 0.001)
	assert.Equal(t, "Cancha Futbol Norte", stats.FavouriteField)
	assert.Equal(t, 1, stats.FavouriteFieldCount)
	assert.Equal(t, "2024-01-22", stats.LastPlayed)
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bookings := []booking.Booking{
		{ID: "a", FieldID: "4", FieldName: "Tenis Club Elite", Date: "2024-01-16", TimeSlot: "11:00", TotalPrice: 30},
		{ID: "b", FieldID: "4", FieldName: "Tenis Club Elite", Date: "2024-01-23", TimeSlot: "11:00", TotalPrice: 30},
		{ID: "c", FieldID: "1", FieldName: "Cancha Futbol Norte", Date: "2024-01-25", TimeSlot: "15:00", TotalPrice: 50},
		{ID: "d", FieldID: "1", Date: "2024-03-01", TimeSlot: "09:00", TotalPrice: 25},
	}

	stats := computeStats(bookings, now, time.UTC)
	assert.Equal(t, 4, stats.TotalBookings)
	assert.InDelta(t, 135.0, stats.TotalSpent, 0.001)
	assert.Equal(t, "Cancha Futbol Norte", stats.FavouriteField)
	assert.Equal(t, 2, stats.FavouriteFieldCount)
	assert.Equal(t, "Tuesday 11:00", stats.UsualTime)
	assert.Equal(t, "2024-01-25", stats.LastPlayed)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, testNow, time.UTC)
	assert.Equal(t, Stats{FavouriteField: "N/A", UsualTime: "N/A", LastPlayed: "N/A"}, stats)
}

func TestMostCommonBreaksTiesByKey(t *testing.T) {
	key, count := mostCommon(map[string]int{"b": 2, "a": 2, "c": 1})
	assert.Equal(t, "a", key)
	assert.Equal(t, 2, count)

	key, count = mostCommon(map[string]int{})
	assert.Equal(t, "", key)
	assert.Equal(t, 0, count)
}

func bookingIDs(bookings []booking.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
