package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cancha-cli/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	fields := c.Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, "Cancha Futbol Norte", fields[0].Name)
	assert.Equal(t, []string{"2024-01-20", "2024-01-21", "2024-01-22"}, booking.AvailableDates(fields[0]))

	field, ok := c.Field("3")
	require.True(t, ok)
	assert.Equal(t, "Cancún", field.Location.City)
	assert.Equal(t, 18.0, field.PricePerHour)

	_, ok = c.Field("99")
	assert.False(t, ok)

	bookings := c.Bookings()
	require.Len(t, bookings, 4)
	assert.Equal(t, booking.StatusUpcoming, bookings[0].Status)
	assert.Equal(t, booking.StatusCompleted, bookings[3].Status)
}

func TestDefaultCatalogSearch(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	got := booking.Filter(c.Fields(), "cancún", booking.AllSports, booking.HomeSearch)
	require.Len(t, got, 1)
	assert.Equal(t, "Cancún", got[0].Location.City)
}

func TestDefaultCatalogQuote(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	quote, err := booking.Validate(c, booking.Request{FieldID: "1", Date: "2024-01-20", TimeSlot: "11:00", Duration: 2})
	require.NoError(t, err)
	assert.Equal(t, 50.0, quote.Price)
}

func TestFieldsReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	fields := c.Fields()
	fields[0].Name = "changed"
	again := c.Fields()
	assert.Equal(t, "Cancha Futbol Norte", again[0].Name)
}

func TestCitiesAndSports(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []City{
		{Name: "Ciudad de México", Fields: 1},
		{Name: "Guadalajara", Fields: 1},
		{Name: "Cancún", Fields: 1},
		{Name: "Monterrey", Fields: 1},
	}, c.Cities())
	assert.Equal(t, []string{"Todos", "Fútbol", "Basketball", "Volleyball", "Tenis"}, c.Sports())
}

func TestResolveField(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.WithAliases([]Alias{{ID: "4", Alias: "Tenis"}}))

	field, err := c.ResolveField("4")
	require.NoError(t, err)
	assert.Equal(t, "4", field.ID)

	field, err = c.ResolveField(" tenis ")
	require.NoError(t, err)
	assert.Equal(t, "4", field.ID)

	_, err = c.ResolveField("padel")
	assert.EqualError(t, err, `field "padel" not found`)

	assert.Error(t, c.WithAliases([]Alias{{ID: "42", Alias: "ghost"}}))
}

func TestDecodeDropsDuplicateSlots(t *testing.T) {
	raw := `{"fields":[{"id":"a","name":"A","sport":"Tenis","pricePerHour":10,"rating":4,"reviewCount":1,
		"location":{"address":"x","city":"y","coordinates":{"latitude":1,"longitude":2}},
		"amenities":[],"availability":{"2024-01-20":["09:00","10:00","09:00"]},"isAvailable":true}]}`
	c, err := Decode(strings.NewReader(raw))
	require.NoError(t, err)

	field, ok := c.Field("a")
	require.True(t, ok)
	assert.Equal(t, []string{"09:00", "10:00"}, booking.AvailableSlots(field, "2024-01-20"))
	assert.Empty(t, c.Bookings())
}

func TestDecodeRejectsInvalidData(t *testing.T) {
	base := func(mod string) string {
		return `{"fields":[{"id":"a","name":"A","sport":"Tenis",` + mod + `,
			"location":{"address":"x","city":"y","coordinates":{"latitude":1,"longitude":2}},
			"amenities":[],"isAvailable":true}]}`
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "zero price", raw: base(`"pricePerHour":0,"rating":4,"availability":{}`)},
		{name: "rating too high", raw: base(`"pricePerHour":10,"rating":7,"availability":{}`)},
		{name: "bad slot", raw: base(`"pricePerHour":10,"rating":4,"availability":{"2024-01-20":["25:00"]}`)},
		{name: "bad date", raw: base(`"pricePerHour":10,"rating":4,"availability":{"Jan 20":["09:00"]}`)},
		{name: "unknown key", raw: base(`"pricePerHour":10,"rating":4,"availability":{},"colour":"red"`)},
		{
			name: "bad latitude",
			raw: `{"fields":[{"id":"a","pricePerHour":10,"rating":4,
				"location":{"coordinates":{"latitude":91,"longitude":2}}}]}`,
		},
		{
			name: "duplicate id",
			raw:  `{"fields":[{"id":"a","pricePerHour":10},{"id":"a","pricePerHour":10}]}`,
		},
		{
			name: "bad booking status",
			raw:  `{"fields":[],"bookings":[{"id":"1","fieldId":"a","date":"2024-01-20","timeSlot":"09:00","duration":1,"status":"pending"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	raw := `{"fields":[{"id":"z","name":"Z","sport":"Tenis","pricePerHour":12,"availability":{"2024-03-01":["08:00"]},"isAvailable":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.Fields(), 1)

	c, err = LoadFile("")
	require.NoError(t, err)
	assert.Len(t, c.Fields(), 4)

	_, err = LoadFile(dir)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
