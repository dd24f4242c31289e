package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cancha-cli/booking"
)

//go:embed data/catalog.json
var defaultCatalog []byte

type File struct {
	Fields   []booking.Field   `json:"fields"`
	Bookings []booking.Booking `json:"bookings"`
}

// Default returns the built-in mock catalog.
func Default() (*Catalog, error) {
	c, err := Decode(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads a catalog file. An empty path selects the built-in
// catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Decode(r io.Reader) (*Catalog, error) {
	var payload File
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	return New(payload.Fields, payload.Bookings)
}
