package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"cancha-cli/booking"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 2, 2, ' ', 0)
}

func (a *app) formatPrice(amount float64) string {
	return fmt.Sprintf("%s %.2f", a.cfg.Currency, amount)
}

// parseDateInput accepts YYYY-MM-DD, today or tomorrow and returns the
// ISO date string in loc.
func parseDateInput(input string, now time.Time, loc *time.Location) (string, error) {
	if input == "" {
		return "", fmt.Errorf("date is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "today":
		return now.Format(booking.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(booking.DateLayout), nil
	}
	parsed, err := time.ParseInLocation(booking.DateLayout, input, loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed.Format(booking.DateLayout), nil
}

func parseClock(input string) (string, error) {
	input = strings.TrimSpace(input)
	if !booking.ValidSlot(input) {
		return "", fmt.Errorf("invalid time %q (expected HH:MM)", input)
	}
	return input, nil
}

func dateLabel(date string) string {
	parsed, err := time.Parse(booking.DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format("Mon 2 Jan")
}

func hoursLabel(duration int) string {
	if duration == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", duration)
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return strings.Join(parts, ", ")
}

// confirm asks a yes/no question on in and reports whether the answer was
// yes.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	reader := bufio.NewReader(in)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	}
	return false, nil
}
