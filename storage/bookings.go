package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cancha-cli/booking"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrSlotTaken     = errors.New("slot already claimed")
	ErrStatusChanged = errors.New("booking status changed")
)

type BookingFilter struct {
	Status booking.Status
	From   string
	To     string
}

// OpenLedger opens the booking ledger. An empty dsn or ":memory:" opens a
// private in-memory database that lives as long as the returned handle.
func OpenLedger(dsn string) (*sql.DB, error) {
	memory := dsn == "" || dsn == ":memory:"
	if memory {
		dsn = ":memory:"
	} else if !strings.HasPrefix(dsn, "file:") {
		if err := ensureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database, and a single
	// writer keeps claims serialized for file databases too.
	db.SetMaxOpenConns(1)

	if err := ensureLedgerSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureLedgerSchema(db *sql.DB) error {
	createBookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  field_id TEXT NOT NULL,
  field_name TEXT,
  date TEXT NOT NULL,
  time_slot TEXT NOT NULL,
  duration INTEGER NOT NULL,
  total_price REAL,
  status TEXT NOT NULL,
  created_at TEXT
);`

	createClaims := `
CREATE TABLE IF NOT EXISTS slot_claims (
  field_id TEXT NOT NULL,
  date TEXT NOT NULL,
  time_slot TEXT NOT NULL,
  booking_id TEXT NOT NULL,
  PRIMARY KEY (field_id, date, time_slot)
);`

	if _, err := db.Exec(createBookings); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);"); err != nil {
		return fmt.Errorf("create bookings index: %w", err)
	}
	if _, err := db.Exec(createClaims); err != nil {
		return fmt.Errorf("create slot_claims table: %w", err)
	}
	if err := ensureBookingsColumns(db, []string{"cancelled_at", "source"}); err != nil {
		return err
	}
	return nil
}

func ensureBookingsColumns(db *sql.DB, columns []string) error {
	rows, err := db.Query("PRAGMA table_info(bookings);")
	if err != nil {
		return fmt.Errorf("inspect bookings table: %w", err)
	}

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("inspect bookings columns: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("inspect bookings columns: %w", err)
	}
	// The single pooled connection must be released before ALTER TABLE.
	rows.Close()

	for _, column := range columns {
		if _, ok := existing[column]; ok {
			continue
		}
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE bookings ADD COLUMN %s TEXT;", column))
		if err != nil {
			return fmt.Errorf("add bookings column %s: %w", column, err)
		}
	}
	return nil
}

const insertBooking = `
INSERT OR IGNORE INTO bookings (
  id, field_id, field_name, date, time_slot, duration, total_price, status, created_at, cancelled_at, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBookingRow(ctx context.Context, db execer, b booking.Booking) (bool, error) {
	res, err := db.ExecContext(
		ctx,
		insertBooking,
		b.ID,
		b.FieldID,
		b.FieldName,
		b.Date,
		b.TimeSlot,
		b.Duration,
		b.TotalPrice,
		string(b.Status),
		b.CreatedAt,
		nullString(b.CancelledAt),
		nullString(b.Source),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AddBookingIfNotExists inserts b unless a booking with the same id is
// already recorded. It never claims a slot.
func AddBookingIfNotExists(ctx context.Context, db *sql.DB, b booking.Booking) (bool, error) {
	return insertBookingRow(ctx, db, b)
}

// RecordBooking inserts a new booking. With claim set, the booking's slot
// is claimed in the same transaction and ErrSlotTaken is returned when
// another booking holds it.
func RecordBooking(ctx context.Context, db *sql.DB, b booking.Booking, claim bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if claim {
		res, err := tx.ExecContext(
			ctx,
			"INSERT OR IGNORE INTO slot_claims (field_id, date, time_slot, booking_id) VALUES (?, ?, ?, ?);",
			b.FieldID, b.Date, b.TimeSlot, b.ID,
		)
		if err != nil {
			return fmt.Errorf("claim slot: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim slot: %w", err)
		}
		if affected == 0 {
			return ErrSlotTaken
		}
	}

	inserted, err := insertBookingRow(ctx, tx, b)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if !inserted {
		return fmt.Errorf("insert booking: duplicate id %s", b.ID)
	}

	return tx.Commit()
}

const selectBookings = `
SELECT id, field_id, field_name, date, time_slot, duration, total_price, status, created_at, cancelled_at, source
FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (booking.Booking, error) {
	var b booking.Booking
	var fieldName sql.NullString
	var price sql.NullFloat64
	var status string
	var createdAt sql.NullString
	var cancelledAt sql.NullString
	var source sql.NullString
	if err := row.Scan(
		&b.ID,
		&b.FieldID,
		&fieldName,
		&b.Date,
		&b.TimeSlot,
		&b.Duration,
		&price,
		&status,
		&createdAt,
		&cancelledAt,
		&source,
	); err != nil {
		return booking.Booking{}, err
	}
	b.Status = booking.Status(status)
	if fieldName.Valid {
		b.FieldName = fieldName.String
	}
	if price.Valid {
		b.TotalPrice = price.Float64
	}
	if createdAt.Valid {
		b.CreatedAt = createdAt.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = cancelledAt.String
	}
	if source.Valid {
		b.Source = source.String
	}
	return b, nil
}

func GetBooking(ctx context.Context, db *sql.DB, id string) (booking.Booking, error) {
	row := db.QueryRowContext(ctx, selectBookings+" WHERE id = ?", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Booking{}, ErrNotFound
	}
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

// ListBookings returns bookings in the order they were recorded.
func ListBookings(ctx context.Context, db *sql.DB, filter BookingFilter) ([]booking.Booking, error) {
	conds := []string{}
	args := []any{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != "" {
		conds = append(conds, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "date <= ?")
		args = append(args, filter.To)
	}

	query := selectBookings
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []booking.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus moves a booking from one status to another. A cancelled
// booking releases its slot claim.
func UpdateStatus(ctx context.Context, db *sql.DB, id string, from, to booking.Status, at time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cancelledAt sql.NullString
	if to == booking.StatusCancelled {
		cancelledAt = nullString(at.UTC().Format(time.RFC3339))
	}

	res, err := tx.ExecContext(
		ctx,
		"UPDATE bookings SET status = ?, cancelled_at = COALESCE(?, cancelled_at) WHERE id = ? AND status = ?;",
		string(to), cancelledAt, id, string(from),
	)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM bookings WHERE id = ?;", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("update booking %s: %w", id, err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrStatusChanged
	}

	if to == booking.StatusCancelled {
		if _, err := tx.ExecContext(ctx, "DELETE FROM slot_claims WHERE booking_id = ?;", id); err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
	}

	return tx.Commit()
}

// ClaimedSlots lists the claimed slots of a field on a date.
func ClaimedSlots(ctx context.Context, db *sql.DB, fieldID, date string) ([]string, error) {
	rows, err := db.QueryContext(
		ctx,
		"SELECT time_slot FROM slot_claims WHERE field_id = ? AND date = ? ORDER BY time_slot;",
		fieldID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
