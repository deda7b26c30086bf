package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
)

// BookingRepo provides CRUD operations for station bookings.  A booking
// occupies one station for a half-open time interval and belongs to
// exactly one user.  All timestamp fields are stored in UTC DATETIME
// columns with minute resolution.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// that span multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, station_id, start_time, end_time, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.StationID, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateIfAvailable inserts a booking unless an existing booking on the
// same station overlaps its interval.  The overlap check and the insert
// run in one transaction; candidate rows are locked with FOR UPDATE so
// two concurrent attempts for overlapping intervals serialize and only
// one commits.  On conflict the blocking bookings are returned and
// nothing is written.  On success b.ID is populated and the returned
// slice is empty.
func (r *BookingRepo) CreateIfAvailable(ctx context.Context, b *model.Booking) ([]model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock any bookings that would overlap.  The half-open test means a
	// booking ending exactly at b.StartTime or starting exactly at
	// b.EndTime is not a conflict.
	const overlapQ = `SELECT ` + bookingColumns + ` FROM bookings
	                  WHERE station_id = ? AND start_time < ? AND end_time > ?
	                  ORDER BY start_time FOR UPDATE`
	rows, err := tx.QueryContext(ctx, overlapQ, b.StationID, b.EndTime, b.StartTime)
	if err != nil {
		return nil, err
	}
	blocking := make([]model.Booking, 0)
	for rows.Next() {
		bk, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		blocking = append(blocking, bk)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(blocking) > 0 {
		return blocking, nil
	}
	const ins = `INSERT INTO bookings (user_id, station_id, start_time, end_time) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, b.UserID, b.StationID, b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nil, nil
}

// FindByStation returns all bookings for a station ordered by start time.
// When no bookings exist, an empty slice is returned.
func (r *BookingRepo) FindByStation(ctx context.Context, stationID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE station_id = ? ORDER BY start_time`
	return r.queryBookings(ctx, q, stationID)
}

// FindByUser returns all bookings currently owned by a user ordered by
// start time.  Ownership reflects any accepted negotiations.
func (r *BookingRepo) FindByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY start_time`
	return r.queryBookings(ctx, q, userID)
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, arg uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single booking.  ErrNotFound is returned when no row
// exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? LIMIT 1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// GetForUpdateTx loads a booking within a transaction and locks its row.
// Used by negotiation resolution to pin the owner while deciding the
// transfer.  ErrNotFound is returned when no row exists.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// ReassignOwnerTx sets a booking's owner within the scope of an existing
// transaction.  The caller must commit or rollback.  ErrNotFound is
// returned when the booking does not exist.
func (r *BookingRepo) ReassignOwnerTx(ctx context.Context, tx *sql.Tx, bookingID, newUserID uint64) error {
	const q = `UPDATE bookings SET user_id = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, newUserID, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
