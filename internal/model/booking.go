package model

import (
	"errors"
	"time"
)

// SlotLayout is the wire format for booking timestamps.  Clients send and
// receive minute-resolution strings such as "2024-05-24 10:00"; seconds are
// never exposed.  All times are interpreted as UTC.
const SlotLayout = "2006-01-02 15:04"

// ErrInvalidInterval is returned when a time range is malformed, i.e. the
// end does not come strictly after the start.  It is raised before any
// database work happens.
var ErrInvalidInterval = errors.New("invalid interval: end must be after start")

// Booking records exclusive occupancy of one charging station for a
// half-open interval [StartTime, EndTime).  A booking is owned by exactly
// one user at any point in time; ownership changes only when a negotiation
// on the booking is accepted.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – current owner of the booking.
//  StationID – the charging station being occupied.
//  StartTime – inclusive start of the slot (UTC, minute resolution).
//  EndTime   – exclusive end of the slot (UTC, minute resolution).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp (changes on ownership transfer).
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	StationID uint64    // bookings.station_id
	StartTime time.Time // bookings.start_time
	EndTime   time.Time // bookings.end_time
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}

// Overlaps reports whether the booking's interval intersects [start, end).
// Both intervals are half-open: a booking ending exactly at start or
// starting exactly at end does not conflict.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// ParseSlot parses a pair of minute-resolution timestamps into UTC times
// and validates that they form a non-empty half-open interval.  It returns
// ErrInvalidInterval when end <= start and the underlying parse error when
// either string does not match SlotLayout.
func ParseSlot(start, end string) (time.Time, time.Time, error) {
	s, err := time.ParseInLocation(SlotLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := time.ParseInLocation(SlotLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, ErrInvalidInterval
	}
	return s, e, nil
}

// FormatSlot renders a timestamp in the minute-resolution wire format.
func FormatSlot(t time.Time) string {
	return t.UTC().Format(SlotLayout)
}
