// Package service implements the core booking and negotiation workflows on
// top of the repository layer.  Services validate input before any I/O,
// delegate atomicity to the storage gateway, and return typed errors that
// the HTTP layer maps onto status codes.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
)

// BookingStore is the slice of the storage gateway the booking service
// needs.  *repository.BookingRepo satisfies it; tests substitute an
// in-memory fake.
type BookingStore interface {
	// CreateIfAvailable atomically checks for overlaps and inserts.  A
	// non-empty return slice means the insert was refused and names the
	// blocking bookings.
	CreateIfAvailable(ctx context.Context, b *model.Booking) ([]model.Booking, error)
	FindByStation(ctx context.Context, stationID uint64) ([]model.Booking, error)
	FindByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
}

// ConflictError reports that a requested slot overlaps existing bookings
// on the station.  The caller may retry with a different interval.
type ConflictError struct {
	StationID uint64
	Blocking  []model.Booking
}

func (e *ConflictError) Error() string {
	spans := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		spans = append(spans, fmt.Sprintf("[%s, %s)", model.FormatSlot(b.StartTime), model.FormatSlot(b.EndTime)))
	}
	return fmt.Sprintf("station %d already booked for %s", e.StationID, strings.Join(spans, ", "))
}

// BookingService creates bookings and answers availability queries.
type BookingService struct {
	store BookingStore
}

// NewBookingService constructs a BookingService over the given store.
func NewBookingService(store BookingStore) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{store: store}
}

// IsAvailable reports whether [start, end) is free on the station.  It
// fetches the station's bookings and applies the half-open overlap test:
// a booking ending exactly at start or starting exactly at end does not
// conflict.  This read is advisory; BookStation repeats the check under
// lock before inserting.
func (s *BookingService) IsAvailable(ctx context.Context, stationID uint64, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, model.ErrInvalidInterval
	}
	existing, err := s.store.FindByStation(ctx, stationID)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// BookStation reserves [start, end) on a station for a user.  The
// availability check and the insert execute as one atomic unit in the
// store, so concurrent overlapping attempts cannot both commit.  On
// overlap a *ConflictError naming the blocking interval(s) is returned
// and no state is written.
func (s *BookingService) BookStation(ctx context.Context, userID, stationID uint64, start, end time.Time) (model.Booking, error) {
	if !end.After(start) {
		return model.Booking{}, model.ErrInvalidInterval
	}
	b := model.Booking{
		UserID:    userID,
		StationID: stationID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	}
	blocking, err := s.store.CreateIfAvailable(ctx, &b)
	if err != nil {
		return model.Booking{}, err
	}
	if len(blocking) > 0 {
		return model.Booking{}, &ConflictError{StationID: stationID, Blocking: blocking}
	}
	return b, nil
}

// StationBookings lists all bookings on a station ordered by start time.
func (s *BookingService) StationBookings(ctx context.Context, stationID uint64) ([]model.Booking, error) {
	return s.store.FindByStation(ctx, stationID)
}

// UserBookings lists the bookings a user currently owns, including any
// acquired through accepted negotiations.
func (s *BookingService) UserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.store.FindByUser(ctx, userID)
}
