package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
	"github.com/iliyamo/ev-charging-reservation/internal/queue"
	"github.com/iliyamo/ev-charging-reservation/internal/service"
)

// BookingHandler exposes station booking operations over HTTP.  All
// methods on the authenticated routes assume JWT validation has already
// been performed by middleware and may return 401 Unauthorized if the
// user ID cannot be extracted from the context.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// bookingView is the JSON shape of a booking.  Timestamps use the
// minute-resolution wire format.
type bookingView struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	StationID uint64 `json:"station_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toBookingView(b model.Booking) bookingView {
	return bookingView{
		ID:        b.ID,
		UserID:    b.UserID,
		StationID: b.StationID,
		StartTime: model.FormatSlot(b.StartTime),
		EndTime:   model.FormatSlot(b.EndTime),
	}
}

func toBookingViews(bs []model.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingView(b))
	}
	return out
}

// slotFromQuery parses the start/end query parameters shared by the
// availability and quote endpoints.
func slotFromQuery(c echo.Context) (time.Time, time.Time, error) {
	return model.ParseSlot(c.QueryParam("start"), c.QueryParam("end"))
}

// GetAvailability handles GET /v1/stations/:id/availability?start=&end=.
// It reports whether the requested half-open slot is free on the station.
// The answer is advisory: the authoritative check happens again under
// lock when a booking is created.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	start, end, err := slotFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end must be of form " + model.SlotLayout + " with start < end"})
	}
	available, err := h.Bookings.IsAvailable(c.Request().Context(), stationID, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"station_id": stationID,
		"start_time": model.FormatSlot(start),
		"end_time":   model.FormatSlot(end),
		"available":  available,
	})
}

// ListStationBookings handles GET /v1/stations/:id/bookings.  It returns
// all bookings on the station ordered by start time so clients can pick
// a free slot.
func (h *BookingHandler) ListStationBookings(c echo.Context) error {
	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	items, err := h.Bookings.StationBookings(c.Request().Context(), stationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingViews(items)})
}

// CreateBooking handles POST /v1/bookings.  The request body carries the
// station and the desired slot; the owner is the authenticated user.  On
// overlap it responds 409 with the blocking interval(s); the availability
// check and insert run as one transaction so no partial state is written.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		StationID uint64 `json:"station_id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id is required"})
	}
	start, end, err := model.ParseSlot(body.StartTime, body.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time must be of form " + model.SlotLayout + " with start < end"})
	}

	b, err := h.Bookings.BookStation(c.Request().Context(), userID, body.StationID, start, end)
	if err != nil {
		var conflict *service.ConflictError
		if errors.As(err, &conflict) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":    "station not available for the requested slot",
				"blocking": toBookingViews(conflict.Blocking),
			})
		}
		if errors.Is(err, model.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interval"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	// Best effort event; a broker outage never fails the booking.
	_ = queue.PublishBookingCreated(c.Request().Context(), queue.BookingCreatedEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		StationID: b.StationID,
		StartTime: model.FormatSlot(b.StartTime),
		EndTime:   model.FormatSlot(b.EndTime),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toBookingView(b))
}

// ListMyBookings handles GET /v1/my-bookings.  It returns all bookings
// currently owned by the authenticated user, including those acquired
// through accepted negotiations.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.UserBookings(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingViews(items)})
}
