package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
	"github.com/iliyamo/ev-charging-reservation/internal/queue"
	"github.com/iliyamo/ev-charging-reservation/internal/repository"
	"github.com/iliyamo/ev-charging-reservation/internal/service"
)

// NegotiationHandler exposes the negotiation lifecycle over HTTP.  The
// authenticated user plays the requester on initiation and must be the
// responder to resolve.  The reward policy is exposed as a quote
// endpoint so clients can price a proposal before initiating.
type NegotiationHandler struct {
	Negotiations *service.NegotiationService
	Reward       service.RewardPolicy
}

// NewNegotiationHandler constructs a NegotiationHandler.  Both
// dependencies must be non-nil.
func NewNegotiationHandler(negotiations *service.NegotiationService, reward service.RewardPolicy) *NegotiationHandler {
	if negotiations == nil || reward == nil {
		panic("nil dependency passed to NewNegotiationHandler")
	}
	return &NegotiationHandler{Negotiations: negotiations, Reward: reward}
}

// negotiationView is the JSON shape of a negotiation.
type negotiationView struct {
	ID                uint64  `json:"id"`
	RequesterID       uint64  `json:"requester_id"`
	ResponderID       uint64  `json:"responder_id"`
	OriginalBookingID uint64  `json:"original_booking_id"`
	ProposedReward    float64 `json:"proposed_reward"`
	Status            string  `json:"status"`
}

func toNegotiationView(n model.Negotiation) negotiationView {
	return negotiationView{
		ID:                n.ID,
		RequesterID:       n.RequesterID,
		ResponderID:       n.ResponderID,
		OriginalBookingID: n.OriginalBookingID,
		ProposedReward:    n.ProposedReward,
		Status:            n.Status,
	}
}

// QuoteReward handles GET /v1/reward-quote?start=&end=.  It applies the
// configured reward policy to the given interval and returns the
// suggested amount.  The quote is informational; clients remain free to
// propose any non-negative reward.
func (h *NegotiationHandler) QuoteReward(c echo.Context) error {
	start, end, err := slotFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end must be of form " + model.SlotLayout + " with start < end"})
	}
	amount, err := h.Reward(start, end)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interval"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"start_time": model.FormatSlot(start),
		"end_time":   model.FormatSlot(end),
		"reward":     amount,
	})
}

// CreateNegotiation handles POST /v1/negotiations.  The authenticated
// user is the requester; the body names the target booking, its current
// owner and the proposed reward.  422 is returned when the responder
// does not currently own the booking.
func (h *NegotiationHandler) CreateNegotiation(c echo.Context) error {
	requesterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ResponderID uint64  `json:"responder_id"`
		BookingID   uint64  `json:"booking_id"`
		Reward      float64 `json:"proposed_reward"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ResponderID == 0 || body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "responder_id and booking_id are required"})
	}

	n, err := h.Negotiations.Initiate(c.Request().Context(), requesterID, body.ResponderID, body.BookingID, body.Reward)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrInvalidNegotiation) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create negotiation"})
	}
	return c.JSON(http.StatusCreated, toNegotiationView(n))
}

// GetNegotiation handles GET /v1/negotiations/:id.  Only the two parties
// of a negotiation may view it.
func (h *NegotiationHandler) GetNegotiation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid negotiation id"})
	}
	n, err := h.Negotiations.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "negotiation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load negotiation"})
	}
	if n.RequesterID != userID && n.ResponderID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toNegotiationView(n)})
}

// RespondNegotiation handles POST /v1/negotiations/:id/respond.  The
// body carries "accepted" or "rejected".  Only the responder may answer,
// exactly once: a second response gets 409 and the stored status stays
// unchanged.  Acceptance transfers the booking to the requester in the
// same transaction that records the status.
func (h *NegotiationHandler) RespondNegotiation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid negotiation id"})
	}
	var body struct {
		Response string `json:"response"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidResponse(body.Response) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "response must be accepted or rejected"})
	}

	// Check the caller is the responder before attempting to resolve.
	current, err := h.Negotiations.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "negotiation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load negotiation"})
	}
	if current.ResponderID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the responder may answer"})
	}

	n, err := h.Negotiations.Respond(c.Request().Context(), id, body.Response)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "negotiation already resolved"})
		}
		if errors.Is(err, repository.ErrInvalidNegotiation) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "responder no longer owns the booking"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "negotiation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to respond"})
	}

	// Best effort event; a broker outage never fails the response.
	_ = queue.PublishNegotiationResolved(c.Request().Context(), queue.NegotiationResolvedEvent{
		NegotiationID:  n.ID,
		RequesterID:    n.RequesterID,
		ResponderID:    n.ResponderID,
		BookingID:      n.OriginalBookingID,
		ProposedReward: n.ProposedReward,
		Status:         n.Status,
		ResolvedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toNegotiationView(n))
}
