package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
	"github.com/iliyamo/ev-charging-reservation/internal/repository"
)

// NegotiationStore is the slice of the storage gateway the negotiation
// service needs.  *repository.NegotiationRepo satisfies it.
type NegotiationStore interface {
	// Create validates booking ownership under lock and inserts a pending
	// negotiation.
	Create(ctx context.Context, n *model.Negotiation) error
	GetByID(ctx context.Context, id uint64) (model.Negotiation, error)
	// Resolve transitions pending -> status atomically, transferring the
	// booking's owner to the requester when status is accepted.
	Resolve(ctx context.Context, id uint64, status string) (model.Negotiation, error)
}

// NegotiationService runs the negotiation lifecycle: a requester proposes
// taking over a booking for a reward, and the booking's owner accepts or
// rejects exactly once.
type NegotiationService struct {
	store NegotiationStore
}

// NewNegotiationService constructs a NegotiationService over the given
// store.
func NewNegotiationService(store NegotiationStore) *NegotiationService {
	if store == nil {
		panic("nil store passed to NewNegotiationService")
	}
	return &NegotiationService{store: store}
}

// Initiate creates a pending negotiation from requester to responder over
// a booking.  Preconditions checked before any write: the reward is
// non-negative, requester and responder differ, and the booking is
// currently owned by the responder (validated by the store under lock).
// Violations surface as ErrInvalidNegotiation; a missing booking as
// ErrNotFound.
func (s *NegotiationService) Initiate(ctx context.Context, requesterID, responderID, bookingID uint64, reward float64) (model.Negotiation, error) {
	if reward < 0 {
		return model.Negotiation{}, fmt.Errorf("%w: reward must be non-negative", repository.ErrInvalidNegotiation)
	}
	if requesterID == responderID {
		return model.Negotiation{}, fmt.Errorf("%w: requester and responder must differ", repository.ErrInvalidNegotiation)
	}
	n := model.Negotiation{
		RequesterID:       requesterID,
		ResponderID:       responderID,
		OriginalBookingID: bookingID,
		ProposedReward:    reward,
	}
	if err := s.store.Create(ctx, &n); err != nil {
		return model.Negotiation{}, err
	}
	return n, nil
}

// Get returns a negotiation by id.
func (s *NegotiationService) Get(ctx context.Context, id uint64) (model.Negotiation, error) {
	return s.store.GetByID(ctx, id)
}

// Respond resolves a pending negotiation with "accepted" or "rejected".
// Acceptance reassigns the booking's owner to the requester in the same
// transaction that records the status; rejection records the status only.
// Responding to an already-terminal negotiation fails with
// ErrAlreadyResolved and changes nothing, so a second call is rejected
// rather than re-applied.
func (s *NegotiationService) Respond(ctx context.Context, id uint64, response string) (model.Negotiation, error) {
	if !model.ValidResponse(response) {
		return model.Negotiation{}, fmt.Errorf("invalid response %q: must be %q or %q",
			response, model.NegotiationAccepted, model.NegotiationRejected)
	}
	n, err := s.store.Resolve(ctx, id, response)
	if err != nil {
		return model.Negotiation{}, err
	}
	return n, nil
}
