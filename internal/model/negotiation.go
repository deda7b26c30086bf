package model

import "time"

// Negotiation status values.  A negotiation starts as pending and moves
// exactly once to accepted or rejected; both are terminal.
const (
	NegotiationPending  = "pending"
	NegotiationAccepted = "accepted"
	NegotiationRejected = "rejected"
)

// Negotiation is a proposal from a requester to the current owner of a
// booking (the responder) to transfer the booking in exchange for a
// monetary reward.  Accepting the proposal reassigns the booking's owner
// to the requester in the same transaction that records the acceptance.
//
// Fields:
//  ID                – primary key identifier.
//  RequesterID       – user asking to take over the booking.
//  ResponderID       – user who owns the booking when the proposal is made.
//  OriginalBookingID – the booking whose ownership is negotiated.
//  ProposedReward    – non-negative amount offered to the responder.
//  Status            – pending, accepted or rejected.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp (changes on resolution).
type Negotiation struct {
	ID                uint64    // negotiations.id
	RequesterID       uint64    // negotiations.requester_id
	ResponderID       uint64    // negotiations.responder_id
	OriginalBookingID uint64    // negotiations.original_booking_id
	ProposedReward    float64   // negotiations.proposed_reward
	Status            string    // negotiations.status
	CreatedAt         time.Time // negotiations.created_at
	UpdatedAt         time.Time // negotiations.updated_at
}

// Resolved reports whether the negotiation has reached a terminal state.
func (n Negotiation) Resolved() bool {
	return n.Status != NegotiationPending
}

// ValidResponse reports whether s is an allowed resolution of a pending
// negotiation.  Only the two terminal states qualify; "pending" is not a
// response.
func ValidResponse(s string) bool {
	return s == NegotiationAccepted || s == NegotiationRejected
}
