// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// BookingCreatedEvent is published when a station booking commits.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID uint64 `json:"booking_id"`
	UserID    uint64 `json:"user_id"`
	StationID uint64 `json:"station_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CreatedAt string `json:"created_at"`
}

// NegotiationResolvedEvent is published when a negotiation reaches a
// terminal state.  Status is "accepted" or "rejected"; on acceptance the
// booking named here has already changed owner by the time the event is
// emitted.
type NegotiationResolvedEvent struct {
	NegotiationID  uint64  `json:"negotiation_id"`
	RequesterID    uint64  `json:"requester_id"`
	ResponderID    uint64  `json:"responder_id"`
	BookingID      uint64  `json:"booking_id"`
	ProposedReward float64 `json:"proposed_reward"`
	Status         string  `json:"status"`
	ResolvedAt     string  `json:"resolved_at"`
}
