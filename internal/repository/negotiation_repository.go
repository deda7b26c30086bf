package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
)

// NegotiationRepo provides persistence for booking-transfer negotiations.
// Compound operations (Create, Resolve) run inside single transactions so
// the pending check, the status write and the booking ownership transfer
// can never be observed half-applied.
type NegotiationRepo struct {
	db       *sql.DB
	bookings *BookingRepo
}

// NewNegotiationRepo returns a NegotiationRepo bound to the given database.
// The booking repository is used for row-locked reads and ownership
// reassignment inside negotiation transactions.
func NewNegotiationRepo(db *sql.DB, bookings *BookingRepo) *NegotiationRepo {
	return &NegotiationRepo{db: db, bookings: bookings}
}

const negotiationColumns = `id, requester_id, responder_id, original_booking_id, proposed_reward, status, created_at, updated_at`

func scanNegotiation(row interface {
	Scan(dest ...interface{}) error
}) (model.Negotiation, error) {
	var n model.Negotiation
	err := row.Scan(&n.ID, &n.RequesterID, &n.ResponderID, &n.OriginalBookingID,
		&n.ProposedReward, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// Create inserts a pending negotiation after validating, under lock, that
// the target booking exists and is currently owned by the responder.  A
// stale proposal (responder no longer owns the booking) fails with
// ErrInvalidNegotiation and writes nothing.  On success n.ID is populated
// and n.Status is set to pending.
func (r *NegotiationRepo) Create(ctx context.Context, n *model.Negotiation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	b, err := r.bookings.GetForUpdateTx(ctx, tx, n.OriginalBookingID)
	if err != nil {
		return err
	}
	if b.UserID != n.ResponderID {
		return ErrInvalidNegotiation
	}
	const ins = `INSERT INTO negotiations (requester_id, responder_id, original_booking_id, proposed_reward, status)
	             VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, n.RequesterID, n.ResponderID, n.OriginalBookingID,
		n.ProposedReward, model.NegotiationPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	n.Status = model.NegotiationPending
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a negotiation.  ErrNotFound is returned when no row
// exists.
func (r *NegotiationRepo) GetByID(ctx context.Context, id uint64) (model.Negotiation, error) {
	const q = `SELECT ` + negotiationColumns + ` FROM negotiations WHERE id = ? LIMIT 1`
	n, err := scanNegotiation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Negotiation{}, ErrNotFound
	}
	return n, err
}

// Resolve transitions a pending negotiation to the given terminal status.
// The negotiation row is locked first; responding to one that is already
// terminal fails with ErrAlreadyResolved and leaves the stored status
// untouched, so two racing responses produce exactly one transition.  On
// acceptance the booking's owner is reassigned to the requester in the
// same transaction.  If the responder no longer owns the booking when an
// acceptance lands, the transfer is refused with ErrInvalidNegotiation
// and the negotiation stays pending.
func (r *NegotiationRepo) Resolve(ctx context.Context, id uint64, status string) (model.Negotiation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Negotiation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT ` + negotiationColumns + ` FROM negotiations WHERE id = ? FOR UPDATE`
	n, err := scanNegotiation(tx.QueryRowContext(ctx, sel, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Negotiation{}, ErrNotFound
	}
	if err != nil {
		return model.Negotiation{}, err
	}
	if n.Resolved() {
		return model.Negotiation{}, ErrAlreadyResolved
	}
	if status == model.NegotiationAccepted {
		b, err := r.bookings.GetForUpdateTx(ctx, tx, n.OriginalBookingID)
		if err != nil {
			return model.Negotiation{}, err
		}
		if b.UserID != n.ResponderID {
			return model.Negotiation{}, ErrInvalidNegotiation
		}
		if err := r.bookings.ReassignOwnerTx(ctx, tx, n.OriginalBookingID, n.RequesterID); err != nil {
			return model.Negotiation{}, err
		}
	}
	const upd = `UPDATE negotiations SET status = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, status, id); err != nil {
		return model.Negotiation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Negotiation{}, err
	}
	committed = true
	n.Status = status
	return n, nil
}
