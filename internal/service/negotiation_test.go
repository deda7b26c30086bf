package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
	"github.com/iliyamo/ev-charging-reservation/internal/repository"
)

// fakeNegotiationStore mirrors the repository's transactional semantics in
// memory: Create validates booking ownership, Resolve transitions the
// status and reassigns the owner in one step or fails leaving everything
// untouched.  resolveErr simulates a storage failure mid-resolution.
type fakeNegotiationStore struct {
	nextID       uint64
	negotiations map[uint64]model.Negotiation
	owners       map[uint64]uint64 // bookingID -> current owner
	resolveErr   error
}

func newFakeNegotiationStore() *fakeNegotiationStore {
	return &fakeNegotiationStore{
		negotiations: make(map[uint64]model.Negotiation),
		owners:       make(map[uint64]uint64),
	}
}

func (f *fakeNegotiationStore) Create(_ context.Context, n *model.Negotiation) error {
	owner, ok := f.owners[n.OriginalBookingID]
	if !ok {
		return repository.ErrNotFound
	}
	if owner != n.ResponderID {
		return repository.ErrInvalidNegotiation
	}
	f.nextID++
	n.ID = f.nextID
	n.Status = model.NegotiationPending
	f.negotiations[n.ID] = *n
	return nil
}

func (f *fakeNegotiationStore) GetByID(_ context.Context, id uint64) (model.Negotiation, error) {
	n, ok := f.negotiations[id]
	if !ok {
		return model.Negotiation{}, repository.ErrNotFound
	}
	return n, nil
}

func (f *fakeNegotiationStore) Resolve(_ context.Context, id uint64, status string) (model.Negotiation, error) {
	n, ok := f.negotiations[id]
	if !ok {
		return model.Negotiation{}, repository.ErrNotFound
	}
	if n.Resolved() {
		return model.Negotiation{}, repository.ErrAlreadyResolved
	}
	if f.resolveErr != nil {
		return model.Negotiation{}, f.resolveErr
	}
	if status == model.NegotiationAccepted {
		if f.owners[n.OriginalBookingID] != n.ResponderID {
			return model.Negotiation{}, repository.ErrInvalidNegotiation
		}
		f.owners[n.OriginalBookingID] = n.RequesterID
	}
	n.Status = status
	f.negotiations[id] = n
	return n, nil
}

func TestInitiate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending negotiation", func(t *testing.T) {
		store := newFakeNegotiationStore()
		store.owners[10] = 2
		svc := NewNegotiationService(store)
		n, err := svc.Initiate(ctx, 1, 2, 10, 15.5)
		if err != nil {
			t.Fatalf("Initiate returned error: %v", err)
		}
		if n.ID == 0 {
			t.Errorf("Initiate did not assign an id")
		}
		if n.Status != model.NegotiationPending {
			t.Errorf("new negotiation status = %q, want %q", n.Status, model.NegotiationPending)
		}
		if n.ProposedReward != 15.5 {
			t.Errorf("proposed reward = %v, want 15.5", n.ProposedReward)
		}
	})

	t.Run("rejects a negative reward", func(t *testing.T) {
		store := newFakeNegotiationStore()
		store.owners[10] = 2
		svc := NewNegotiationService(store)
		_, err := svc.Initiate(ctx, 1, 2, 10, -1)
		if !errors.Is(err, repository.ErrInvalidNegotiation) {
			t.Fatalf("Initiate error = %v, want ErrInvalidNegotiation", err)
		}
		if len(store.negotiations) != 0 {
			t.Errorf("negative reward wrote %d negotiations", len(store.negotiations))
		}
	})

	t.Run("rejects self-negotiation", func(t *testing.T) {
		store := newFakeNegotiationStore()
		store.owners[10] = 1
		svc := NewNegotiationService(store)
		_, err := svc.Initiate(ctx, 1, 1, 10, 5)
		if !errors.Is(err, repository.ErrInvalidNegotiation) {
			t.Fatalf("Initiate error = %v, want ErrInvalidNegotiation", err)
		}
	})

	t.Run("rejects a missing booking", func(t *testing.T) {
		svc := NewNegotiationService(newFakeNegotiationStore())
		_, err := svc.Initiate(ctx, 1, 2, 99, 5)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("Initiate error = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects a stale responder", func(t *testing.T) {
		store := newFakeNegotiationStore()
		store.owners[10] = 3 // booking now owned by someone else
		svc := NewNegotiationService(store)
		_, err := svc.Initiate(ctx, 1, 2, 10, 5)
		if !errors.Is(err, repository.ErrInvalidNegotiation) {
			t.Fatalf("Initiate error = %v, want ErrInvalidNegotiation", err)
		}
	})

	t.Run("zero reward is allowed", func(t *testing.T) {
		store := newFakeNegotiationStore()
		store.owners[10] = 2
		svc := NewNegotiationService(store)
		if _, err := svc.Initiate(ctx, 1, 2, 10, 0); err != nil {
			t.Fatalf("Initiate with zero reward returned error: %v", err)
		}
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fakeNegotiationStore, *NegotiationService, model.Negotiation) {
		t.Helper()
		store := newFakeNegotiationStore()
		store.owners[10] = 2
		svc := NewNegotiationService(store)
		n, err := svc.Initiate(ctx, 1, 2, 10, 12)
		if err != nil {
			t.Fatalf("seed negotiation failed: %v", err)
		}
		return store, svc, n
	}

	t.Run("acceptance transfers ownership", func(t *testing.T) {
		store, svc, n := seed(t)
		resolved, err := svc.Respond(ctx, n.ID, model.NegotiationAccepted)
		if err != nil {
			t.Fatalf("Respond returned error: %v", err)
		}
		if resolved.Status != model.NegotiationAccepted {
			t.Errorf("status = %q, want %q", resolved.Status, model.NegotiationAccepted)
		}
		if got := store.owners[10]; got != 1 {
			t.Errorf("booking owner = %d, want requester 1", got)
		}
	})

	t.Run("rejection leaves ownership", func(t *testing.T) {
		store, svc, n := seed(t)
		resolved, err := svc.Respond(ctx, n.ID, model.NegotiationRejected)
		if err != nil {
			t.Fatalf("Respond returned error: %v", err)
		}
		if resolved.Status != model.NegotiationRejected {
			t.Errorf("status = %q, want %q", resolved.Status, model.NegotiationRejected)
		}
		if got := store.owners[10]; got != 2 {
			t.Errorf("booking owner = %d, want responder 2", got)
		}
	})

	t.Run("second response is refused", func(t *testing.T) {
		store, svc, n := seed(t)
		if _, err := svc.Respond(ctx, n.ID, model.NegotiationRejected); err != nil {
			t.Fatalf("first Respond returned error: %v", err)
		}
		_, err := svc.Respond(ctx, n.ID, model.NegotiationAccepted)
		if !errors.Is(err, repository.ErrAlreadyResolved) {
			t.Fatalf("second Respond error = %v, want ErrAlreadyResolved", err)
		}
		got, getErr := svc.Get(ctx, n.ID)
		if getErr != nil {
			t.Fatalf("Get returned error: %v", getErr)
		}
		if got.Status != model.NegotiationRejected {
			t.Errorf("status after refused second response = %q, want %q", got.Status, model.NegotiationRejected)
		}
		if owner := store.owners[10]; owner != 2 {
			t.Errorf("booking owner = %d, want 2 unchanged", owner)
		}
	})

	t.Run("invalid response string", func(t *testing.T) {
		store, svc, n := seed(t)
		if _, err := svc.Respond(ctx, n.ID, "maybe"); err == nil {
			t.Fatal("Respond accepted an invalid response string")
		}
		got, err := svc.Get(ctx, n.ID)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if got.Status != model.NegotiationPending {
			t.Errorf("status = %q, want still pending", got.Status)
		}
		if owner := store.owners[10]; owner != 2 {
			t.Errorf("booking owner = %d, want 2 unchanged", owner)
		}
	})

	t.Run("storage failure leaves everything untouched", func(t *testing.T) {
		store, svc, n := seed(t)
		store.resolveErr = errors.New("deadlock detected")
		_, err := svc.Respond(ctx, n.ID, model.NegotiationAccepted)
		if !errors.Is(err, store.resolveErr) {
			t.Fatalf("Respond error = %v, want store failure", err)
		}
		store.resolveErr = nil
		got, getErr := svc.Get(ctx, n.ID)
		if getErr != nil {
			t.Fatalf("Get returned error: %v", getErr)
		}
		if got.Status != model.NegotiationPending {
			t.Errorf("status after failed resolution = %q, want pending", got.Status)
		}
		if owner := store.owners[10]; owner != 2 {
			t.Errorf("booking owner = %d, want 2 unchanged", owner)
		}
	})

	t.Run("missing negotiation", func(t *testing.T) {
		svc := NewNegotiationService(newFakeNegotiationStore())
		_, err := svc.Respond(ctx, 42, model.NegotiationAccepted)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("Respond error = %v, want ErrNotFound", err)
		}
	})

	t.Run("acceptance after owner changed is refused", func(t *testing.T) {
		store, svc, n := seed(t)
		store.owners[10] = 3 // reassigned out of band
		_, err := svc.Respond(ctx, n.ID, model.NegotiationAccepted)
		if !errors.Is(err, repository.ErrInvalidNegotiation) {
			t.Fatalf("Respond error = %v, want ErrInvalidNegotiation", err)
		}
		got, getErr := svc.Get(ctx, n.ID)
		if getErr != nil {
			t.Fatalf("Get returned error: %v", getErr)
		}
		if got.Status != model.NegotiationPending {
			t.Errorf("status = %q, want still pending", got.Status)
		}
	})
}
