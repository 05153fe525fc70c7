package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// enforcement-disabled development runs where no Firestore project is
// configured. Records are copied on the way in and out.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[string]*UserRecord
	transactions map[string]*TransactionRecord
	orders       map[string]*PendingOrder

	// Now is the clock used for server-assigned timestamps.
	// Overridable in tests.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*UserRecord),
		transactions: make(map[string]*TransactionRecord),
		orders:       make(map[string]*PendingOrder),
		Now:          time.Now,
	}
}

// GetUser returns a copy of the record for id, or ErrNotFound
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// CreateUser writes a new record, failing if one already exists
func (s *MemoryStore) CreateUser(ctx context.Context, id string, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; ok {
		return ErrAlreadyExists
	}

	cp := *rec
	now := s.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = now
	}
	s.users[id] = &cp
	return nil
}

// SpendCredit decrements the credit balance under the store lock, which
// makes the check-then-decrement atomic
func (s *MemoryStore) SpendCredit(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Credits <= 0 {
		return false, nil
	}

	rec.Credits--
	rec.UpdatedAt = s.Now()
	return true, nil
}

// ActivateUser merges the paid subscription fields into the user record,
// creating it if missing
func (s *MemoryStore) ActivateUser(ctx context.Context, id, plan, licenseKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		rec = &UserRecord{Email: id, CreatedAt: s.Now()}
		s.users[id] = rec
	}

	rec.Status = StatusActive
	rec.Plan = plan
	rec.LicenseKey = licenseKey
	rec.UpdatedAt = s.Now()
	return nil
}

// PutTransaction writes the confirmation record, overwriting any previous
// confirmation of the same order
func (s *MemoryStore) PutTransaction(ctx context.Context, rec *TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.Now()
	}
	s.transactions[cp.OrderID] = &cp
	return nil
}

// GetTransaction returns a copy of the stored confirmation, or ErrNotFound.
// Test helper; the Store interface does not require reads of transactions.
func (s *MemoryStore) GetTransaction(ctx context.Context, orderID string) (*TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.transactions[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// PutPendingOrder records an initiated order before payment
func (s *MemoryStore) PutPendingOrder(ctx context.Context, order *PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *order
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.Now()
	}
	s.orders[cp.OrderID] = &cp
	return nil
}

// GetPendingOrder returns the pending order, or ErrNotFound
func (s *MemoryStore) GetPendingOrder(ctx context.Context, orderID string) (*PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
