package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetUser(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := &UserRecord{
		Email:          "alice@example.com",
		Status:         StatusTrial,
		Credits:        10,
		TrialStartedAt: time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, "alice@example.com", rec))

	err = s.CreateUser(ctx, "alice@example.com", rec)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := s.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusTrial, got.Status)
	assert.Equal(t, int64(10), got.Credits)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryStoreSpendCredit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.SpendCredit(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, "bob@example.com", &UserRecord{
		Email:   "bob@example.com",
		Status:  StatusTrial,
		Credits: 2,
	}))

	for i := 0; i < 2; i++ {
		spent, err := s.SpendCredit(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.True(t, spent)
	}

	spent, err := s.SpendCredit(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, spent)

	got, err := s.GetUser(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Credits)
}

// Concurrent spends of N credits must yield exactly N successes and never
// drive the balance negative.
func TestMemoryStoreSpendCreditConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const credits = 25
	const workers = 100

	require.NoError(t, s.CreateUser(ctx, "carol@example.com", &UserRecord{
		Email:   "carol@example.com",
		Credits: credits,
	}))

	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			spent, err := s.SpendCredit(ctx, "carol@example.com")
			assert.NoError(t, err)
			results <- spent
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for spent := range results {
		if spent {
			succeeded++
		}
	}
	assert.Equal(t, credits, succeeded)

	got, err := s.GetUser(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Credits)
}

func TestMemoryStoreActivateUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateUser(ctx, "dave@example.com", &UserRecord{
		Email:   "dave@example.com",
		Status:  StatusTrial,
		Credits: 3,
	}))

	require.NoError(t, s.ActivateUser(ctx, "dave@example.com", "lab", "LICENSE-1-ABC"))

	got, err := s.GetUser(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, "lab", got.Plan)
	assert.Equal(t, "LICENSE-1-ABC", got.LicenseKey)
	// Credits survive activation untouched
	assert.Equal(t, int64(3), got.Credits)

	// Activating an unseen user provisions a record
	require.NoError(t, s.ActivateUser(ctx, "eve@example.com", "personal", "LICENSE-2-DEF"))
	got, err = s.GetUser(ctx, "eve@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
}

func TestMemoryStoreTransactionOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &TransactionRecord{OrderID: "ORDER-1", PaymentKey: "pay-1", Amount: 50000, Status: "DONE"}
	require.NoError(t, s.PutTransaction(ctx, first))

	second := &TransactionRecord{OrderID: "ORDER-1", PaymentKey: "pay-2", Amount: 50000, Status: "DONE"}
	require.NoError(t, s.PutTransaction(ctx, second))

	got, err := s.GetTransaction(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-2", got.PaymentKey)
}

func TestMemoryStorePendingOrders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetPendingOrder(ctx, "ORDER-X")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutPendingOrder(ctx, &PendingOrder{
		OrderID: "ORDER-X",
		User:    "frank@example.com",
		Amount:  750000,
	}))

	got, err := s.GetPendingOrder(ctx, "ORDER-X")
	require.NoError(t, err)
	assert.Equal(t, "frank@example.com", got.User)
	assert.Equal(t, int64(750000), got.Amount)
	assert.False(t, got.CreatedAt.IsZero())
}
