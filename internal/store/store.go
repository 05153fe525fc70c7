package store

import (
	"context"
	"errors"
	"time"
)

// SubscriptionStatus is the canonical subscription state of a user record
type SubscriptionStatus string

const (
	// StatusTrial marks a user inside the free allowance (trial window,
	// then starting credits)
	StatusTrial SubscriptionStatus = "trial"
	// StatusActive marks a paid subscription; metering is bypassed
	StatusActive SubscriptionStatus = "active"
	// StatusNone marks a user with no subscription and no trial
	StatusNone SubscriptionStatus = "none"
)

// Sentinel errors returned by Store implementations
var (
	ErrNotFound      = errors.New("store: record not found")
	ErrAlreadyExists = errors.New("store: record already exists")
)

// UserRecord is the per-user license state, keyed by the user identifier
// (email when the identity token carries one, otherwise the provider UID).
// Created lazily on the first license check and never deleted.
type UserRecord struct {
	Email          string             `firestore:"email" json:"email"`
	Status         SubscriptionStatus `firestore:"status" json:"status"`
	Credits        int64              `firestore:"credits" json:"credits"`
	TrialStartedAt time.Time          `firestore:"trialStartedAt" json:"trial_started_at"`
	Plan           string             `firestore:"plan,omitempty" json:"plan,omitempty"`
	LicenseKey     string             `firestore:"licenseKey,omitempty" json:"license_key,omitempty"`
	CreatedAt      time.Time          `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt      time.Time          `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}

// TransactionRecord is the payment confirmation log, keyed by order ID.
// Re-confirming the same order overwrites the previous record.
type TransactionRecord struct {
	PaymentKey string    `firestore:"paymentKey" json:"payment_key"`
	OrderID    string    `firestore:"orderId" json:"order_id"`
	Amount     int64     `firestore:"amount" json:"amount"`
	Status     string    `firestore:"status" json:"status"`
	LicenseKey string    `firestore:"licenseKey" json:"license_key"`
	User       string    `firestore:"user" json:"user"`
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// PendingOrder links an order ID to the user who initiated payment, so
// confirmation does not have to decode the user out of the order string.
type PendingOrder struct {
	OrderID   string    `firestore:"orderId" json:"order_id"`
	User      string    `firestore:"user" json:"user"`
	Amount    int64     `firestore:"amount" json:"amount"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// Store is the key-value persistence contract for user, transaction and
// pending-order records. SpendCredit is the only operation that must be
// atomic: implementations express the check-then-decrement as a single
// conditional update so concurrent spends never take credits below zero.
type Store interface {
	// GetUser returns the record for id, or ErrNotFound.
	GetUser(ctx context.Context, id string) (*UserRecord, error)

	// CreateUser writes a new record for id. Returns ErrAlreadyExists if
	// a record is already present.
	CreateUser(ctx context.Context, id string, rec *UserRecord) error

	// SpendCredit atomically decrements the user's credit balance by one
	// if it is positive. Reports whether a credit was spent.
	SpendCredit(ctx context.Context, id string) (bool, error)

	// ActivateUser merges the paid subscription fields into the user
	// record. Credits are left untouched.
	ActivateUser(ctx context.Context, id, plan, licenseKey string) error

	// PutTransaction writes the transaction record keyed by its order ID,
	// overwriting any previous confirmation of the same order.
	PutTransaction(ctx context.Context, rec *TransactionRecord) error

	// PutPendingOrder records an initiated order before payment.
	PutPendingOrder(ctx context.Context, order *PendingOrder) error

	// GetPendingOrder returns the pending order, or ErrNotFound.
	GetPendingOrder(ctx context.Context, orderID string) (*PendingOrder, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}
