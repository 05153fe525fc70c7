package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lingogate/internal/config"
)

const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
	ordersCollection       = "orders"
)

// FirestoreStore implements Store on Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewFirestoreStore connects to the configured Firestore database. A
// non-default database ID is honored when set; credentials fall back to
// application default credentials when no file is configured.
func NewFirestoreStore(ctx context.Context, cfg config.FirebaseConfig, logger *slog.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.InfoContext(ctx, "connected to firestore",
		slog.String("project_id", cfg.ProjectID),
		slog.String("database_id", databaseID),
	)

	return &FirestoreStore{
		client: client,
		logger: logger.With(slog.String("component", "firestore_store")),
	}, nil
}

// GetUser returns the record for id, or ErrNotFound
func (s *FirestoreStore) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	doc, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}

	var rec UserRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", id, err)
	}
	return &rec, nil
}

// CreateUser writes a new record, failing if one already exists
func (s *FirestoreStore) CreateUser(ctx context.Context, id string, rec *UserRecord) error {
	_, err := s.client.Collection(usersCollection).Doc(id).Create(ctx, rec)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create user %q: %w", id, err)
	}
	return nil
}

// SpendCredit decrements the credit balance inside a Firestore transaction,
// so two concurrent spends of the last credit cannot both succeed.
func (s *FirestoreStore) SpendCredit(ctx context.Context, id string) (bool, error) {
	ref := s.client.Collection(usersCollection).Doc(id)

	var spent bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var rec UserRecord
		if err := doc.DataTo(&rec); err != nil {
			return err
		}

		if rec.Credits <= 0 {
			spent = false
			return nil
		}

		spent = true
		return tx.Update(ref, []firestore.Update{
			{Path: "credits", Value: firestore.Increment(-1)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return false, fmt.Errorf("spend credit for %q: %w", id, err)
	}
	return spent, nil
}

// ActivateUser merges the paid subscription fields into the user record
func (s *FirestoreStore) ActivateUser(ctx context.Context, id, plan, licenseKey string) error {
	_, err := s.client.Collection(usersCollection).Doc(id).Set(ctx, map[string]interface{}{
		"email":      id,
		"status":     string(StatusActive),
		"plan":       plan,
		"licenseKey": licenseKey,
		"updatedAt":  firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("activate user %q: %w", id, err)
	}
	return nil
}

// PutTransaction writes the confirmation record, overwriting any previous
// confirmation of the same order
func (s *FirestoreStore) PutTransaction(ctx context.Context, rec *TransactionRecord) error {
	_, err := s.client.Collection(transactionsCollection).Doc(rec.OrderID).Set(ctx, rec)
	if err != nil {
		return fmt.Errorf("put transaction %q: %w", rec.OrderID, err)
	}
	return nil
}

// PutPendingOrder records an initiated order before payment
func (s *FirestoreStore) PutPendingOrder(ctx context.Context, order *PendingOrder) error {
	_, err := s.client.Collection(ordersCollection).Doc(order.OrderID).Set(ctx, order)
	if err != nil {
		return fmt.Errorf("put pending order %q: %w", order.OrderID, err)
	}
	return nil
}

// GetPendingOrder returns the pending order, or ErrNotFound
func (s *FirestoreStore) GetPendingOrder(ctx context.Context, orderID string) (*PendingOrder, error) {
	doc, err := s.client.Collection(ordersCollection).Doc(orderID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get pending order %q: %w", orderID, err)
	}

	var order PendingOrder
	if err := doc.DataTo(&order); err != nil {
		return nil, fmt.Errorf("decode pending order %q: %w", orderID, err)
	}
	return &order, nil
}

// Ping reports whether Firestore is reachable. A NotFound on the probe
// document still means the service answered.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(usersCollection).Doc("__health__").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close releases the Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
