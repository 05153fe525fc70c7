package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "lingogate/internal/errors"
	"lingogate/internal/store"
)

func TestStatusUnseenUser(t *testing.T) {
	svc := NewLicenseService(store.NewMemoryStore(), testLicenseConfig(), discardLogger())

	status, err := svc.Status(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "none", status.Status)
	assert.Equal(t, int64(10), status.Credits)
	assert.Equal(t, 5, status.TrialDaysLeft)
	assert.Nil(t, status.TrialEndsAt)
}

func TestStatusTrialUser(t *testing.T) {
	st := store.NewMemoryStore()
	started := time.Now().Add(-36 * time.Hour)
	require.NoError(t, st.CreateUser(context.Background(), "trial@example.com", &store.UserRecord{
		Email:          "trial@example.com",
		Status:         store.StatusTrial,
		Credits:        10,
		TrialStartedAt: started,
	}))

	svc := NewLicenseService(st, testLicenseConfig(), discardLogger())

	status, err := svc.Status(context.Background(), "trial@example.com")
	require.NoError(t, err)
	assert.Equal(t, "trial", status.Status)
	assert.Equal(t, int64(10), status.Credits)
	require.NotNil(t, status.TrialEndsAt)
	assert.Equal(t, started.Add(5*24*time.Hour).Unix(), status.TrialEndsAt.Unix())
	// 36 hours in, a bit over 3 days of the window remain
	assert.Equal(t, 3, status.TrialDaysLeft)
}

func TestStatusExpiredTrialReportsNoDaysLeft(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(context.Background(), "expired@example.com", &store.UserRecord{
		Email:          "expired@example.com",
		Status:         store.StatusTrial,
		Credits:        3,
		TrialStartedAt: time.Now().Add(-10 * 24 * time.Hour),
	}))

	svc := NewLicenseService(st, testLicenseConfig(), discardLogger())

	status, err := svc.Status(context.Background(), "expired@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, status.TrialDaysLeft)
	assert.Equal(t, int64(3), status.Credits)
}

func TestStatusActiveUser(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(context.Background(), "paid@example.com", &store.UserRecord{
		Email:  "paid@example.com",
		Status: store.StatusTrial,
	}))
	require.NoError(t, st.ActivateUser(context.Background(), "paid@example.com", "lab", "LICENSE-1-ABCDEF123"))

	svc := NewLicenseService(st, testLicenseConfig(), discardLogger())

	status, err := svc.Status(context.Background(), "paid@example.com")
	require.NoError(t, err)
	assert.Equal(t, "active", status.Status)
	assert.Equal(t, "lab", status.Plan)
	assert.Equal(t, "LICENSE-1-ABCDEF123", status.LicenseKey)
	assert.Nil(t, status.TrialEndsAt)
}

func TestStatusStoreFailure(t *testing.T) {
	svc := NewLicenseService(&failingStore{}, testLicenseConfig(), discardLogger())

	_, err := svc.Status(context.Background(), "anyone@example.com")
	require.ErrorIs(t, err, apierrors.ErrStoreUnavailable)
}
