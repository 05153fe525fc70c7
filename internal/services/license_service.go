package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lingogate/internal/config"
	apierrors "lingogate/internal/errors"
	"lingogate/internal/store"
)

// LicenseStatusResponse summarizes a user's license state for the client
type LicenseStatusResponse struct {
	User          string     `json:"user"`
	Status        string     `json:"status"` // trial|active|none
	Plan          string     `json:"plan,omitempty"`
	Credits       int64      `json:"credits"`
	TrialDaysLeft int        `json:"trial_days_left"`
	TrialEndsAt   *time.Time `json:"trial_ends_at,omitempty"`
	LicenseKey    string     `json:"license_key,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// LicenseService reports license state to authenticated clients
type LicenseService interface {
	// Status returns the user's record summary. An unseen user reports
	// status "none" with a full trial ahead; the record itself is only
	// provisioned by the first metered call.
	Status(ctx context.Context, userID string) (*LicenseStatusResponse, error)
}

// licenseService implements LicenseService
type licenseService struct {
	store  store.Store
	cfg    config.LicenseConfig
	logger *slog.Logger
	clock  func() time.Time
}

// NewLicenseService creates the license status service
func NewLicenseService(st store.Store, cfg config.LicenseConfig, logger *slog.Logger) LicenseService {
	return &licenseService{
		store:  st,
		cfg:    cfg,
		logger: logger.With(slog.String("service", "license")),
		clock:  time.Now,
	}
}

// Status returns the user's license summary
func (s *licenseService) Status(ctx context.Context, userID string) (*LicenseStatusResponse, error) {
	now := s.clock()

	rec, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &LicenseStatusResponse{
			User:          userID,
			Status:        string(store.StatusNone),
			Credits:       s.cfg.StartingCredits,
			TrialDaysLeft: s.cfg.TrialDays,
			Timestamp:     now,
		}, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "license status read failed",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return nil, apierrors.ErrStoreUnavailable
	}

	resp := &LicenseStatusResponse{
		User:       userID,
		Status:     string(rec.Status),
		Plan:       rec.Plan,
		Credits:    rec.Credits,
		LicenseKey: rec.LicenseKey,
		Timestamp:  now,
	}

	if rec.Status == store.StatusTrial && !rec.TrialStartedAt.IsZero() {
		endsAt := rec.TrialStartedAt.Add(time.Duration(s.cfg.TrialDays) * 24 * time.Hour)
		resp.TrialEndsAt = &endsAt
		if left := int(endsAt.Sub(now) / (24 * time.Hour)); left > 0 {
			resp.TrialDaysLeft = left
		}
	}

	return resp, nil
}
