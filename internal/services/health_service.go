package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"lingogate/internal/store"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	store     store.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// VersionInfo represents build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, st store.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     st,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Liveness reports whether the process itself is up. It never touches
// the store, so it stays green through backend outages.
func (s *HealthService) Liveness(ctx context.Context) *HealthStatus {
	return &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
	}
}

// Readiness probes the user store. A failing store degrades the status
// but still returns a structured body so probes can report the cause.
func (s *HealthService) Readiness(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Services:  map[string]interface{}{},
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "readiness probe found store unreachable",
			slog.String("error", err.Error()),
		)
		status.Status = "degraded"
		status.Services["store"] = map[string]interface{}{
			"status":  "unhealthy",
			"message": err.Error(),
		}
	} else {
		status.Services["store"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	return status
}

// Version returns build information
func (s *HealthService) Version() *VersionInfo {
	return &VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
