package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	activity  *ActivityService
	assistant bool
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

// NewHealthService creates a new health service
func NewHealthService(version string, activity *ActivityService, assistantEnabled bool, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		activity:  activity,
		assistant: assistantEnabled,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check reports overall health. The store is probed with a count query; a
// failing database degrades the status rather than erroring the endpoint.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{
			"assistant": map[string]interface{}{"enabled": s.assistant},
		},
	}

	storeHealth := map[string]interface{}{"status": "healthy"}
	if s.activity != nil {
		count, err := s.activity.Count(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "health check store probe failed",
				slog.String("error", err.Error()))
			storeHealth["status"] = "degraded"
			storeHealth["message"] = err.Error()
			status.Status = "degraded"
		} else {
			storeHealth["record_count"] = count
		}
	}
	status.Services["store"] = storeHealth

	return status
}
