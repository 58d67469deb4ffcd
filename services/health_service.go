package services

import (
	"context"
	"time"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// DatabasePinger is satisfied by *pgxpool.Pool.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker is satisfied by *storage.S3Storage.
type BucketChecker interface {
	Check(ctx context.Context) error
}

// HealthService reports the state of the backing services. Feedback cannot
// be stored without the database, so it is the only required component.
// Redis backs the roster cache and the rate limiter, the bucket backs export
// uploads, and Resend delivers notifications.
type HealthService struct {
	db           DatabasePinger
	redisClient  *redis.Client
	bucket       BucketChecker
	emailEnabled bool
	caps         types.Capabilities
	version      string
	startTime    time.Time
	log          *zap.SugaredLogger
}

func NewHealthService(db DatabasePinger, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		db:          db,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger().Named("health"),
	}
}

// WithExportStorage adds the export bucket to the report. A nil checker
// reports uploads as disabled.
func (h *HealthService) WithExportStorage(bucket BucketChecker) *HealthService {
	h.bucket = bucket
	return h
}

// WithEmail records whether notification delivery is configured.
func (h *HealthService) WithEmail(enabled bool) *HealthService {
	h.emailEnabled = enabled
	return h
}

// WithCapabilities records the form variant served.
func (h *HealthService) WithCapabilities(caps types.Capabilities) *HealthService {
	h.caps = caps
	return h
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		types.HealthComponentDatabase:      h.checkDatabase(ctx),
		types.HealthComponentRosterCache:   h.checkRosterCache(ctx),
		types.HealthComponentExportStorage: h.checkExportStorage(ctx),
		types.HealthComponentEmail:         h.checkEmail(),
	}

	return types.HealthCheck{
		Status:       overallStatus(components),
		Components:   components,
		Capabilities: h.caps,
		Version:      h.version,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
	}
}

func overallStatus(components map[string]types.HealthComponent) types.HealthStatus {
	status := types.HealthStatusUp
	for _, c := range components {
		switch {
		case c.Status == types.HealthStatusDown && c.Required:
			return types.HealthStatusDown
		case c.Status == types.HealthStatusDown || c.Status == types.HealthStatusDegraded:
			status = types.HealthStatusDegraded
		}
	}
	return status
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if h.db == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Required: true, Details: "Database not configured"}
	}
	return h.timed(ctx, true, "Database connection failed", h.db.Ping)
}

func (h *HealthService) checkRosterCache(ctx context.Context) types.HealthComponent {
	if h.redisClient == nil {
		return types.HealthComponent{
			Status:  types.HealthStatusDisabled,
			Details: "Roster reads go to the database and rate limiting is off",
		}
	}
	return h.timed(ctx, false, "Redis connection failed, roster reads fall back to the database",
		func(ctx context.Context) error { return h.redisClient.Ping(ctx).Err() })
}

func (h *HealthService) checkExportStorage(ctx context.Context) types.HealthComponent {
	if h.bucket == nil {
		return types.HealthComponent{Status: types.HealthStatusDisabled, Details: "CSV exports are download-only"}
	}
	return h.timed(ctx, false, "Export bucket unreachable, uploads will fail", h.bucket.Check)
}

func (h *HealthService) checkEmail() types.HealthComponent {
	if !h.emailEnabled {
		return types.HealthComponent{Status: types.HealthStatusDisabled, Details: "Notifications are not sent"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

// timed runs one dependency check under healthCheckTimeout.
func (h *HealthService) timed(ctx context.Context, required bool, failure string, check func(context.Context) error) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if required {
			h.log.Errorw("Health check failed", "details", failure, "error", err)
		} else {
			h.log.Warnw("Health check failed", "details", failure, "error", err)
		}
		return types.HealthComponent{Status: types.HealthStatusDown, Required: required, Details: failure, LatencyMS: latency}
	}
	return types.HealthComponent{Status: types.HealthStatusUp, Required: required, LatencyMS: latency}
}
