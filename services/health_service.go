package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
	"go.uber.org/zap"
)

// DBPinger is satisfied by *pgxpool.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DeliveryPool reports the state of the notification worker pool.
type DeliveryPool interface {
	IsRunning() bool
	QueueDepth() int
	FreeSlots() int
}

type HealthService struct {
	db          DBPinger
	redisClient redis.Cmdable
	pool        DeliveryPool
	version     string
	startedAt   time.Time
	log         *zap.SugaredLogger
}

func NewHealthService(db DBPinger, redisClient redis.Cmdable, pool DeliveryPool, version string) *HealthService {
	return &HealthService{
		db:          db,
		redisClient: redisClient,
		pool:        pool,
		version:     version,
		startedAt:   time.Now(),
		log:         logger.GetLogger(),
	}
}

// CheckHealth reports DOWN when a required dependency is down and DEGRADED
// when something works with reduced capacity.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		"database":      h.checkDatabase(ctx),
		"redis":         h.checkRedis(ctx),
		"notifications": h.checkNotifications(),
	}

	overallStatus := types.HealthStatusUp
	for _, comp := range components {
		switch comp.Status {
		case types.HealthStatusDown:
			overallStatus = types.HealthStatusDown
		case types.HealthStatusDegraded:
			if overallStatus != types.HealthStatusDown {
				overallStatus = types.HealthStatusDegraded
			}
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

// Redis backs locks, the rate cache and rate limiting; all of them degrade
// gracefully, so an unreachable redis only degrades the service.
func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkNotifications() types.HealthComponent {
	if !h.pool.IsRunning() {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Notification workers are not running",
		}
	}
	depth := h.pool.QueueDepth()
	capacity := depth + h.pool.FreeSlots()
	if capacity > 0 && float64(depth)/float64(capacity) > 0.8 {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Notification queue near capacity",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
