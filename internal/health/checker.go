package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ken2664/llm-question-app/internal/llm"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/sirupsen/logrus"
)

const checkTimeout = 10 * time.Second

// Store is the database side of the checks.
type Store interface {
	PingDatabase(ctx context.Context) error
	PingRedis(ctx context.Context) error
}

// Cache keeps the last periodic snapshot.
type Cache interface {
	CacheSystemHealth(ctx context.Context, health []models.ServiceStatus, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.ServiceStatus, error)
}

// statsSource is implemented by caches that can report their own counters.
type statsSource interface {
	GetCacheStats(ctx context.Context) (map[string]string, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	store      Store
	cache      Cache
	providers  llm.Resolver
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
	startTime  time.Time
}

func NewHealthChecker(
	store Store,
	cache Cache,
	providers llm.Resolver,
	healthRepo models.SystemHealthRepository,
	logger *logrus.Logger,
) *HealthChecker {
	return &HealthChecker{
		store:      store,
		cache:      cache,
		providers:  providers,
		healthRepo: healthRepo,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status     string                 `json:"status"`
	Services   []models.ServiceStatus `json:"services"`
	Uptime     string                 `json:"uptime"`
	Cached     bool                   `json:"cached"`
	CacheStats map[string]string      `json:"cache_stats,omitempty"`
}

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// CheckAll runs every check concurrently and records the results.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	checks := []check{
		{name: "postgresql", run: pingCheck(h.store.PingDatabase)},
		{name: "redis", run: pingCheck(h.store.PingRedis)},
	}
	for _, model := range llm.Models {
		checks = append(checks, check{name: string(model), run: h.providerCheck(model)})
	}

	services := make([]models.ServiceStatus, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			services[i] = h.runCheck(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return OverallHealth{
		Status:     overallStatus(services),
		Services:   services,
		Uptime:     h.uptime(),
		CacheStats: h.cacheStats(ctx),
	}
}

func (h *HealthChecker) cacheStats(ctx context.Context) map[string]string {
	source, ok := h.cache.(statsSource)
	if !ok {
		return nil
	}
	stats, err := source.GetCacheStats(ctx)
	if err != nil {
		h.logger.WithError(err).Debug("Cache statistics unavailable")
		return nil
	}
	return stats
}

// CheckCached returns the snapshot written by PeriodicHealthCheck.
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	if h.cache == nil {
		return nil, errors.New("health cache not configured")
	}
	services, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.uptime(),
		Cached:   true,
	}, nil
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)

			if h.cache != nil {
				cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := h.cache.CacheSystemHealth(cacheCtx, health.Services, 2*interval); err != nil {
					h.logger.WithError(err).Error("Failed to cache health status")
				}
				cancel()
			}

			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}

func (h *HealthChecker) runCheck(ctx context.Context, c check) models.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	status, err := c.run(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	errorMsg := ""
	if err != nil {
		errorMsg = err.Error()
		h.logger.WithError(err).WithFields(logrus.Fields{
			"service": c.name,
			"status":  status,
		}).Warn("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(ctx, c.name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", c.name).Error("Failed to record health status")
		}
	}

	return models.ServiceStatus{
		Name:           c.name,
		Status:         status,
		ResponseTimeMs: responseTime,
		Error:          errorMsg,
		LastChecked:    time.Now(),
	}
}

// providerCheck reports degraded when the key is missing and pings the
// provider otherwise.
func (h *HealthChecker) providerCheck(model llm.Model) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		provider, err := h.providers.Resolve(model)
		if err != nil {
			var cfgErr *llm.ConfigError
			if errors.As(err, &cfgErr) {
				return models.StatusDegraded, err
			}
			return models.StatusUnhealthy, err
		}

		pinger, ok := provider.(llm.Pinger)
		if !ok {
			return models.StatusHealthy, nil
		}
		if err := pinger.Ping(ctx); err != nil {
			return models.StatusUnhealthy, err
		}
		return models.StatusHealthy, nil
	}
}

func pingCheck(ping func(ctx context.Context) error) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := ping(ctx); err != nil {
			return models.StatusUnhealthy, err
		}
		return models.StatusHealthy, nil
	}
}

func overallStatus(services []models.ServiceStatus) string {
	status := models.StatusHealthy
	for _, service := range services {
		if service.Status == models.StatusUnhealthy {
			return models.StatusUnhealthy
		}
		if service.Status == models.StatusDegraded {
			status = models.StatusDegraded
		}
	}
	return status
}

func (h *HealthChecker) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
