package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ken2664/llm-question-app/internal/llm"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeStub struct {
	dbErr    error
	redisErr error
}

func (s storeStub) PingDatabase(context.Context) error { return s.dbErr }
func (s storeStub) PingRedis(context.Context) error    { return s.redisErr }

type pingProvider struct {
	name string
	err  error
}

func (p pingProvider) Name() string { return p.name }
func (p pingProvider) Generate(context.Context, string, string) (string, error) {
	return "", nil
}
func (p pingProvider) Ping(context.Context) error { return p.err }

type resolverStub map[llm.Model]llm.Provider

func (r resolverStub) Resolve(model llm.Model) (llm.Provider, error) {
	if p, ok := r[model]; ok {
		return p, nil
	}
	return nil, &llm.ConfigError{Key: model.KeyName()}
}

type recordingRepo struct {
	mu      sync.Mutex
	records map[string]string
}

func (r *recordingRepo) UpdateServiceHealth(_ context.Context, name, status string, _ int, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = status
	return nil
}
func (r *recordingRepo) GetServiceHealth(context.Context, string) (*models.SystemHealth, error) {
	return nil, nil
}
func (r *recordingRepo) GetAllServicesHealth(context.Context) ([]models.SystemHealth, error) {
	return nil, nil
}
func (r *recordingRepo) GetUnhealthyServices(context.Context) ([]models.SystemHealth, error) {
	return nil, nil
}

type memoryCache struct {
	mu       sync.Mutex
	services []models.ServiceStatus
}

func (c *memoryCache) CacheSystemHealth(_ context.Context, health []models.ServiceStatus, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = health
	return nil
}

func (c *memoryCache) GetCachedSystemHealth(context.Context) ([]models.ServiceStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.services == nil {
		return nil, errors.New("cache miss")
	}
	return c.services, nil
}

func statuses(h OverallHealth) map[string]string {
	out := map[string]string{}
	for _, s := range h.Services {
		out[s.Name] = s.Status
	}
	return out
}

func TestCheckAll_MissingKeyIsDegraded(t *testing.T) {
	repo := &recordingRepo{records: map[string]string{}}
	checker := NewHealthChecker(storeStub{}, nil, resolverStub{
		llm.ModelGemini: pingProvider{name: "Gemini"},
	}, repo, logrus.New())

	health := checker.CheckAll(context.Background())

	assert.Equal(t, models.StatusDegraded, health.Status)
	assert.Equal(t, map[string]string{
		"postgresql": "healthy",
		"redis":      "healthy",
		"gemini":     "healthy",
		"deepseek":   "degraded",
	}, statuses(health))
	assert.Equal(t, statuses(health), repo.records)

	for _, s := range health.Services {
		if s.Name == "deepseek" {
			assert.Equal(t, "DEEPSEEK_API_KEY is not set", s.Error)
		}
	}
}

func TestCheckAll_Unhealthy(t *testing.T) {
	checker := NewHealthChecker(storeStub{redisErr: errors.New("connection refused")}, nil, resolverStub{
		llm.ModelGemini:   pingProvider{name: "Gemini"},
		llm.ModelDeepSeek: pingProvider{name: "DeepSeek", err: errors.New("status 401")},
	}, nil, logrus.New())

	health := checker.CheckAll(context.Background())

	assert.Equal(t, models.StatusUnhealthy, health.Status)
	assert.Equal(t, "unhealthy", statuses(health)["redis"])
	assert.Equal(t, "unhealthy", statuses(health)["deepseek"])
}

func TestPeriodicHealthCheck_CachesSnapshot(t *testing.T) {
	cache := &memoryCache{}
	checker := NewHealthChecker(storeStub{}, cache, resolverStub{
		llm.ModelGemini:   pingProvider{name: "Gemini"},
		llm.ModelDeepSeek: pingProvider{name: "DeepSeek"},
	}, nil, logrus.New())

	_, err := checker.CheckCached(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.PeriodicHealthCheck(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := checker.CheckCached(context.Background())
		return err == nil
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	cached, err := checker.CheckCached(context.Background())
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, models.StatusHealthy, cached.Status)
	assert.Len(t, cached.Services, 4)
}

type statsCache struct {
	memoryCache
	err error
}

func (c *statsCache) GetCacheStats(context.Context) (map[string]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return map[string]string{"keyspace_hits": "12"}, nil
}

func TestCheckAll_CacheStats(t *testing.T) {
	resolver := resolverStub{llm.ModelGemini: pingProvider{name: "Gemini"}}

	health := NewHealthChecker(storeStub{}, &statsCache{}, resolver, nil, logrus.New()).CheckAll(context.Background())
	assert.Equal(t, map[string]string{"keyspace_hits": "12"}, health.CacheStats)

	health = NewHealthChecker(storeStub{}, &statsCache{err: errors.New("INFO disabled")}, resolver, nil, logrus.New()).CheckAll(context.Background())
	assert.Nil(t, health.CacheStats)

	health = NewHealthChecker(storeStub{}, &memoryCache{}, resolver, nil, logrus.New()).CheckAll(context.Background())
	assert.Nil(t, health.CacheStats)
}
