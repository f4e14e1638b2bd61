package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache key constants
const (
	FacultiesKey    = "catalog:faculties"
	CoursesKey      = "catalog:courses:%s"
	coursesPattern  = "catalog:courses:*"
	SystemHealthKey = "system:health"
)

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// CoursesCacheKey names the course listing for a faculty, or all courses
// when facultyID is nil.
func CoursesCacheKey(facultyID *uint) string {
	if facultyID == nil {
		return fmt.Sprintf(CoursesKey, "all")
	}
	return fmt.Sprintf(CoursesKey, fmt.Sprint(*facultyID))
}

// Get decodes the JSON stored at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores value at key as JSON.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// InvalidateCatalog drops the faculty listing and every course listing.
func (c *Cache) InvalidateCatalog(ctx context.Context) error {
	keys := []string{FacultiesKey}

	iter := c.client.Scan(ctx, 0, coursesPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	return c.client.Del(ctx, keys...).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.ServiceStatus, expiration time.Duration) error {
	return c.Set(ctx, SystemHealthKey, health, expiration)
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.ServiceStatus, error) {
	var health []models.ServiceStatus
	if err := c.Get(ctx, SystemHealthKey, &health); err != nil {
		return nil, err
	}
	return health, nil
}

// Cache statistics
func (c *Cache) GetCacheStats(ctx context.Context) (map[string]string, error) {
	info, err := readInfo(ctx, func(ctx context.Context, section string) (string, error) {
		return c.client.Info(ctx, section).Result()
	}, statsSections)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"keyspace_hits":     extractStat(info, "keyspace_hits"),
		"keyspace_misses":   extractStat(info, "keyspace_misses"),
		"used_memory":       extractStat(info, "used_memory"),
		"connected_clients": extractStat(info, "connected_clients"),
	}, nil
}

var statsSections = []string{"stats", "memory", "clients"}

// readInfo issues one INFO per section; servers before Redis 7 accept only one.
func readInfo(ctx context.Context, fetch func(context.Context, string) (string, error), sections []string) (string, error) {
	var b strings.Builder
	for _, section := range sections {
		out, err := fetch(ctx, section)
		if err != nil {
			return "", fmt.Errorf("info %s: %w", section, err)
		}
		b.WriteString(out)
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

func extractStat(info, key string) string {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, key+":") {
			return strings.TrimPrefix(line, key+":")
		}
	}
	return "0"
}
