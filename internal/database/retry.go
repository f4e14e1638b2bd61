package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 4,
		BaseDelay:  2 * time.Second,
		MaxDelay:   15 * time.Second,
	}
}

// Retry runs operation until it succeeds, the attempts run out or ctx ends.
// The delay grows by 1.5x per attempt, capped at MaxDelay.
func Retry(ctx context.Context, config RetryConfig, logger *logrus.Logger, name string, operation func() error) error {
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		if attempt == config.MaxRetries {
			return fmt.Errorf("%s: failed after %d retries: %w", name, config.MaxRetries, err)
		}

		delay := backoff(config, attempt)

		logger.WithFields(logrus.Fields{
			"target":  name,
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("Connection failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}

func backoff(config RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(config.BaseDelay) * math.Pow(1.5, float64(attempt)))
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}
