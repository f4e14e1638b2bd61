package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the provider answered but no text could be extracted.
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrTimeout means the answer deadline passed before the provider settled.
	ErrTimeout = errors.New("request timed out")
	// ErrUnsupportedModel is returned for a model outside the known set.
	ErrUnsupportedModel = errors.New("unsupported model")
)

// ConfigError reports a provider credential missing from the environment.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not set", e.Key)
}

// ProviderError attributes a failed generation to the provider that failed.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
