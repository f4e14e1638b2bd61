package llm

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Settings configures one provider.
type Settings struct {
	APIKey  string
	BaseURL string
	Model   string
}

type FactoryConfig struct {
	Gemini        Settings
	DeepSeek      Settings
	ClientTimeout time.Duration
}

// Factory builds providers from explicit configuration. Each Resolve call
// returns a fresh provider; only the underlying http.Client is shared.
type Factory struct {
	config     FactoryConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewFactory(config FactoryConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		config:     config,
		httpClient: &http.Client{Timeout: config.ClientTimeout},
		logger:     logger,
	}
}

func (f *Factory) Resolve(model Model) (Provider, error) {
	switch model {
	case ModelGemini:
		if f.config.Gemini.APIKey == "" {
			return nil, &ConfigError{Key: model.KeyName()}
		}
		return NewGeminiProvider(f.config.Gemini, f.httpClient, f.logger), nil
	case ModelDeepSeek:
		if f.config.DeepSeek.APIKey == "" {
			return nil, &ConfigError{Key: model.KeyName()}
		}
		return NewDeepSeekProvider(f.config.DeepSeek, f.httpClient, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, model)
	}
}
