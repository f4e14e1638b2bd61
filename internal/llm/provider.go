package llm

import (
	"context"
	"fmt"
	"strings"
)

// Model selects which provider answers a question.
type Model string

const (
	ModelGemini   Model = "gemini"
	ModelDeepSeek Model = "deepseek"
)

// Models lists every supported model in a stable order.
var Models = []Model{ModelGemini, ModelDeepSeek}

func ParseModel(s string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(s))) {
	case ModelGemini:
		return ModelGemini, nil
	case ModelDeepSeek:
		return ModelDeepSeek, nil
	default:
		return "", fmt.Errorf("%w %q: expected one of %s", ErrUnsupportedModel, s, modelList())
	}
}

func modelList() string {
	names := make([]string, len(Models))
	for i, m := range Models {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// DisplayName is the provider name used to attribute errors.
func (m Model) DisplayName() string {
	switch m {
	case ModelGemini:
		return "Gemini"
	case ModelDeepSeek:
		return "DeepSeek"
	default:
		return string(m)
	}
}

// KeyName is the environment variable holding the model's API key.
func (m Model) KeyName() string {
	return strings.ToUpper(string(m)) + "_API_KEY"
}

// Provider generates an answer for a rendered prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, courseName string) (string, error)
}

// Pinger is implemented by providers that can report reachability without
// spending tokens.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Resolver hands out the provider for a model.
type Resolver interface {
	Resolve(model Model) (Provider, error)
}
