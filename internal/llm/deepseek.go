package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type DeepSeekProvider struct {
	client  *jsonClient
	apiKey  string
	baseURL string
	model   string
}

func NewDeepSeekProvider(settings Settings, httpClient *http.Client, logger *logrus.Logger) *DeepSeekProvider {
	return &DeepSeekProvider{
		client: &jsonClient{
			provider:   ModelDeepSeek.DisplayName(),
			httpClient: httpClient,
			logger:     logger,
		},
		apiKey:  settings.APIKey,
		baseURL: strings.TrimRight(settings.BaseURL, "/"),
		model:   settings.Model,
	}
}

func (p *DeepSeekProvider) Name() string {
	return ModelDeepSeek.DisplayName()
}

func (p *DeepSeekProvider) Generate(ctx context.Context, prompt, courseName string) (string, error) {
	req := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(courseName)},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	var resp chatResponse
	if err := p.client.do(ctx, http.MethodPost, p.baseURL+"/chat/completions", p.headers(), req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) Ping(ctx context.Context) error {
	return p.client.do(ctx, http.MethodGet, p.baseURL+"/models", p.headers(), nil, nil)
}

func (p *DeepSeekProvider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"Accept":        "application/json",
	}
}
