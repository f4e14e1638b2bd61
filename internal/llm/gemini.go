package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

type GeminiProvider struct {
	client  *jsonClient
	apiKey  string
	baseURL string
	model   string
}

func NewGeminiProvider(settings Settings, httpClient *http.Client, logger *logrus.Logger) *GeminiProvider {
	return &GeminiProvider{
		client: &jsonClient{
			provider:   ModelGemini.DisplayName(),
			httpClient: httpClient,
			logger:     logger,
		},
		apiKey:  settings.APIKey,
		baseURL: strings.TrimRight(settings.BaseURL, "/"),
		model:   settings.Model,
	}
}

func (p *GeminiProvider) Name() string {
	return ModelGemini.DisplayName()
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt, _ string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	var resp geminiResponse
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	if err := p.client.do(ctx, http.MethodPost, endpoint, p.headers(), req, &resp); err != nil {
		return "", err
	}

	return extractGeminiText(&resp)
}

func (p *GeminiProvider) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s", p.baseURL, url.PathEscape(p.model))
	return p.client.do(ctx, http.MethodGet, endpoint, p.headers(), nil, nil)
}

func (p *GeminiProvider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.apiKey}
}

// extractGeminiText reads candidates[0].content.parts[0].text.
func extractGeminiText(resp *geminiResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w (blocked: %s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == "" {
		return "", ErrEmptyResponse
	}
	return content.Parts[0].Text, nil
}
