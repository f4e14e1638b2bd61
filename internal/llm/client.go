package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// maxResponseBytes caps how much of a provider response is read.
var maxResponseBytes int64 = 8 << 20

// jsonClient is the HTTP transport shared by the provider implementations.
type jsonClient struct {
	provider   string
	httpClient *http.Client
	logger     *logrus.Logger
}

func (c *jsonClient) do(ctx context.Context, method, url string, headers map[string]string, payload interface{}, result interface{}) error {
	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
		contentLength = len(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.WithFields(logrus.Fields{
		"provider": c.provider,
		"method":   method,
		"url":      redactURL(url),
		"size":     contentLength,
	}).Debug("Sending provider request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(responseBody)) > maxResponseBytes {
		return fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	c.logger.WithFields(logrus.Fields{
		"provider":      c.provider,
		"status_code":   resp.StatusCode,
		"response_size": len(responseBody),
		"response_body": string(responseBody),
	}).Debug("Provider response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, errorMessage(responseBody))
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func errorMessage(body []byte) string {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if len(body) > 500 {
		return string(body[:500])
	}
	return string(body)
}

// redactURL drops the query string, which may carry credentials.
func redactURL(raw string) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' {
			return raw[:i]
		}
	}
	return raw
}
