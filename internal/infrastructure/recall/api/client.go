// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package api is the typed HTTP client for the remote recording-bot
// provider. It is pure request/response transport: no local state, no
// retries. Callers (orchestrator, monitor, reconciler) own retry policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/pkg/utils"
)

const (
	// DefaultBaseURL is the base URL for the bot provider API.
	DefaultBaseURL = "https://us-west-2.recall.ai/api/v1"
	// DefaultClientTimeout is the default HTTP client timeout for provider requests.
	DefaultClientTimeout = 30 * time.Second
	// DefaultBotName is the display name the bot joins calls with.
	DefaultBotName = "Recap Notetaker"
)

// Config holds the configuration for the bot provider client.
type Config struct {
	// APIToken is the bearer token for the provider API.
	APIToken string
	// WebhookBaseURL is the base URL provider webhooks are delivered to;
	// the session UID is appended as the final path segment.
	WebhookBaseURL string
	// BotName overrides the display name the bot joins with.
	BotName string
	// Optional: override base URL for testing.
	BaseURL string
	// Optional: override timeout for HTTP requests.
	Timeout time.Duration
}

// Client is the bot provider API client.
type Client struct {
	httpClient *http.Client
	config     Config
}

// UpstreamError is a typed failure from the provider API. It carries the
// provider's message, HTTP status, and raw body so callers can decide
// retry policy.
type UpstreamError struct {
	Message    string
	StatusCode int
	RawBody    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bot provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return "bot provider error: " + e.Message
}

// NewClient creates a new bot provider API client.
func NewClient(config Config) *Client {
	config.BaseURL = utils.Coalesce(config.BaseURL, DefaultBaseURL)
	config.BotName = utils.Coalesce(config.BotName, DefaultBotName)
	config.Timeout = utils.Coalesce(config.Timeout, DefaultClientTimeout)

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// IsConfigured reports whether the client has credentials to talk to the provider.
func (c *Client) IsConfigured() bool {
	return c.config.APIToken != ""
}

// doRequest performs an authenticated HTTP request against the provider API.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)

	slog.DebugContext(ctx, "making bot provider API request", "method", method, "path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "bot provider API request failed",
			"method", method,
			"path", path,
			"duration", duration.String(),
			logging.ErrKey, err)
		return nil, &UpstreamError{Message: err.Error()}
	}

	slog.DebugContext(ctx, "bot provider API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", duration.String())

	return resp, nil
}

// errorFromResponse drains the response body into a typed UpstreamError.
func errorFromResponse(resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Detail != "" {
			message = errResp.Detail
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	return &UpstreamError{
		Message:    message,
		StatusCode: resp.StatusCode,
		RawBody:    string(body),
	}
}
