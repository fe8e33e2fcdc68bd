package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

const defaultStreamTimeout = 60 * time.Second

// client talks to an OpenAI-compatible completion gateway
type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds configuration for the completion gateway client
type Config struct {
	// HTTPClient optionally overrides the default client. Its timeout
	// bounds the full stream read; a stalled stream becomes a hard
	// error when it expires.
	HTTPClient *http.Client

	// BaseURL is the gateway root, e.g. "https://gateway.example.com/v1"
	BaseURL string

	// APIKey is sent as a bearer token
	APIKey string

	// Model is the default model when the request leaves it empty
	Model string
}

// New creates a new completion gateway client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("cfg cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, apperr.InvalidArgument("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultStreamTimeout,
		}
	}

	return &client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

// StreamCompletion implements Client.StreamCompletion
func (c *client) StreamCompletion(ctx context.Context, req *CompletionRequest) (io.ReadCloser, error) {
	if req == nil {
		return nil, apperr.InvalidArgument("request cannot be nil")
	}

	if req.Model == "" {
		req.Model = c.model
	}
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUpstream, "completion gateway unreachable")
	}

	if resp.StatusCode != http.StatusOK {
		// Read a bounded snippet for the error message, then discard
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, apperr.RateLimited("completion gateway rate limited").
				WithMeta("status", resp.StatusCode)
		case http.StatusPaymentRequired:
			return nil, apperr.QuotaExhausted("completion gateway quota exhausted").
				WithMeta("status", resp.StatusCode)
		default:
			return nil, apperr.Upstreamf("completion gateway returned %d: %s", resp.StatusCode, string(snippet)).
				WithMeta("status", resp.StatusCode)
		}
	}

	return resp.Body, nil
}
