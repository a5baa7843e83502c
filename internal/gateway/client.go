package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"payflow/internal/lifecycle"
)

const defaultRequestTimeout = 15 * time.Second

// Client talks to the payment processor's REST API. It implements both
// the order-creation and the verification side of the lifecycle
// contract.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	apiVersion   string
	httpClient   *http.Client
	log          zerolog.Logger
}

// Ensure Client satisfies the lifecycle contracts.
var (
	_ lifecycle.OrderService        = (*Client)(nil)
	_ lifecycle.VerificationService = (*Client)(nil)
)

// ClientConfig holds the processor API settings.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Timeout      time.Duration
}

// NewClient creates a processor API client.
func NewClient(cfg ClientConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		apiVersion:   cfg.APIVersion,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log,
	}
}

// apiError is the processor's error envelope. Its message is surfaced
// verbatim to the caller when present.
type apiError struct {
	Message string `json:"message"`
}

// doJSON issues a JSON request and decodes a 2xx response into out.
// Non-2xx responses are turned into an error carrying the processor's
// message when one was returned, else the fallback.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-api-version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("processor_error_response")
		return fmt.Errorf("%s", fallback)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", fallback, err)
	}
	return nil
}
