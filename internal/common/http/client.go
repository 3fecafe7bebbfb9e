// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"vaccard/internal/common/auth"
	"vaccard/internal/common/errors"
	"vaccard/internal/common/metrics"
	"vaccard/internal/common/observability"
)

// Client is the transport to the record-keeping collaborator. It attaches the
// bearer credential on every request and maps status codes into the engine's
// error taxonomy, so callers above it never inspect raw HTTP responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenProvider
	obs        *observability.Observability
}

func NewClient(baseURL string, timeout time.Duration, tokens auth.TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// WithObservability attaches the otel meter used for request accounting.
func (c *Client) WithObservability(obs *observability.Observability) *Client {
	c.obs = obs
	return c
}

// DoJSON performs one round trip. A nil out skips response decoding (for 204
// endpoints). The returned error is always a *errors.StandardError.
func (c *Client) DoJSON(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()
	err := c.doJSON(ctx, method, path, query, body, out)

	outcome := "success"
	if err != nil {
		outcome = string(errors.Code(err))
	}
	metrics.APIRequests.WithLabelValues(operation, outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if c.obs != nil {
		c.obs.RecordRequest(ctx, operation, outcome)
		c.obs.RecordRequestDuration(ctx, operation, time.Since(start))
	}
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInvalidInputError(fmt.Sprintf("marshal request body: %v", err))
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("build request: %v", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransientFailureError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewIntegrityViolationError(fmt.Sprintf("decode %s %s response: %v", method, path, err))
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	details := fmt.Sprintf("%s %s -> %d: %s", method, path, resp.StatusCode, string(raw))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// A rejected credential is dead; drop it so the next action
		// prompts a fresh login instead of repeating the failure.
		c.tokens.Clear()
		return errors.NewUnauthorizedError(details)
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewResourceNotFoundError(details)
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return errors.NewValidationRejectedError(serverMessage(raw), details)
	default:
		return errors.NewTransientFailureError(fmt.Errorf("%s", details))
	}
}

// serverMessage pulls the collaborator's {"message": ...} out of an error
// body so modals can show it verbatim.
func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}
