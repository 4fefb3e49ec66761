package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"hospitalms/web/internal/config"
)

var (
	// ErrUnauthorized is returned for any 401 from the backend. The client
	// never redirects by itself; callers own the forced-logout reaction.
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrNotFound     = errors.New("backend: not found")
)

// APIError carries a non-2xx backend response, preferring the backend's own
// message over a generic one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: request failed (status %d)", e.Status)
}

// Client wraps the hospital backend REST API. The bearer token is passed per
// call, never stored on the client, so one instance serves every session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func New(cfg config.BackendConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("backend call failed")
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls the human message out of an error body shaped as
// {"message": ...} or {"error": ...}.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
