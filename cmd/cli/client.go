package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
)

// apiError is a non-2xx response from the ledger API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Body.Error, e.Body.Message, e.Status)
}

type client struct {
	baseURL        string
	timeout        time.Duration
	raw            bool
	idempotencyKey string
	httpClient     *http.Client
}

func (c *client) transport() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c.httpClient
}

// do sends body as JSON and decodes a 2xx response into out. The raw
// response body is returned for --json output.
func (c *client) do(ctx context.Context, method, path string, body, out any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", c.idempotencyKey)
		}
	}

	resp, err := c.transport().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, &apiErr.Body); err != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = http.StatusText(resp.StatusCode)
			apiErr.Body.Message = string(bytes.TrimSpace(raw))
		}
		return raw, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("decode response: %w", err)
		}
	}
	return raw, nil
}

func asAPIError(err error) (*apiError, bool) {
	var apiErr *apiError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
