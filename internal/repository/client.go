package repository

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
)

// StoreError carries the structured payload the content store attaches to
// rejected calls, so callers can log the operation together with the
// store's own diagnostics.
type StoreError struct {
	StatusCode int
	Message    string
	Errors     json.RawMessage
}

func (e *StoreError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("store returned %d: %s (%s)", e.StatusCode, e.Message, e.Errors)
	}
	return fmt.Sprintf("store returned %d: %s", e.StatusCode, e.Message)
}

// Client is a thin HTTP client for the content store's generic API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a store client rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// getJSON issues a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build store request: %w", err)
	}

	return c.do(req, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode store payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// postForm submits a prepared multipart body to the store.
func (c *Client) postForm(ctx context.Context, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build store request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeStoreError(res)
	}

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode store response: %w", err)
	}
	return nil
}

// decodeStoreError extracts the store's error envelope from a non-2xx
// response. The envelope shape is loose; unknown bodies still yield a
// usable StoreError with the raw message.
func decodeStoreError(res *http.Response) error {
	storeErr := &StoreError{StatusCode: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		storeErr.Message = res.Status
		return storeErr
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
		Data    struct {
			Errors json.RawMessage `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		storeErr.Message = strings.TrimSpace(string(body))
		if storeErr.Message == "" {
			storeErr.Message = res.Status
		}
		return storeErr
	}

	var message string
	if json.Unmarshal(envelope.Message, &message) == nil && message != "" {
		storeErr.Message = message
	} else if len(envelope.Message) > 0 {
		storeErr.Message = string(envelope.Message)
	} else {
		storeErr.Message = res.Status
	}
	storeErr.Errors = envelope.Data.Errors

	return storeErr
}
