package backend

import (
	"attendance-service/internal/platform/httpx"
	"attendance-service/internal/ports"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the JSON backend that owns offices, employees, shifts and
// attendance. It implements every repository port plus the attendance store.
//
// Reads are retried on transient failures. Writes are sent once: a retried
// clock-in could record attendance twice.
type Client struct {
	session     *http.Client
	baseURL     string
	token       string
	maxAttempts int
}

type Option func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

// WithMaxAttempts bounds read retries.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("backend base url %q: %w", baseURL, err)
	}

	c := &Client{
		session:     &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		maxAttempts: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := httpx.NewJSONRequest(ctx, method, endpoint, r)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getJSON fetches path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := httpx.DoWithRetry(ctx, c.session, c.maxAttempts, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, query, nil)
	})
	if err != nil {
		return mapStatus(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// sendJSON performs a single write. out may be nil when the response body is
// not needed.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = b
	}

	req, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	resp, err := httpx.Do(c.session, req)
	if err != nil {
		return mapStatus(err)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func mapStatus(err error) error {
	var se *httpx.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ports.ErrNotFound, se.Body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ports.ErrConflict, se.Body)
	}
	return err
}
