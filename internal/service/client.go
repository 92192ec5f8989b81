// Package service issues JSON requests against the upstream API through the
// retry interceptor and owns the request cycle of the shared state.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vietddude/httpguard/internal/interceptor"
	"github.com/vietddude/httpguard/internal/logbuffer"
)

// Cycle is the part of the shared state a request cycle drives.
type Cycle interface {
	BeginCycle()
	EndCycle()
}

// Client is a JSON client for one upstream base URL.
type Client struct {
	baseURL string
	doer    interceptor.Doer
	cycle   Cycle
}

// NewClient creates a client sending through doer, normally an
// *interceptor.Interceptor.
func NewClient(baseURL string, doer interceptor.Doer, cycle Cycle) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		cycle:   cycle,
	}
}

// URL resolves path against the base URL. Absolute URLs pass through.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do runs one request cycle: the cycle begins on the shared state before the
// call and ends once it settles, so loading stays on while any cycle is open. body is JSON-encoded when non-nil and
// a successful response is decoded into out when non-nil. Failures have
// already been reported to the shared state when Do returns them.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.URL(path)

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(logbuffer.WithURL(ctx, url), method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(interceptor.RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.cycle.BeginCycle()
	defer c.cycle.EndCycle()

	resp, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
