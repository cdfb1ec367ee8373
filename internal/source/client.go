// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
)

// API actions
const (
	ActionFetchAll = "fetchAll"
	ActionUpdate   = "update"
)

// ErrUpstream marks failures reported by, or caused by, the legacy API.
var ErrUpstream = errors.New("legacy source API error")

// maxErrorBodySize limits how much of an error response is read for reporting.
const maxErrorBodySize = 64 * 1024

// Source is the read and partial-update contract of the legacy store.
type Source interface {
	FetchAll(ctx context.Context) ([]models.LegacyRecord, error)
	UpdateFields(ctx context.Context, name string, fields map[string]any) error
}

// Client talks to the legacy API over HTTP.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client with cfg's URL, key and timeout.
func NewClient(cfg config.SourceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "?"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     3,
		retryBaseDelay: time.Second,
	}
}

// updateRequest is the body of an update call.
type updateRequest struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// apiStatus is the status wrapper some responses carry.
type apiStatus struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchAll retrieves every record in the legacy shape.
func (c *Client) FetchAll(ctx context.Context) ([]models.LegacyRecord, error) {
	body, err := c.do(ctx, http.MethodGet, ActionFetchAll, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", ErrUpstream, ActionFetchAll, err)
	}
	return records, nil
}

// UpdateFields sends a partial update for the record named name. Only the
// given fields are written; the legacy store keeps everything else.
func (c *Client) UpdateFields(ctx context.Context, name string, fields map[string]any) error {
	if name == "" {
		return errors.New("update requires a record name")
	}
	if len(fields) == 0 {
		return nil
	}

	payload, err := json.Marshal(updateRequest{Name: name, Fields: fields})
	if err != nil {
		return fmt.Errorf("marshal update for %q: %w", name, err)
	}

	body, err := c.do(ctx, http.MethodPost, ActionUpdate, payload)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var status apiStatus
	if err := json.Unmarshal(body, &status); err != nil {
		// non-JSON acknowledgements are accepted
		return nil
	}
	return status.err(ActionUpdate)
}

func (s apiStatus) err(action string) error {
	if s.Success != nil && !*s.Success {
		msg := s.Error
		if msg == "" {
			msg = s.Message
		}
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("%w: %s: %s", ErrUpstream, action, msg)
	}
	return nil
}

// decodeRecords accepts a bare array or a {"data": [...]} envelope.
func decodeRecords(body []byte) ([]models.LegacyRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response")
	}

	if trimmed[0] == '[' {
		var records []models.LegacyRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var envelope struct {
		apiStatus
		Data    []models.LegacyRecord `json:"data"`
		Records []models.LegacyRecord `json:"records"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if err := envelope.err(ActionFetchAll); err != nil {
		return nil, err
	}
	switch {
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.Records != nil:
		return envelope.Records, nil
	case envelope.Error != "":
		return nil, fmt.Errorf("%s: %s", ActionFetchAll, envelope.Error)
	default:
		return []models.LegacyRecord{}, nil
	}
}

// do performs one action, retrying on HTTP 429, and returns the body of a
// 2xx response.
func (c *Client) do(ctx context.Context, method, action string, payload []byte) ([]byte, error) {
	reqURL, err := c.actionURL(action)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, method, reqURL, payload)
	if err != nil {
		metrics.RecordSourceRequest(action, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %s request: %w", ErrUpstream, action, err)
	}
	defer resp.Body.Close()
	metrics.RecordSourceRequest(action, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: %s request failed with status %d: %s", ErrUpstream, action, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrUpstream, action, err)
	}
	return body, nil
}

func (c *Client) actionURL(action string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doRequestWithRateLimit performs an HTTP request with exponential backoff on
// HTTP 429 (1s, 2s, 4s). The context cancels backoff waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, reqURL string, payload []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads at most maxErrorBodySize bytes for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
