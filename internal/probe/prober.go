// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

// Package probe checks the liveness of every product's external URL.
//
// Probes are HEAD requests; any response in [200,400) is UP and everything
// else, including network failures and timeouts, is DOWN. Products are
// probed in fixed-size batches: the probes of one batch run concurrently and
// batches run one after another, so a cycle of N products takes at most
// ceil(N/batchSize) probe timeouts. Each probe carries its own timeout, so a
// slow endpoint cannot stall its batch past that bound.
//
// Results are never merged with earlier cycles. A product that was DOWN
// flips to UP on its next successful probe with no debounce.
package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
)

// Probe error reasons.
const (
	ErrReasonInvalidURL = "Invalid URL"
	ErrReasonTimeout    = "Timeout"
	ErrReasonCancelled  = "Cancelled"
)

// Prober runs liveness checks. It is safe for concurrent use.
type Prober struct {
	client    *http.Client
	batchSize int
	timeout   time.Duration
	userAgent string
}

// New creates a Prober from configuration.
func New(cfg config.ProbeConfig) *Prober {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = 30 * time.Second

	batch := cfg.BatchSize
	if batch < 1 {
		batch = 1
	}

	return &Prober{
		client: &http.Client{
			Transport: transport,
			// A redirect is itself a 3xx answer; following it would spend
			// the probe budget on a second endpoint.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		batchSize: batch,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
	}
}

// Probe checks one URL within timeout. It never returns an error: every
// failure is reported as a DOWN result with a reason.
func (p *Prober) Probe(ctx context.Context, name, rawURL string, timeout time.Duration) models.ProbeResult {
	result := models.ProbeResult{Name: name, URL: rawURL, Status: models.StatusDown}

	target, ok := validURL(rawURL)
	if !ok {
		result.Error = ErrReasonInvalidURL
		metrics.RecordProbe("invalid", 0)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, http.NoBody)
	if err != nil {
		result.Error = ErrReasonInvalidURL
		metrics.RecordProbe("invalid", 0)
		return result
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	result.LatencyMs = latency.Milliseconds()

	if err != nil {
		result.Error = failureReason(ctx, err)
		status := "down"
		if result.Error == ErrReasonTimeout {
			status = "timeout"
		}
		metrics.RecordProbe(status, latency)
		return result
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) // drain for connection reuse

	result.HTTPCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = models.StatusUp
		metrics.RecordProbe("up", latency)
		return result
	}
	result.Error = http.StatusText(resp.StatusCode)
	if result.Error == "" {
		result.Error = "HTTP " + resp.Status
	}
	metrics.RecordProbe("down", latency)
	return result
}

// ProbeAll probes every target, de-duplicated by name (first URL wins), in
// sequential batches of BatchSize concurrent probes. Results keep target order.
func (p *Prober) ProbeAll(ctx context.Context, targets []models.ProbeTarget) []models.ProbeResult {
	unique := Dedupe(targets)
	results := make([]models.ProbeResult, len(unique))

	for start := 0; start < len(unique); start += p.batchSize {
		end := start + p.batchSize
		if end > len(unique) {
			end = len(unique)
		}

		batchStart := time.Now()
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = p.Probe(ctx, unique[i].Name, unique[i].URL, p.timeout)
			}(i)
		}
		wg.Wait()

		logging.Debug().
			Int("batch_start", start).
			Int("batch_size", end-start).
			Dur("duration", time.Since(batchStart)).
			Msg("Probe batch finished")
	}

	return results
}

// Dedupe drops targets whose name was already seen, keeping the first.
func Dedupe(targets []models.ProbeTarget) []models.ProbeTarget {
	seen := make(map[string]struct{}, len(targets))
	out := make([]models.ProbeTarget, 0, len(targets))
	for _, t := range targets {
		if _, dup := seen[t.Name]; dup {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t)
	}
	return out
}

// validURL accepts absolute http(s) URLs with a host. Scheme-less values
// such as "www.example.com" are accepted as https.
func validURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return "", false
	}
	if !strings.Contains(s, ":") && strings.Contains(s, ".") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", false
	}
	return u.String(), true
}

func failureReason(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrReasonCancelled
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
