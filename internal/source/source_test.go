// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.SourceConfig{URL: srv.URL + "/exec", APIKey: "s3cret", Timeout: 2 * time.Second})
	c.retryBaseDelay = time.Millisecond
	return c
}

func TestFetchAll(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    int
		wantErr bool
	}{
		{name: "bare array", body: `[{"Product Name":"Kahoot"},{"Product Name":"Zoom"}]`, status: 200, want: 2},
		{name: "data envelope", body: `{"success":true,"data":[{"Product Name":"Kahoot"}]}`, status: 200, want: 1},
		{name: "records envelope", body: `{"records":[{"Product Name":"Kahoot"}]}`, status: 200, want: 1},
		{name: "empty array", body: `[]`, status: 200, want: 0},
		{name: "api failure", body: `{"success":false,"error":"bad key"}`, status: 200, wantErr: true},
		{name: "http 500", body: `boom`, status: 500, wantErr: true},
		{name: "not json", body: `<html>`, status: 200, wantErr: true},
		{name: "empty body", body: ``, status: 200, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s", r.Method)
				}
				if got := r.URL.Query().Get("action"); got != ActionFetchAll {
					t.Errorf("action = %q", got)
				}
				if got := r.URL.Query().Get("key"); got != "s3cret" {
					t.Errorf("key = %q", got)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			records, err := c.FetchAll(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrUpstream) {
					t.Fatalf("err = %v, want ErrUpstream", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchAll: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("len = %d, want %d", len(records), tt.want)
			}
		})
	}
}

func TestFetchAll_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `[{"Product Name":"Kahoot"}]`)
	})

	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 1 || calls.Load() != 3 {
		t.Errorf("records = %d, calls = %d", len(records), calls.Load())
	}
}

func TestFetchAll_RateLimitExhausted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.maxRetries = 1

	if _, err := c.FetchAll(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestFetchAll_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c.client.Timeout = 50 * time.Millisecond

	if _, err := c.FetchAll(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestUpdateFields(t *testing.T) {
	var got updateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if a := r.URL.Query().Get("action"); a != ActionUpdate {
			t.Errorf("action = %q", a)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	err := c.UpdateFields(context.Background(), "Kahoot", map[string]any{"Cost": 0})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got.Name != "Kahoot" {
		t.Errorf("name = %q", got.Name)
	}
	if v, ok := got.Fields["Cost"].(float64); !ok || v != 0 {
		t.Errorf("Cost = %#v, want numeric 0", got.Fields["Cost"])
	}
}

func TestUpdateFields_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"no such product"}`)
	})
	err := c.UpdateFields(context.Background(), "Ghost", map[string]any{"Cost": 1})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestUpdateFields_NoFieldsIsNoop(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	if err := c.UpdateFields(context.Background(), "Kahoot", nil); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 0 {
		t.Errorf("empty update made %d calls", calls.Load())
	}
	if err := c.UpdateFields(context.Background(), "", map[string]any{"x": 1}); err == nil {
		t.Error("expected error for empty name")
	}
}

// fakeSource is a scripted Source.
type fakeSource struct {
	mu       sync.Mutex
	fetchErr error
	records  []models.LegacyRecord
	updates  []Update
	failName string
	fetches  int
}

func (f *fakeSource) FetchAll(_ context.Context) ([]models.LegacyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeSource) UpdateFields(_ context.Context, name string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == f.failName {
		return ErrUpstream
	}
	f.updates = append(f.updates, Update{Name: name, Fields: fields})
	return nil
}

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	fake := &fakeSource{fetchErr: ErrUpstream}
	b := newBreakerClient(fake, time.Hour)

	rejectedBefore := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected"))

	for i := 0; i < 3; i++ {
		if _, err := b.FetchAll(context.Background()); !errors.Is(err, ErrUpstream) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.FetchAll(context.Background())
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("open breaker err = %v, want ErrUpstream", err)
	}
	if fake.fetches != 3 {
		t.Errorf("open breaker reached upstream: fetches = %d", fake.fetches)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected")); got != rejectedBefore+1 {
		t.Errorf("rejected = %v, want %v", got, rejectedBefore+1)
	}
}

func TestBreakerClient_PassesThrough(t *testing.T) {
	fake := &fakeSource{records: []models.LegacyRecord{{"Product Name": "Kahoot"}}}
	b := NewBreakerClient(fake)

	records, err := b.FetchAll(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("FetchAll = %v, %v", records, err)
	}
	if err := b.UpdateFields(context.Background(), "Kahoot", map[string]any{"Cost": 0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if b.State() != "closed" {
		t.Errorf("state = %s", b.State())
	}
}

func TestWriteBack_Apply(t *testing.T) {
	fake := &fakeSource{failName: "Broken"}
	w := NewWriteBack(fake, 0)

	res := w.Apply(context.Background(), []Update{
		{Name: "Zoom", Fields: map[string]any{"Cost": 0}},
		{Name: "Broken", Fields: map[string]any{"Cost": 0}},
		{Name: "Canva", Fields: map[string]any{"SSO": true}},
		{Name: "Empty"},
	})

	if res.Attempted != 3 || res.Succeeded != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(fake.updates) != 2 || fake.updates[0].Name != "Canva" || fake.updates[1].Name != "Zoom" {
		t.Errorf("updates = %+v", fake.updates)
	}
}

func TestWriteBack_StopsOnCancel(t *testing.T) {
	fake := &fakeSource{}
	w := NewWriteBack(fake, 0.001)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := w.Apply(ctx, []Update{
		{Name: "A", Fields: map[string]any{"x": 1}},
		{Name: "B", Fields: map[string]any{"x": 1}},
	})
	if res.Attempted != 1 {
		t.Errorf("Attempted = %d, want 1 (second waits past the deadline)", res.Attempted)
	}
}
