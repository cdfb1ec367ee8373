// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/mirror"
	"github.com/tomtom215/licensewatch/internal/models"
	"github.com/tomtom215/licensewatch/internal/snapshot"
	"github.com/tomtom215/licensewatch/internal/source"
)

type fakeSource struct {
	mu       sync.Mutex
	records  []models.LegacyRecord
	fetchErr error
	updates  []source.Update
}

func (f *fakeSource) FetchAll(_ context.Context) ([]models.LegacyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeSource) UpdateFields(_ context.Context, name string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, source.Update{Name: name, Fields: fields})
	return nil
}

// fakeProber marks every target whose URL contains "down" as DOWN.
type fakeProber struct {
	mu      sync.Mutex
	targets []models.ProbeTarget
}

func (p *fakeProber) ProbeAll(_ context.Context, targets []models.ProbeTarget) []models.ProbeResult {
	p.mu.Lock()
	p.targets = targets
	p.mu.Unlock()

	out := make([]models.ProbeResult, 0, len(targets))
	for _, t := range targets {
		r := models.ProbeResult{Name: t.Name, URL: t.URL, Status: models.StatusUp, LatencyMs: 10, HTTPCode: 200}
		if strings.Contains(t.URL, "down") {
			r = models.ProbeResult{Name: t.Name, URL: t.URL, Status: models.StatusDown, LatencyMs: 30, Error: "Timeout"}
		}
		out = append(out, r)
	}
	return out
}

type fakeMirror struct {
	names []string
}

func (m *fakeMirror) ReconcileWith(_ context.Context, products []*models.Product) mirror.Report {
	mirrored := make([]*models.Product, 0, len(m.names))
	for _, n := range m.names {
		mirrored = append(mirrored, &models.Product{Name: n})
	}
	return mirror.Reconcile(products, mirrored)
}

type harness struct {
	runner *Runner
	source *fakeSource
	prober *fakeProber
	store  *cache.MemoryStore
}

func newHarness(t *testing.T, maxBytes int) *harness {
	t.Helper()

	cfg := config.Defaults()
	rules, err := categorize.NewRules(cfg.Classification)
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}

	h := &harness{
		source: &fakeSource{records: sampleRecords()},
		prober: &fakeProber{},
		store:  cache.NewMemoryStore(),
	}
	cacheCfg := cfg.Cache
	cacheCfg.MaxSnapshotBytes = maxBytes

	h.runner, err = NewRunner(Options{
		Source:    h.source,
		Rules:     rules,
		Publisher: snapshot.NewPublisher(h.store, cacheCfg),
		Reader:    snapshot.NewReader(h.store, cfg.Reader),
		Prober:    h.prober,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return h
}

func sampleRecords() []models.LegacyRecord {
	return []models.LegacyRecord{
		{"Product Name": "Clever", "License Type": "Site License", "Enterprise": "Yes", "URL": "https://clever.com"},
		{"Product Name": "Seesaw", "School": "Elementary", "Department": "Literacy", "URL": "https://seesaw.me", "Cost": "Free"},
		{"Product Name": "Desmos", "School": "Middle, High", "Department": "Math", "URL": "https://down.example.com"},
		{"Product Name": "Facilities Hub", "School": "Elementary", "Department": "School Operations", "License Type": "Individual", "URL": "https://hub.example.com"},
		{"Product Name": "Mystery", "URL": "https://mystery.example.com"},
		{"School": "High", "Department": "Science"},
		{"Product Name": "Bad Date", "Renewal Date": "next spring"},
	}
}

func (h *harness) stored(t *testing.T, key string) []byte {
	t.Helper()
	data, err := h.store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store.Get(%s): %v", key, err)
	}
	return data
}

func TestRunCatalog(t *testing.T) {
	h := newHarness(t, 400_000)

	res, err := h.runner.RunCatalog(context.Background())
	if err != nil {
		t.Fatalf("RunCatalog: %v", err)
	}

	if res.Processed != 5 || res.Skipped != 2 {
		t.Errorf("processed/skipped = %d/%d, want 5/2", res.Processed, res.Skipped)
	}
	if res.OrgWide != 2 {
		t.Errorf("OrgWide = %d, want 2 (site license and operations department)", res.OrgWide)
	}
	if strings.Join(res.Orphans, ",") != "Mystery" {
		t.Errorf("Orphans = %v", res.Orphans)
	}
	if res.BytesBefore <= 0 || res.BytesAfter <= 0 || res.BytesAfter > res.BytesBefore {
		t.Errorf("bytes before/after = %d/%d", res.BytesBefore, res.BytesAfter)
	}
	if res.Timestamp.IsZero() || res.PassID == "" {
		t.Errorf("result = %+v", res)
	}
	if res.Reconciliation != nil || res.WriteBack != nil {
		t.Error("optional steps ran without being configured")
	}

	var snap models.CatalogSnapshot
	if err := json.Unmarshal(h.stored(t, cache.KeyPrimarySnapshot), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Summary.Total != 5 || snap.Summary.Skipped != 2 {
		t.Errorf("summary = %+v", snap.Summary)
	}
	if strings.Join(snap.Organization.Flagship, ",") != "Clever" {
		t.Errorf("flagship = %v", snap.Organization.Flagship)
	}
	h.stored(t, cache.KeyLastUpdated)
}

func TestRunCatalog_FetchFailureLeavesCache(t *testing.T) {
	h := newHarness(t, 400_000)
	ctx := context.Background()
	_ = h.store.Put(ctx, cache.KeyPrimarySnapshot, []byte(`{"previous":true}`))

	h.source.fetchErr = source.ErrUpstream
	_, err := h.runner.RunCatalog(ctx)

	if StageOf(err) != StageFetch {
		t.Fatalf("stage = %q, err = %v", StageOf(err), err)
	}
	if !errors.Is(err, ErrSourceFetch) || !errors.Is(err, source.ErrUpstream) {
		t.Errorf("err = %v, want ErrSourceFetch wrapping ErrUpstream", err)
	}
	if got := string(h.stored(t, cache.KeyPrimarySnapshot)); got != `{"previous":true}` {
		t.Errorf("previous snapshot replaced: %s", got)
	}
}

func TestRunCatalog_StageFailures(t *testing.T) {
	tests := []struct {
		name      string
		records   []models.LegacyRecord
		maxBytes  int
		wantStage string
		wantErr   error
	}{
		{name: "empty source", records: []models.LegacyRecord{}, maxBytes: 400_000, wantStage: StageFetch, wantErr: ErrEmptySource},
		{name: "all malformed", records: []models.LegacyRecord{{"School": "High"}}, maxBytes: 400_000, wantStage: StageNormalize, wantErr: ErrNoValidRecords},
		{name: "over ceiling", records: sampleRecords(), maxBytes: 100, wantStage: StagePublish, wantErr: snapshot.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.maxBytes)
			h.source.records = tt.records

			_, err := h.runner.RunCatalog(context.Background())
			if StageOf(err) != tt.wantStage {
				t.Fatalf("stage = %q, want %q (err = %v)", StageOf(err), tt.wantStage, err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if _, getErr := h.store.Get(context.Background(), cache.KeyPrimarySnapshot); !errors.Is(getErr, cache.ErrNotFound) {
				t.Errorf("failed pass wrote the snapshot: %v", getErr)
			}
		})
	}
}

func TestRunCatalog_MirrorAndWriteBack(t *testing.T) {
	h := newHarness(t, 400_000)
	h.runner.mirror = &fakeMirror{names: []string{"clever", "Seesaw", "Retired Tool"}}
	h.runner.writeBack = source.NewWriteBack(h.source, 0)

	res, err := h.runner.RunCatalog(context.Background())
	if err != nil {
		t.Fatalf("RunCatalog: %v", err)
	}

	rep := res.Reconciliation
	if rep == nil {
		t.Fatal("Reconciliation missing")
	}
	if rep.Matched != 2 || strings.Join(rep.MissingInSource, ",") != "Retired Tool" {
		t.Errorf("report = %+v", rep)
	}

	if res.WriteBack == nil || res.WriteBack.Succeeded == 0 {
		t.Fatalf("WriteBack = %+v", res.WriteBack)
	}
	var seesaw map[string]any
	for _, u := range h.source.updates {
		if u.Name == "Seesaw" {
			seesaw = u.Fields
		}
	}
	if v, ok := seesaw["Cost"].(float64); !ok || v != 0 {
		t.Errorf("Seesaw repair = %v, want numeric Cost 0", seesaw)
	}
}

func TestRunLiveness(t *testing.T) {
	h := newHarness(t, 400_000)

	res, err := h.runner.RunLiveness(context.Background())
	if err != nil {
		t.Fatalf("RunLiveness: %v", err)
	}
	if res.Targets != TargetsFromSource {
		t.Errorf("Targets = %q", res.Targets)
	}
	if res.Summary.Total != 5 || res.Summary.Down != 1 || res.Summary.Up != 4 {
		t.Errorf("summary = %+v", res.Summary)
	}
	if len(res.DownList) != 1 || res.DownList[0].Name != "Desmos" {
		t.Errorf("DownList = %+v", res.DownList)
	}

	var snap models.LivenessSnapshot
	if err := json.Unmarshal(h.stored(t, cache.KeyLivenessStatus), &snap); err != nil {
		t.Fatalf("decode liveness: %v", err)
	}
	if snap.Statuses["Desmos"] != models.StatusDown || snap.Statuses["Clever"] != models.StatusUp {
		t.Errorf("statuses = %v", snap.Statuses)
	}
}

func TestRunLiveness_FallsBackToPublishedCatalog(t *testing.T) {
	h := newHarness(t, 400_000)
	if _, err := h.runner.RunCatalog(context.Background()); err != nil {
		t.Fatalf("RunCatalog: %v", err)
	}

	h.source.fetchErr = source.ErrUpstream
	res, err := h.runner.RunLiveness(context.Background())
	if err != nil {
		t.Fatalf("RunLiveness: %v", err)
	}
	if res.Targets != TargetsFromCache {
		t.Errorf("Targets = %q, want cache", res.Targets)
	}
	if len(h.prober.targets) != 5 {
		t.Errorf("probed %d targets, want 5", len(h.prober.targets))
	}
}

func TestRunLiveness_NoTargets(t *testing.T) {
	h := newHarness(t, 400_000)
	h.source.fetchErr = source.ErrUpstream

	_, err := h.runner.RunLiveness(context.Background())
	if StageOf(err) != StageFetch || !errors.Is(err, ErrNoTargets) {
		t.Fatalf("err = %v", err)
	}
	if _, getErr := h.store.Get(context.Background(), cache.KeyLivenessStatus); !errors.Is(getErr, cache.ErrNotFound) {
		t.Errorf("failed pass wrote liveness: %v", getErr)
	}
}

func TestRunLiveness_FlipsWithoutDebounce(t *testing.T) {
	h := newHarness(t, 400_000)
	ctx := context.Background()

	h.source.records = []models.LegacyRecord{{"Product Name": "Flappy", "URL": "https://down.example.com"}}
	first, err := h.runner.RunLiveness(ctx)
	if err != nil || first.Summary.Down != 1 {
		t.Fatalf("first pass = %+v, %v", first, err)
	}

	h.source.records = []models.LegacyRecord{{"Product Name": "Flappy", "URL": "https://up.example.com"}}
	second, err := h.runner.RunLiveness(ctx)
	if err != nil || second.Summary.Up != 1 {
		t.Fatalf("second pass = %+v, %v", second, err)
	}
}

func TestNewRunner_RequiresDependencies(t *testing.T) {
	if _, err := NewRunner(Options{}); err == nil {
		t.Error("expected error for empty options")
	}
}

func TestStageError(t *testing.T) {
	err := stageErr(StagePublish, ErrPublish, errors.New("quota"))
	if err.Error() != "publish stage: publish failed: quota" {
		t.Errorf("Error() = %q", err.Error())
	}
	if StageOf(errors.New("plain")) != "" {
		t.Error("StageOf should be empty for non-stage errors")
	}
}
