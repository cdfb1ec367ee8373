// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/models"
)

// flakyStore wraps a MemoryStore and fails puts for selected keys.
type flakyStore struct {
	*cache.MemoryStore
	mu      sync.Mutex
	failPut map[string]error
	puts    []string
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: cache.NewMemoryStore(), failPut: map[string]error{}}
}

func (s *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.puts = append(s.puts, key)
	err := s.failPut[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Put(ctx, key, value)
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{MaxSnapshotBytes: 400_000, WriteTimeout: time.Second}
}

func testRules(t *testing.T) *categorize.Rules {
	t.Helper()
	rules, err := categorize.NewRules(config.Defaults().Classification)
	if err != nil {
		t.Fatalf("NewRules() error = %v", err)
	}
	return rules
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func fullProduct(name string) *models.Product {
	return &models.Product{
		Name:            name,
		Units:           []string{"Elementary"},
		Department:      "Math",
		LicenseCategory: "Per User",
		Seats:           intPtr(30),
		Cost:            floatPtr(0),
		URL:             "https://example.com/" + name,
		AddDate:         models.NewDate(2024, time.August, 1),
		Enterprise:      false,
		Audience:        []string{"Students"},
		Description:     "A long description",
		Logo:            "data:image/png;base64,AAAA",
		SupportURL:      "https://example.com/support",
		TutorialURL:     "https://example.com/tutorial",
		PrivacyURL:      "https://example.com/privacy",
		SSO:             true,
		Mobile:          true,
		RiskRating:      "Low",
		Notes:           "internal notes",
	}
}

func TestTrim_AllowList(t *testing.T) {
	got := Trim([]*models.Product{fullProduct("Kahoot")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	data, err := json.Marshal(got[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, banned := range []string{"description", "logo", "supportUrl", "tutorialUrl", "privacyUrl", "notes"} {
		if strings.Contains(string(data), `"`+banned+`"`) {
			t.Errorf("trimmed product still carries %q: %s", banned, data)
		}
	}
	for _, kept := range []string{"name", "department", "licenseCategory", "url", "sso", "mobile", "riskRating"} {
		if !strings.Contains(string(data), `"`+kept+`"`) {
			t.Errorf("trimmed product lost %q: %s", kept, data)
		}
	}
	if got[0].CostDisplay != "Free" {
		t.Errorf("CostDisplay = %q, want Free", got[0].CostDisplay)
	}
}

func TestTrim_SortsAndDedupes(t *testing.T) {
	got := Trim([]*models.Product{
		{Name: "zoom"}, {Name: "Canva"}, nil, {Name: "canva"}, {Name: "Canva", Department: "dup"},
	})

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"Canva", "canva", "zoom"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", names, want)
	}
	if got[0].Department != "" {
		t.Errorf("first occurrence should win, got department %q", got[0].Department)
	}
}

func TestBuildCatalog_Summary(t *testing.T) {
	rules := testRules(t)
	products := []*models.Product{
		{Name: "Clever", LicenseCategory: "Site License", Enterprise: true},
		{Name: "Seesaw", Units: []string{"Elementary"}, Department: "Literacy"},
		{Name: "Desmos", Units: []string{"Middle", "High"}, Department: "Math"},
		{Name: "Mystery"},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cat := BuildCatalog(categorize.Categorize(products, rules), 2, now)
	s := cat.Trimmed.Summary

	if s.Total != 4 || s.OrgWide != 1 || s.Orphans != 1 || s.Skipped != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.BySubUnit["elementary"] != 1 || s.BySubUnit["middle"] != 1 || s.BySubUnit["high"] != 1 {
		t.Errorf("BySubUnit = %v", s.BySubUnit)
	}
	if len(cat.Trimmed.Products) != 4 {
		t.Errorf("products = %d, want 4", len(cat.Trimmed.Products))
	}
	if !cat.Trimmed.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v", cat.Trimmed.LastUpdated)
	}
	if len(cat.Trimmed.Orphans) != 1 || cat.Trimmed.Orphans[0] != "Mystery" {
		t.Errorf("Orphans = %v", cat.Trimmed.Orphans)
	}
}

// 600 products with 1KB descriptions each must fit the ceiling once trimmed.
func TestPublishCatalog_TrimsLargeDescriptions(t *testing.T) {
	rules := testRules(t)
	products := make([]*models.Product, 0, 600)
	for i := 0; i < 600; i++ {
		p := fullProduct(fmt.Sprintf("Product %03d", i))
		p.Description = strings.Repeat("d", 1000)
		products = append(products, p)
	}

	cat := BuildCatalog(categorize.Categorize(products, rules), 0, time.Now())
	store := cache.NewMemoryStore()
	pub := NewPublisher(store, testCacheConfig())

	res, err := pub.PublishCatalog(context.Background(), cat)
	if err != nil {
		t.Fatalf("PublishCatalog: %v", err)
	}
	if res.BytesBefore < 600_000 {
		t.Errorf("BytesBefore = %d, want >= 600000", res.BytesBefore)
	}
	if res.BytesAfter >= 400_000 {
		t.Errorf("BytesAfter = %d, want < 400000", res.BytesAfter)
	}
	if res.ReductionPct <= 0 {
		t.Errorf("ReductionPct = %.1f, want > 0", res.ReductionPct)
	}
	if res.Bytes != res.BytesAfter {
		t.Errorf("published %d bytes, trimmed size %d", res.Bytes, res.BytesAfter)
	}

	stored, err := store.Get(context.Background(), cache.KeyPrimarySnapshot)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var decoded models.CatalogSnapshot
	if err := json.Unmarshal(stored, &decoded); err != nil {
		t.Fatalf("stored snapshot is not JSON: %v", err)
	}
	if decoded.Summary.Total != 600 {
		t.Errorf("stored summary.total = %d", decoded.Summary.Total)
	}
	if _, err := store.Get(context.Background(), cache.KeyLastUpdated); err != nil {
		t.Errorf("last_updated not written: %v", err)
	}
}

func TestPublishCatalog_TrimmedNeverLarger(t *testing.T) {
	rules := testRules(t)
	products := make([]*models.Product, 0, 5)
	for i := 0; i < 5; i++ {
		products = append(products, &models.Product{
			Name:            fmt.Sprintf("Tool %d", i),
			Units:           []string{"Middle"},
			Department:      "Science",
			LicenseCategory: "Per User",
			Cost:            floatPtr(1250.5),
			URL:             "https://example.com/tool",
		})
	}

	cat := BuildCatalog(categorize.Categorize(products, rules), 0, time.Now())
	res, err := NewPublisher(cache.NewMemoryStore(), testCacheConfig()).PublishCatalog(context.Background(), cat)
	if err != nil {
		t.Fatalf("PublishCatalog: %v", err)
	}
	if res.BytesAfter > res.BytesBefore {
		t.Errorf("bytes before/after = %d/%d, trimmed snapshot is larger", res.BytesBefore, res.BytesAfter)
	}
	if res.ReductionPct < 0 {
		t.Errorf("ReductionPct = %.1f, want >= 0", res.ReductionPct)
	}
}

func TestPublish_TooLarge(t *testing.T) {
	store := newFlakyStore()
	pub := NewPublisher(store, config.CacheConfig{MaxSnapshotBytes: 10})

	_, err := pub.Publish(context.Background(), cache.KeyLivenessStatus, map[string]string{"k": "a long value"})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
	if len(store.puts) != 0 {
		t.Errorf("oversized payload triggered writes: %v", store.puts)
	}
}

func TestPublish_DataWriteFailureLeavesPrevious(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	pub := NewPublisher(store, testCacheConfig())

	if _, err := pub.Publish(ctx, cache.KeyLivenessStatus, map[string]int{"v": 1}); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	store.failPut[cache.KeyLivenessStatus] = errors.New("quota exceeded")
	_, err := pub.Publish(ctx, cache.KeyLivenessStatus, map[string]int{"v": 2})
	if !errors.Is(err, ErrCacheWrite) {
		t.Fatalf("err = %v, want ErrCacheWrite", err)
	}

	got, _ := store.Get(ctx, cache.KeyLivenessStatus)
	if string(got) != `{"v":1}` {
		t.Errorf("previous snapshot replaced: %s", got)
	}
}

func TestPublish_TimestampFailureKeepsData(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.failPut[cache.KeyLastUpdated] = errors.New("timeout")
	pub := NewPublisher(store, testCacheConfig())

	res, err := pub.Publish(ctx, cache.KeyLivenessStatus, map[string]int{"v": 1})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.TimestampError == "" {
		t.Error("TimestampError should report the failed last_updated write")
	}
	if _, err := store.Get(ctx, cache.KeyLivenessStatus); err != nil {
		t.Errorf("data should stay after timestamp failure: %v", err)
	}
	want := []string{cache.KeyLivenessStatus, cache.KeyLastUpdated}
	if strings.Join(store.puts, ",") != strings.Join(want, ",") {
		t.Errorf("write order = %v, want %v", store.puts, want)
	}
}

func TestPublish_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	pub := NewPublisher(store, testCacheConfig())
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pub.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	value := map[string]int{"a": 1}
	first, err := pub.Publish(ctx, cache.KeyLivenessStatus, value)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get(ctx, cache.KeyLivenessStatus)
	second, err := pub.Publish(ctx, cache.KeyLivenessStatus, value)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := store.Get(ctx, cache.KeyLivenessStatus)

	if string(before) != string(after) {
		t.Errorf("identical republish changed data: %s -> %s", before, after)
	}
	if !second.Timestamp.After(first.Timestamp) {
		t.Errorf("timestamp not bumped: %v -> %v", first.Timestamp, second.Timestamp)
	}
}

func TestReductionPct(t *testing.T) {
	tests := []struct {
		before, after int
		want          float64
	}{
		{1000, 250, 75},
		{3, 2, 33.3},
		{100, 100, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := ReductionPct(tt.before, tt.after); got != tt.want {
			t.Errorf("ReductionPct(%d, %d) = %v, want %v", tt.before, tt.after, got, tt.want)
		}
	}
}

func TestReader_NotPopulated(t *testing.T) {
	r := NewReader(cache.NewMemoryStore(), config.ReaderConfig{})

	res, err := r.Read(context.Background(), cache.KeyPrimarySnapshot)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Found {
		t.Fatal("Found should be false before any publish")
	}

	data, err := json.Marshal(NotPopulated(cache.KeyPrimarySnapshot))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Error   string `json:"error"`
		Summary struct {
			Total *int `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Error != NotPopulatedMessage {
		t.Errorf("error = %q", decoded.Error)
	}
	if decoded.Summary.Total == nil || *decoded.Summary.Total != 0 {
		t.Errorf("summary.total missing or non-zero: %s", data)
	}
}

func TestNotPopulated_Liveness(t *testing.T) {
	data, err := json.Marshal(NotPopulated(cache.KeyLivenessStatus))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"total":0`, `"upPct":0`, `"statuses":{}`, `"downList":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("payload %s missing %s", data, want)
		}
	}
}

func TestReader_ReadAfterPublish(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	pub := NewPublisher(store, testCacheConfig())
	fixed := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	snap := &models.LivenessSnapshot{
		Statuses: map[string]int{"Kahoot": 1},
		Summary:  models.LivenessSummary{Total: 1, Up: 1, UpPct: 100},
	}
	if _, err := pub.PublishLiveness(ctx, snap); err != nil {
		t.Fatal(err)
	}

	r := NewReader(store, config.ReaderConfig{})
	res, err := r.Read(ctx, cache.KeyLivenessStatus)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false after publish")
	}
	if !res.LastUpdated.Equal(fixed) {
		t.Errorf("LastUpdated = %v, want %v", res.LastUpdated, fixed)
	}
	if !strings.Contains(string(res.Data), `"Kahoot":1`) {
		t.Errorf("Data = %s", res.Data)
	}
}

func TestReader_BadTimestampIgnored(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	_ = store.Put(ctx, cache.KeyPrimarySnapshot, []byte(`{}`))
	_ = store.Put(ctx, cache.KeyLastUpdated, []byte("yesterday"))

	res, err := NewReader(store, config.ReaderConfig{}).Read(ctx, cache.KeyPrimarySnapshot)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Found || !res.LastUpdated.IsZero() {
		t.Errorf("res = %+v", res)
	}
}

func TestReader_CacheControl(t *testing.T) {
	r := NewReader(cache.NewMemoryStore(), config.ReaderConfig{
		SMaxAge:              60 * time.Second,
		StaleWhileRevalidate: 5 * time.Minute,
	})
	want := "public, max-age=0, s-maxage=60, stale-while-revalidate=300"
	if got := r.CacheControl(); got != want {
		t.Errorf("CacheControl() = %q, want %q", got, want)
	}
}
