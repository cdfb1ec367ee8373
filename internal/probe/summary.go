// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package probe

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/licensewatch/internal/models"
)

// Summarize aggregates one probe cycle. The latency average covers every
// probe, including failures; percentages are rounded to one decimal.
func Summarize(results []models.ProbeResult) models.LivenessSummary {
	s := models.LivenessSummary{Total: len(results)}
	if s.Total == 0 {
		return s
	}

	var latency int64
	for _, r := range results {
		if r.Up() {
			s.Up++
		} else {
			s.Down++
		}
		latency += r.LatencyMs
	}

	s.UpPct = round1(float64(s.Up) / float64(s.Total) * 100)
	s.AvgLatencyMs = round1(float64(latency) / float64(s.Total))
	return s
}

// BuildSnapshot assembles the liveness_status value for one cycle. The down
// list is sorted by name.
func BuildSnapshot(results []models.ProbeResult, checkedAt time.Time) models.LivenessSnapshot {
	snap := models.LivenessSnapshot{
		Statuses:    make(map[string]int, len(results)),
		Summary:     Summarize(results),
		Down:        make([]models.ProbeResult, 0),
		LastChecked: checkedAt.UTC(),
	}
	for _, r := range results {
		snap.Statuses[r.Name] = r.Status
		if !r.Up() {
			snap.Down = append(snap.Down, r)
		}
	}
	sort.Slice(snap.Down, func(i, j int) bool {
		return snap.Down[i].Name < snap.Down[j].Name
	})
	return snap
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
