// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/models"
)

// CostFreeLabel is the display form of a zero cost.
const CostFreeLabel = "Free"

// spreadsheetEpoch is day zero of spreadsheet serial dates.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDay is 9999-12-31 as a serial number.
const maxSerialDay = 2958465

// dateLayouts are tried in order for non-numeric date strings.
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
}

// numericPlaceholders are spreadsheet cell values that mean "no number".
var numericPlaceholders = map[string]bool{
	"-":         true,
	"n/a":       true,
	"na":        true,
	"tbd":       true,
	"unknown":   true,
	"unlimited": true,
	"none":      true,
}

// CoerceString renders a scalar as trimmed text. Lists are joined with ", ".
func CoerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []string, []any:
		return strings.Join(CoerceStringList(t), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// CoerceStringList accepts a real list, a JSON-encoded array or comma-separated
// text and returns trimmed, non-empty values with exact duplicates removed.
// A nil input yields nil.
func CoerceStringList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		raw = t
	case []any:
		raw = make([]string, 0, len(t))
		for _, item := range t {
			raw = append(raw, CoerceString(item))
		}
	case string:
		raw = splitListText(t)
	default:
		raw = []string{CoerceString(t)}
	}
	return cleanList(raw)
}

func splitListText(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var decoded []any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			out := make([]string, 0, len(decoded))
			for _, item := range decoded {
				out = append(out, CoerceString(item))
			}
			return out
		}
	}
	return strings.Split(s, ",")
}

func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CoerceBool is true for true, "true"/"yes"/"y"/"1" in any case and numeric 1.
// Absent and every other value is false.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "x":
			return true
		}
		return false
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	default:
		return false
	}
}

// CoerceNumber parses a numeric cell. "Free" is 0; empty cells and
// placeholders such as "n/a" are nil. Currency symbols and thousands
// separators are ignored.
func CoerceNumber(v any) (*float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, t.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" || numericPlaceholders[strings.ToLower(s)] {
			return nil, nil
		}
		if strings.EqualFold(s, CostFreeLabel) {
			zero := 0.0
			return &zero, nil
		}
		s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, t)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumber, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, f)
	}
	return &f, nil
}

// CoerceInt parses a whole-number cell with the same rules as CoerceNumber.
func CoerceInt(v any) (*int, error) {
	f, err := CoerceNumber(v)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) || *f > math.MaxInt32 || *f < math.MinInt32 {
		return nil, fmt.Errorf("%w: %v is not a whole number", ErrInvalidNumber, *f)
	}
	n := int(*f)
	return &n, nil
}

// CoerceDate normalizes a spreadsheet serial number (days since 1899-12-30,
// as a number or numeric string) or a date string to a models.Date. Inputs
// naming the same calendar day yield equal Dates. Empty input is the zero Date.
func CoerceDate(v any) (models.Date, error) {
	switch t := v.(type) {
	case nil:
		return models.Date{}, nil
	case time.Time:
		return models.DateOf(t), nil
	case models.Date:
		return t, nil
	case float64:
		return serialToDate(t)
	case int:
		return serialToDate(float64(t))
	case int64:
		return serialToDate(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return models.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, t.String())
		}
		return serialToDate(f)
	case string:
		return parseDateString(t)
	default:
		return models.Date{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

func parseDateString(raw string) (models.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.Date{}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(f)
	}
	for _, layout := range dateLayouts {
		// the calendar day is taken in the string's own offset
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return models.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// serialToDate drops the fractional time-of-day part of a serial.
func serialToDate(serial float64) (models.Date, error) {
	if math.IsNaN(serial) || serial < 1 || serial > maxSerialDay {
		return models.Date{}, fmt.Errorf("%w: serial %v out of range", ErrInvalidDate, serial)
	}
	return models.DateOf(spreadsheetEpoch.AddDate(0, 0, int(math.Floor(serial)))), nil
}

// FormatCost renders a cost for display: "Free" for 0, "" for unknown.
func FormatCost(cost *float64) string {
	if cost == nil {
		return ""
	}
	if *cost == 0 {
		return CostFreeLabel
	}
	return "$" + strconv.FormatFloat(*cost, 'f', 2, 64)
}
