// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mapper

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/models"
)

// Shape selects the target record layout of Denormalize.
type Shape int

const (
	// ShapeLegacy is the flat legacy spreadsheet row.
	ShapeLegacy Shape = iota
	// ShapeRelational is the snake_case relational mirror row.
	ShapeRelational
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeRelational:
		return "relational"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Denormalize renders p in the target shape.
//
// ShapeLegacy emits only non-null fields: empty strings and lists, nil numbers
// and zero dates are omitted, booleans are always present. Lists are written
// as comma-separated text, or as JSON array text when an element contains a
// comma. Dates are written as YYYY-MM-DD and a zero cost as numeric 0.
//
// ShapeRelational emits every column, with nil for SQL NULL.
func Denormalize(p *models.Product, shape Shape) (map[string]any, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil product", ErrInvalidRecord)
	}
	switch shape {
	case ShapeLegacy:
		return toLegacy(p), nil
	case ShapeRelational:
		return toRelational(p), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, shape)
	}
}

func toLegacy(p *models.Product) map[string]any {
	out := make(map[string]any, fieldCount)
	for f := field(0); f < fieldCount; f++ {
		if v, ok := legacyValue(p, f); ok {
			out[fieldSpecs[f].legacy] = v
		}
	}
	return out
}

// legacyValue returns the legacy encoding of field f and whether it is non-null.
func legacyValue(p *models.Product, f field) (any, bool) {
	switch f {
	case fieldName:
		return nonEmpty(p.Name)
	case fieldUnits:
		return nonEmptyList(p.Units)
	case fieldDepartment:
		return nonEmpty(p.Department)
	case fieldLicenseCategory:
		return nonEmpty(p.LicenseCategory)
	case fieldSeats:
		if p.Seats == nil {
			return nil, false
		}
		return *p.Seats, true
	case fieldCost:
		if p.Cost == nil {
			return nil, false
		}
		return *p.Cost, true
	case fieldURL:
		return nonEmpty(p.URL)
	case fieldAddDate:
		return nonZeroDate(p.AddDate)
	case fieldRenewalDate:
		return nonZeroDate(p.RenewalDate)
	case fieldEnterprise:
		return p.Enterprise, true
	case fieldAudience:
		return nonEmptyList(p.Audience)
	case fieldDescription:
		return nonEmpty(p.Description)
	case fieldLogo:
		return nonEmpty(p.Logo)
	case fieldSupportURL:
		return nonEmpty(p.SupportURL)
	case fieldTutorialURL:
		return nonEmpty(p.TutorialURL)
	case fieldPrivacyURL:
		return nonEmpty(p.PrivacyURL)
	case fieldSSO:
		return p.SSO, true
	case fieldMobile:
		return p.Mobile, true
	case fieldRiskRating:
		return nonEmpty(p.RiskRating)
	case fieldNotes:
		return nonEmpty(p.Notes)
	}
	return nil, false
}

func toRelational(p *models.Product) map[string]any {
	out := map[string]any{
		"name":             p.Name,
		"units":            nullableList(p.Units),
		"department":       nullable(p.Department),
		"license_category": nullable(p.LicenseCategory),
		"seats":            nil,
		"annual_cost":      nil,
		"url":              nullable(p.URL),
		"add_date":         nullableDate(p.AddDate),
		"renewal_date":     nullableDate(p.RenewalDate),
		"is_enterprise":    p.Enterprise,
		"audience":         nullableList(p.Audience),
		"description":      nullable(p.Description),
		"logo_url":         nullable(p.Logo),
		"support_url":      nullable(p.SupportURL),
		"tutorial_url":     nullable(p.TutorialURL),
		"privacy_url":      nullable(p.PrivacyURL),
		"sso":              p.SSO,
		"mobile":           p.Mobile,
		"risk_rating":      nullable(p.RiskRating),
		"notes":            nullable(p.Notes),
	}
	if p.Seats != nil {
		out["seats"] = int64(*p.Seats)
	}
	if p.Cost != nil {
		out["annual_cost"] = *p.Cost
	}
	return out
}

// DiffLegacy returns the partial legacy update turning prev into next: only
// fields whose non-null legacy value changed. A field cleared in next is not
// emitted, so the update never blanks a column.
func DiffLegacy(prev, next *models.Product) map[string]any {
	out := make(map[string]any)
	for f := field(0); f < fieldCount; f++ {
		nv, ok := legacyValue(next, f)
		if !ok {
			continue
		}
		if prev != nil {
			if pv, had := legacyValue(prev, f); had && reflect.DeepEqual(pv, nv) {
				continue
			}
		}
		out[fieldSpecs[f].legacy] = nv
	}
	return out
}

// Repairs returns the partial update that rewrites rec's non-canonical cells
// in canonical form: "Free" becomes numeric 0, serial dates become
// YYYY-MM-DD, "Yes" becomes true. List cells are left alone when they already
// decode to the normalized list. Only the header Normalize read each field
// from is repaired, so a second alias column is never overwritten. The name
// column is never rewritten and cells absent from rec are never added.
func Repairs(rec models.LegacyRecord, p *models.Product) map[string]any {
	out := make(map[string]any)
	for f, key := range sourceHeaders(rec) {
		if f == fieldName {
			continue
		}
		canon, ok := legacyValue(p, f)
		if !ok {
			continue
		}
		raw := rec[key]
		if sameCell(raw, canon) {
			continue
		}
		if list, isList := listValue(p, f); isList && reflect.DeepEqual(CoerceStringList(raw), list) {
			continue
		}
		out[key] = canon
	}
	return out
}

// sourceHeaders maps each field present in rec to the header Normalize takes
// its value from: the first header in sorted order holding a non-empty value,
// else the first header in sorted order.
func sourceHeaders(rec models.LegacyRecord) map[field]string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	scratch := &models.Product{}
	first := make(map[field]string)
	won := make(map[field]string)
	for _, key := range keys {
		f, ok := lookupField(key)
		if !ok {
			continue
		}
		if _, seen := first[f]; !seen {
			first[f] = key
		}
		if _, done := won[f]; done {
			continue
		}
		if set, err := assign(scratch, f, rec[key]); err == nil && set {
			won[f] = key
		}
	}
	for f, key := range first {
		if _, ok := won[f]; !ok {
			won[f] = key
		}
	}
	return won
}

func listValue(p *models.Product, f field) ([]string, bool) {
	switch f {
	case fieldUnits:
		return p.Units, true
	case fieldAudience:
		return p.Audience, true
	}
	return nil, false
}

// sameCell compares a raw cell to its canonical value by type and rendering,
// so 5.0 and 5 match while "5" and 5 do not.
func sameCell(raw, canon any) bool {
	switch c := canon.(type) {
	case string:
		s, ok := raw.(string)
		return ok && s == c
	case bool:
		b, ok := raw.(bool)
		return ok && b == c
	case int:
		f, ok := raw.(float64)
		return ok && f == float64(c)
	case float64:
		f, ok := raw.(float64)
		return ok && f == c
	}
	return reflect.DeepEqual(raw, canon)
}

func nonEmpty(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

func nonEmptyList(l []string) (any, bool) {
	if len(l) == 0 {
		return nil, false
	}
	return listText(l), true
}

// listText renders l as comma text, falling back to a JSON array when an
// element contains a comma or the text would parse as JSON, so the list
// splits back the same way.
func listText(l []string) string {
	joined := strings.Join(l, ", ")
	needsJSON := strings.HasPrefix(joined, "[")
	for _, s := range l {
		if strings.Contains(s, ",") {
			needsJSON = true
			break
		}
	}
	if needsJSON {
		if b, err := json.Marshal(l); err == nil {
			return string(b)
		}
	}
	return joined
}

func nonZeroDate(d models.Date) (any, bool) {
	if d.IsZero() {
		return nil, false
	}
	return d.String(), true
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableList(l []string) any {
	if len(l) == 0 {
		return nil
	}
	return listText(l)
}

func nullableDate(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time().Format(time.DateOnly)
}
