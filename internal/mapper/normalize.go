// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mapper

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/licensewatch/internal/models"
	"github.com/tomtom215/licensewatch/internal/validation"
)

// Normalize converts one legacy row to a Product. Keys are matched
// case-, space- and punctuation-insensitively; unknown keys are ignored.
// When several headers alias the same field, the first non-empty one in
// sorted header order wins so the result does not depend on map order.
func Normalize(rec models.LegacyRecord) (*models.Product, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := &models.Product{}
	var filled [fieldCount]bool
	for _, key := range keys {
		f, ok := lookupField(key)
		if !ok || filled[f] {
			continue
		}
		set, err := assign(p, f, rec[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		filled[f] = set
	}

	return finish(p)
}

// NormalizeRelational converts one relational mirror row to a Product.
func NormalizeRelational(row models.RelationalRow) (*models.Product, error) {
	p := &models.Product{
		Name:            strings.TrimSpace(row.Name),
		Units:           CoerceStringList(deref(row.Units)),
		Department:      strings.TrimSpace(deref(row.Department)),
		LicenseCategory: strings.TrimSpace(deref(row.LicenseCategory)),
		Cost:            row.AnnualCost,
		URL:             strings.TrimSpace(deref(row.URL)),
		Audience:        CoerceStringList(deref(row.Audience)),
		Description:     strings.TrimSpace(deref(row.Description)),
		Logo:            strings.TrimSpace(deref(row.LogoURL)),
		SupportURL:      strings.TrimSpace(deref(row.SupportURL)),
		TutorialURL:     strings.TrimSpace(deref(row.TutorialURL)),
		PrivacyURL:      strings.TrimSpace(deref(row.PrivacyURL)),
		RiskRating:      strings.TrimSpace(deref(row.RiskRating)),
		Notes:           strings.TrimSpace(deref(row.Notes)),
	}
	if row.Seats != nil {
		n := int(*row.Seats)
		p.Seats = &n
	}
	if row.AddDate != nil {
		p.AddDate = models.DateOf(*row.AddDate)
	}
	if row.RenewalDate != nil {
		p.RenewalDate = models.DateOf(*row.RenewalDate)
	}
	p.Enterprise = row.IsEnterprise != nil && *row.IsEnterprise
	p.SSO = row.SSO != nil && *row.SSO
	p.Mobile = row.Mobile != nil && *row.Mobile

	return finish(p)
}

// NormalizeAll normalizes a fetched batch. Malformed records are skipped and
// returned as RecordErrors; the remaining products keep source order.
func NormalizeAll(records []models.LegacyRecord) ([]*models.Product, []RecordError) {
	products := make([]*models.Product, 0, len(records))
	var failures []RecordError
	for i, rec := range records {
		p, err := Normalize(rec)
		if err != nil {
			failures = append(failures, RecordError{Index: i, Name: rawName(rec), Err: err})
			continue
		}
		products = append(products, p)
	}
	return products, failures
}

func finish(p *models.Product) (*models.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, ErrMissingName
	}
	if verr := validation.ValidateStruct(p); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, verr.Error())
	}
	return p, nil
}

// assign coerces v into field f of p. It reports whether the field received
// a non-empty value.
func assign(p *models.Product, f field, v any) (bool, error) {
	switch f {
	case fieldName:
		p.Name = CoerceString(v)
		return p.Name != "", nil
	case fieldUnits:
		p.Units = CoerceStringList(v)
		return len(p.Units) > 0, nil
	case fieldDepartment:
		p.Department = CoerceString(v)
		return p.Department != "", nil
	case fieldLicenseCategory:
		p.LicenseCategory = CoerceString(v)
		return p.LicenseCategory != "", nil
	case fieldSeats:
		n, err := CoerceInt(v)
		p.Seats = n
		return n != nil, err
	case fieldCost:
		c, err := CoerceNumber(v)
		p.Cost = c
		return c != nil, err
	case fieldURL:
		p.URL = CoerceString(v)
		return p.URL != "", nil
	case fieldAddDate:
		d, err := CoerceDate(v)
		p.AddDate = d
		return !d.IsZero(), err
	case fieldRenewalDate:
		d, err := CoerceDate(v)
		p.RenewalDate = d
		return !d.IsZero(), err
	case fieldEnterprise:
		p.Enterprise = CoerceBool(v)
		return p.Enterprise, nil
	case fieldAudience:
		p.Audience = CoerceStringList(v)
		return len(p.Audience) > 0, nil
	case fieldDescription:
		p.Description = CoerceString(v)
		return p.Description != "", nil
	case fieldLogo:
		p.Logo = CoerceString(v)
		return p.Logo != "", nil
	case fieldSupportURL:
		p.SupportURL = CoerceString(v)
		return p.SupportURL != "", nil
	case fieldTutorialURL:
		p.TutorialURL = CoerceString(v)
		return p.TutorialURL != "", nil
	case fieldPrivacyURL:
		p.PrivacyURL = CoerceString(v)
		return p.PrivacyURL != "", nil
	case fieldSSO:
		p.SSO = CoerceBool(v)
		return p.SSO, nil
	case fieldMobile:
		p.Mobile = CoerceBool(v)
		return p.Mobile, nil
	case fieldRiskRating:
		p.RiskRating = CoerceString(v)
		return p.RiskRating != "", nil
	case fieldNotes:
		p.Notes = CoerceString(v)
		return p.Notes != "", nil
	}
	return false, fmt.Errorf("unmapped field %d", f)
}

// rawName extracts a best-effort name from a record that failed to
// normalize, for logging only.
func rawName(rec models.LegacyRecord) string {
	for k, v := range rec {
		if f, ok := lookupField(k); ok && f == fieldName {
			if s := CoerceString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// SkipReason classifies a record-level failure for the skipped-record
// metric: missing_name, invalid_date, invalid_number or invalid_record.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingName):
		return "missing_name"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid_number"
	default:
		return "invalid_record"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
