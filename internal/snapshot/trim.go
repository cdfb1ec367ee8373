// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package snapshot

import (
	"sort"
	"strings"

	"github.com/tomtom215/licensewatch/internal/mapper"
	"github.com/tomtom215/licensewatch/internal/models"
)

// Trim reduces each product to its essential fields. Description, logo,
// support, tutorial and privacy links, and notes are dropped. Products are
// de-duplicated by name (first wins) and sorted by name.
func Trim(products []*models.Product) []models.EssentialProduct {
	seen := make(map[string]struct{}, len(products))
	out := make([]models.EssentialProduct, 0, len(products))

	for _, p := range products {
		if p == nil {
			continue
		}
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, essential(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func essential(p *models.Product) models.EssentialProduct {
	return models.EssentialProduct{
		Name:            p.Name,
		Units:           p.Units,
		Department:      p.Department,
		LicenseCategory: p.LicenseCategory,
		Seats:           p.Seats,
		Cost:            p.Cost,
		CostDisplay:     mapper.FormatCost(p.Cost),
		URL:             p.URL,
		AddDate:         p.AddDate,
		RenewalDate:     p.RenewalDate,
		Enterprise:      p.Enterprise,
		Audience:        p.Audience,
		SSO:             p.SSO,
		Mobile:          p.Mobile,
		RiskRating:      p.RiskRating,
	}
}
