// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package snapshot

import (
	"time"

	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/models"
)

// Catalog is one pass's catalog bundle, holding both the trimmed snapshot that
// gets published and the full products it was trimmed from.
type Catalog struct {
	Trimmed *models.CatalogSnapshot
	full    []*models.Product
}

// untrimmedProduct is an EssentialProduct plus the fields Trim drops, so its
// encoding always contains the trimmed one.
type untrimmedProduct struct {
	models.EssentialProduct
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	SupportURL  string `json:"supportUrl,omitempty"`
	TutorialURL string `json:"tutorialUrl,omitempty"`
	PrivacyURL  string `json:"privacyUrl,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// untrimmedCatalog marshals like CatalogSnapshot but with full products.
type untrimmedCatalog struct {
	Organization models.OrganizationTab `json:"organization"`
	SubUnits     []models.SubUnitTab    `json:"subUnits"`
	Products     []untrimmedProduct          `json:"products"`
	Orphans      []string               `json:"orphans"`
	Summary      models.CatalogSummary  `json:"summary"`
	LastUpdated  time.Time              `json:"lastUpdated"`
}

// Full returns the catalog as it would look without allow-list trimming.
func (c *Catalog) Full() any {
	products := make([]untrimmedProduct, 0, len(c.full))
	for _, p := range c.full {
		if p == nil {
			continue
		}
		products = append(products, untrimmedProduct{
			EssentialProduct: essential(p),
			Description:      p.Description,
			Logo:             p.Logo,
			SupportURL:       p.SupportURL,
			TutorialURL:      p.TutorialURL,
			PrivacyURL:       p.PrivacyURL,
			Notes:            p.Notes,
		})
	}
	return untrimmedCatalog{
		Organization: c.Trimmed.Organization,
		SubUnits:     c.Trimmed.SubUnits,
		Products:     products,
		Orphans:      c.Trimmed.Orphans,
		Summary:      c.Trimmed.Summary,
		LastUpdated:  c.Trimmed.LastUpdated,
	}
}

// BuildCatalog assembles the catalog bundle for a categorized pass. skipped
// is the number of malformed records dropped before categorization.
func BuildCatalog(cat categorize.Categorized, skipped int, now time.Time) *Catalog {
	products := make([]*models.Product, 0, len(cat.Entries))
	for _, e := range cat.Entries {
		products = append(products, e.Product)
	}

	bySubUnit := make(map[string]int, len(cat.SubUnits))
	for _, tab := range cat.SubUnits {
		bySubUnit[tab.Name] = cat.BySubUnit[tab.Name]
	}

	orphans := cat.Orphans
	if orphans == nil {
		orphans = []string{}
	}
	subUnits := cat.SubUnits
	if subUnits == nil {
		subUnits = []models.SubUnitTab{}
	}

	snap := &models.CatalogSnapshot{
		Organization: cat.Organization,
		SubUnits:     subUnits,
		Products:     Trim(products),
		Orphans:      orphans,
		Summary: models.CatalogSummary{
			Total:     len(cat.Entries),
			OrgWide:   cat.OrgWideCount,
			Orphans:   len(orphans),
			Skipped:   skipped,
			BySubUnit: bySubUnit,
		},
		LastUpdated: now.UTC(),
	}

	return &Catalog{Trimmed: snap, full: products}
}
