// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mapper

import (
	"strings"
	"unicode"
)

// field identifies one attribute of models.Product.
type field int

const (
	fieldName field = iota
	fieldUnits
	fieldDepartment
	fieldLicenseCategory
	fieldSeats
	fieldCost
	fieldURL
	fieldAddDate
	fieldRenewalDate
	fieldEnterprise
	fieldAudience
	fieldDescription
	fieldLogo
	fieldSupportURL
	fieldTutorialURL
	fieldPrivacyURL
	fieldSSO
	fieldMobile
	fieldRiskRating
	fieldNotes
	fieldCount
)

// fieldSpec names a field in each outer shape.
type fieldSpec struct {
	legacy     string // column header written back to the legacy API
	relational string // snake_case column of the relational mirror
}

var fieldSpecs = [fieldCount]fieldSpec{
	fieldName:            {legacy: "Product Name", relational: "name"},
	fieldUnits:           {legacy: "School", relational: "units"},
	fieldDepartment:      {legacy: "Department", relational: "department"},
	fieldLicenseCategory: {legacy: "License Type", relational: "license_category"},
	fieldSeats:           {legacy: "Licenses", relational: "seats"},
	fieldCost:            {legacy: "Cost", relational: "annual_cost"},
	fieldURL:             {legacy: "URL", relational: "url"},
	fieldAddDate:         {legacy: "Date Added", relational: "add_date"},
	fieldRenewalDate:     {legacy: "Renewal Date", relational: "renewal_date"},
	fieldEnterprise:      {legacy: "Enterprise", relational: "is_enterprise"},
	fieldAudience:        {legacy: "Audience", relational: "audience"},
	fieldDescription:     {legacy: "Description", relational: "description"},
	fieldLogo:            {legacy: "Logo", relational: "logo_url"},
	fieldSupportURL:      {legacy: "Support URL", relational: "support_url"},
	fieldTutorialURL:     {legacy: "Tutorial URL", relational: "tutorial_url"},
	fieldPrivacyURL:      {legacy: "Privacy Policy", relational: "privacy_url"},
	fieldSSO:             {legacy: "SSO", relational: "sso"},
	fieldMobile:          {legacy: "Mobile App", relational: "mobile"},
	fieldRiskRating:      {legacy: "Risk Rating", relational: "risk_rating"},
	fieldNotes:           {legacy: "Notes", relational: "notes"},
}

// fieldAliases maps canonicalKey(header) to a field. Every legacy and
// relational name is registered by init; the entries here cover headers used
// by older sheet revisions and the dashboard's own camelCase keys.
var fieldAliases = map[string]field{
	"name":             fieldName,
	"product":          fieldName,
	"app":              fieldName,
	"appname":          fieldName,
	"application":      fieldName,
	"applicationname":  fieldName,
	"schools":          fieldUnits,
	"unit":             fieldUnits,
	"units":            fieldUnits,
	"building":         fieldUnits,
	"buildings":        fieldUnits,
	"level":            fieldUnits,
	"schoollevel":      fieldUnits,
	"dept":             fieldDepartment,
	"subject":          fieldDepartment,
	"contentarea":      fieldDepartment,
	"license":          fieldLicenseCategory,
	"licensetype":      fieldLicenseCategory,
	"licensecategory":  fieldLicenseCategory,
	"licensing":        fieldLicenseCategory,
	"seats":            fieldSeats,
	"licensecount":     fieldSeats,
	"numberoflicenses": fieldSeats,
	"quantity":         fieldSeats,
	"price":            fieldCost,
	"annualcost":       fieldCost,
	"costperyear":      fieldCost,
	"website":          fieldURL,
	"link":             fieldURL,
	"producturl":       fieldURL,
	"dateadded":        fieldAddDate,
	"added":            fieldAddDate,
	"adddate":          fieldAddDate,
	"renewal":          fieldRenewalDate,
	"renewaldate":      fieldRenewalDate,
	"expiration":       fieldRenewalDate,
	"expirationdate":   fieldRenewalDate,
	"isenterprise":     fieldEnterprise,
	"flagship":         fieldEnterprise,
	"enterpriseapp":    fieldEnterprise,
	"audiences":        fieldAudience,
	"users":            fieldAudience,
	"intendedusers":    fieldAudience,
	"logourl":          fieldLogo,
	"icon":             fieldLogo,
	"support":          fieldSupportURL,
	"supportlink":      fieldSupportURL,
	"helpurl":          fieldSupportURL,
	"tutorial":         fieldTutorialURL,
	"tutoriallink":     fieldTutorialURL,
	"training":         fieldTutorialURL,
	"privacy":          fieldPrivacyURL,
	"privacyurl":       fieldPrivacyURL,
	"privacypolicyurl": fieldPrivacyURL,
	"singlesignon":     fieldSSO,
	"ssoenabled":       fieldSSO,
	"mobile":           fieldMobile,
	"mobileavailable":  fieldMobile,
	"risk":             fieldRiskRating,
	"riskrating":       fieldRiskRating,
	"privacyrating":    fieldRiskRating,
	"comments":         fieldNotes,
	"note":             fieldNotes,
}

func init() {
	for f, spec := range fieldSpecs {
		fieldAliases[canonicalKey(spec.legacy)] = field(f)
		fieldAliases[canonicalKey(spec.relational)] = field(f)
	}
}

// canonicalKey folds a header to lowercase letters and digits only, so
// "Product Name", "product_name", "productName" and "PRODUCT-NAME" collide.
func canonicalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// lookupField resolves a source header to a field.
func lookupField(key string) (field, bool) {
	f, ok := fieldAliases[canonicalKey(key)]
	return f, ok
}
