// Package enrich drives per-company enrichment: concurrent source fetches,
// precedence merge into the golden record, scoring and persistence.
package enrich

import (
	"strings"

	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/scoring"
)

// fieldRule binds one aggregate field to its presence check and setter.
// Merge walks the rules against records ordered most-reliable first, so for
// each field the highest-ranked source that reports a value wins. Precedence
// lives in this one table instead of scattered conditionals.
type fieldRule struct {
	name string
	has  func(r *model.SourceRecord) bool
	set  func(c *model.Company, r *model.SourceRecord)
}

var fieldRules = []fieldRule{
	{
		name: "name",
		has:  func(r *model.SourceRecord) bool { return r.Name != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.Name = r.Name },
	},
	{
		name: "industry_code",
		has:  func(r *model.SourceRecord) bool { return r.IndustryCode != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.IndustryCode = r.IndustryCode },
	},
	{
		name: "street",
		has:  func(r *model.SourceRecord) bool { return r.Street != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.Street = r.Street },
	},
	{
		name: "postal_code",
		has:  func(r *model.SourceRecord) bool { return r.PostalCode != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.PostalCode = r.PostalCode },
	},
	{
		name: "city",
		has:  func(r *model.SourceRecord) bool { return r.City != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.City = r.City },
	},
	{
		name: "phone",
		has:  func(r *model.SourceRecord) bool { return r.Phone != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.Phone = r.Phone },
	},
	{
		name: "email",
		has:  func(r *model.SourceRecord) bool { return r.Email != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.Email = r.Email },
	},
	{
		name: "website",
		has:  func(r *model.SourceRecord) bool { return r.Website != "" },
		set:  func(c *model.Company, r *model.SourceRecord) { c.Website = r.Website },
	},
	{
		name: "turnover",
		has:  func(r *model.SourceRecord) bool { return r.Turnover != nil },
		set:  func(c *model.Company, r *model.SourceRecord) { v := *r.Turnover; c.Turnover = &v },
	},
	{
		name: "employee_count",
		has:  func(r *model.SourceRecord) bool { return r.EmployeeCount != nil },
		set:  func(c *model.Company, r *model.SourceRecord) { v := *r.EmployeeCount; c.EmployeeCount = &v },
	},
	{
		name: "registration_date",
		has:  func(r *model.SourceRecord) bool { return r.RegistrationDate != nil },
		set:  func(c *model.Company, r *model.SourceRecord) { v := *r.RegistrationDate; c.RegistrationDate = &v },
	},
}

// Merge applies source records to the aggregate. Records must be ordered
// most-reliable first; for each scalar field the first record reporting a
// value wins and overwrites the aggregate (a refresh updates stale data, but
// a lower-rank source never beats a higher-rank one within a pass). Fields no
// record reports keep their existing value — merge never clears data.
// Financial years and products merge additively. Returns the merged industry
// free text, which the caller feeds to classification and scoring.
func Merge(c *model.Company, records []*model.SourceRecord) string {
	for _, rule := range fieldRules {
		for _, rec := range records {
			if rec == nil {
				continue
			}
			if rule.has(rec) {
				rule.set(c, rec)
				break
			}
		}
	}

	industryText := ""
	for _, rec := range records {
		if rec != nil && rec.IndustryText != "" {
			industryText = rec.IndustryText
			break
		}
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		mergeFinancials(c, rec)
		mergeProducts(c, rec)
	}

	return industryText
}

// mergeFinancials upserts fiscal years by year — additive, never dropped.
func mergeFinancials(c *model.Company, rec *model.SourceRecord) {
	for _, fy := range rec.FinancialYears {
		fd := model.FinancialData{
			Year:        fy.Year,
			Revenue:     fy.Revenue,
			Profit:      fy.Profit,
			Assets:      fy.Assets,
			Liabilities: fy.Liabilities,
			Source:      rec.Source,
		}
		health := scoring.YearHealthScore(fd)
		fd.HealthScore = &health

		replaced := false
		for i := range c.Financials {
			if c.Financials[i].Year == fy.Year {
				fd.ID = c.Financials[i].ID
				fd.CompanyID = c.Financials[i].CompanyID
				c.Financials[i] = fd
				replaced = true
				break
			}
		}
		if !replaced {
			c.Financials = append(c.Financials, fd)
		}
	}
}

// mergeProducts adds product hints, deduplicated by case-insensitive
// substring match on the name.
func mergeProducts(c *model.Company, rec *model.SourceRecord) {
	for _, hint := range rec.Products {
		if hint.Name == "" || productKnown(c.Products, hint.Name) {
			continue
		}
		c.Products = append(c.Products, model.Product{
			Name:        hint.Name,
			Description: hint.Description,
			Category:    hint.Category,
			Confidence:  hint.Confidence,
			Source:      rec.Source,
		})
	}
}

func productKnown(products []model.Product, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range products {
		existing := strings.ToLower(p.Name)
		if strings.Contains(existing, lower) || strings.Contains(lower, existing) {
			return true
		}
	}
	return false
}
