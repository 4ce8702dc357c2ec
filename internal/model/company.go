// Package model defines the golden record types for enriched Finnish company data.
package model

import (
	"regexp"
	"time"
)

// Company is the golden record for a company, keyed by the Finnish
// business identifier (Y-tunnus, format NNNNNNN-N).
type Company struct {
	ID         int64  `json:"id" db:"id"`
	BusinessID string `json:"business_id" db:"business_id"`
	Name       string `json:"name" db:"name"`

	// Classification
	Industry     string `json:"industry,omitempty" db:"industry"`
	IndustryCode string `json:"industry_code,omitempty" db:"industry_code"`

	// Location
	Street     string `json:"street,omitempty" db:"street"`
	PostalCode string `json:"postal_code,omitempty" db:"postal_code"`
	City       string `json:"city,omitempty" db:"city"`

	// Contact
	Phone   string `json:"phone,omitempty" db:"phone"`
	Email   string `json:"email,omitempty" db:"email"`
	Website string `json:"website,omitempty" db:"website"`

	// Size
	Turnover      *float64 `json:"turnover,omitempty" db:"turnover"`
	EmployeeCount *int     `json:"employee_count,omitempty" db:"employee_count"`

	// Derived — always set together from one OwnershipAnalysis, never user-set.
	HasOwnProducts         bool    `json:"has_own_products" db:"has_own_products"`
	ProductConfidenceScore float64 `json:"product_confidence_score" db:"product_confidence_score"`

	RegistrationDate *time.Time `json:"registration_date,omitempty" db:"registration_date"`
	LastVerified     *time.Time `json:"last_verified,omitempty" db:"last_verified"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`

	// Owned children. Loaded on detail lookups, nil on summary queries.
	Products   []Product          `json:"products,omitempty"`
	Financials []FinancialData    `json:"financials,omitempty"`
	Contacts   []Contact          `json:"contacts,omitempty"`
	Analysis   *OwnershipAnalysis `json:"analysis,omitempty"`
}

// Product is a product attributed to a company.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	CompanyID     int64     `json:"company_id" db:"company_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	Category      string    `json:"category,omitempty" db:"category"`
	IsMainProduct bool      `json:"is_main_product" db:"is_main_product"`
	Confidence    float64   `json:"confidence" db:"confidence"`
	Source        string    `json:"source,omitempty" db:"source"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FinancialData is one fiscal year of figures. Unique per (company, year);
// re-ingestion updates in place.
type FinancialData struct {
	ID          int64     `json:"id" db:"id"`
	CompanyID   int64     `json:"company_id" db:"company_id"`
	Year        int       `json:"year" db:"year"`
	Revenue     *float64  `json:"revenue,omitempty" db:"revenue"`
	Profit      *float64  `json:"profit,omitempty" db:"profit"`
	Assets      *float64  `json:"assets,omitempty" db:"assets"`
	Liabilities *float64  `json:"liabilities,omitempty" db:"liabilities"`
	HealthScore *float64  `json:"health_score,omitempty" db:"health_score"`
	Source      string    `json:"source,omitempty" db:"source"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Contact is a person associated with a company.
type Contact struct {
	ID              int64     `json:"id" db:"id"`
	CompanyID       int64     `json:"company_id" db:"company_id"`
	Name            string    `json:"name" db:"name"`
	Role            string    `json:"role,omitempty" db:"role"`
	IsDecisionMaker bool      `json:"is_decision_maker" db:"is_decision_maker"`
	Email           string    `json:"email,omitempty" db:"email"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	Source          string    `json:"source,omitempty" db:"source"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// OwnershipAnalysis holds the product-ownership confidence breakdown for a
// company. Recomputed and overwritten on every enrichment pass.
type OwnershipAnalysis struct {
	ID               int64     `json:"id" db:"id"`
	CompanyID        int64     `json:"company_id" db:"company_id"`
	IndustryScore    float64   `json:"industry_score" db:"industry_score"`
	ExportScore      float64   `json:"export_score" db:"export_score"`
	CompanySizeScore float64   `json:"company_size_score" db:"company_size_score"`
	FinancialScore   float64   `json:"financial_score" db:"financial_score"`
	PatentScore      float64   `json:"patent_score" db:"patent_score"`
	OverallScore     float64   `json:"overall_score" db:"overall_score"`
	Reasoning        string    `json:"reasoning" db:"reasoning"`
	AlgorithmVersion string    `json:"algorithm_version" db:"algorithm_version"`
	AnalyzedAt       time.Time `json:"analyzed_at" db:"analyzed_at"`
}

var businessIDPattern = regexp.MustCompile(`^\d{7}-\d$`)

// ValidBusinessID reports whether s matches the Y-tunnus format NNNNNNN-N.
func ValidBusinessID(s string) bool {
	return businessIDPattern.MatchString(s)
}
