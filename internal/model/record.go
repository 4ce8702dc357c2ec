package model

import "time"

// SourceRecord is the shared intermediate shape every source client
// normalizes into. Missing optional fields stay nil — never a zero
// sentinel standing in for "unknown".
type SourceRecord struct {
	Source     string `json:"source"`
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`

	IndustryText string `json:"industry_text,omitempty"`
	IndustryCode string `json:"industry_code,omitempty"`

	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	Turnover      *float64 `json:"turnover,omitempty"`
	EmployeeCount *int     `json:"employee_count,omitempty"`

	// ExportValue is only supplied by the tax/export source.
	ExportValue *float64 `json:"export_value,omitempty"`

	RegistrationDate *time.Time `json:"registration_date,omitempty"`

	FinancialYears []FinancialYear `json:"financial_years,omitempty"`
	Products       []ProductHint   `json:"products,omitempty"`
}

// FinancialYear is one fiscal year as reported by a source.
type FinancialYear struct {
	Year        int      `json:"year"`
	Revenue     *float64 `json:"revenue,omitempty"`
	Profit      *float64 `json:"profit,omitempty"`
	Assets      *float64 `json:"assets,omitempty"`
	Liabilities *float64 `json:"liabilities,omitempty"`
}

// ProductHint is a product mention as reported by a source.
type ProductHint struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Confidence  float64 `json:"confidence"`
}
