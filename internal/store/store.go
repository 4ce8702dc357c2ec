// Package store persists company aggregates. Two implementations share one
// interface: Postgres for deployments, SQLite for local runs — selected by
// the store.driver config key.
package store

import (
	"context"

	"github.com/sells-group/finprospect/internal/model"
)

// SortField names a sortable column for company queries.
type SortField string

const (
	SortByName      SortField = "name"
	SortByTurnover  SortField = "turnover"
	SortByIndustry  SortField = "industry"
	SortByLocation  SortField = "location"
	SortByEmployees SortField = "employees"
)

// Filter specifies criteria for querying companies.
type Filter struct {
	MinTurnover    *float64  `json:"min_turnover,omitempty"`
	MaxTurnover    *float64  `json:"max_turnover,omitempty"`
	HasOwnProducts *bool     `json:"has_own_products,omitempty"`
	Industry       string    `json:"industry,omitempty"` // substring match
	Location       string    `json:"location,omitempty"` // substring match on city or street
	Page           int       `json:"page,omitempty"`     // 1-based
	PageSize       int       `json:"page_size,omitempty"`
	SortBy         SortField `json:"sort_by,omitempty"`
	SortDesc       bool      `json:"sort_desc,omitempty"`
}

// Page is one page of company summaries plus the total match count.
type Page struct {
	Companies []model.Company `json:"companies"`
	Total     int             `json:"total"`
}

// Store is the persistence interface for company aggregates.
type Store interface {
	// GetCompany loads the full aggregate (children included) by business id.
	// Returns (nil, nil) when no company exists.
	GetCompany(ctx context.Context, businessID string) (*model.Company, error)

	// UpsertCompany inserts or updates the aggregate. The parent row and all
	// child upserts (financials by year, products by name, contacts by name,
	// analysis replace) commit atomically.
	UpsertCompany(ctx context.Context, c *model.Company) error

	// QueryCompanies returns a page of company summaries matching the filter,
	// with the total count for pagination.
	QueryCompanies(ctx context.Context, f Filter) (*Page, error)

	Migrate(ctx context.Context) error
	Close() error
}
