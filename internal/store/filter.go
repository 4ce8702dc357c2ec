package store

import (
	"fmt"
	"strings"
)

// DefaultPageSize bounds queries that do not specify one.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

type placeholderFunc func(n int) string

func questionPlaceholder(int) string { return "?" }
func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// buildFilter renders the WHERE clause for a company filter. The same logic
// serves both drivers; only the placeholder style differs.
func buildFilter(f Filter, ph placeholderFunc) (string, []any) {
	var conds []string
	var args []any
	next := func() string {
		return ph(len(args))
	}

	if f.MinTurnover != nil {
		args = append(args, *f.MinTurnover)
		conds = append(conds, "turnover >= "+next())
	}
	if f.MaxTurnover != nil {
		args = append(args, *f.MaxTurnover)
		conds = append(conds, "turnover <= "+next())
	}
	if f.HasOwnProducts != nil {
		args = append(args, *f.HasOwnProducts)
		conds = append(conds, "has_own_products = "+next())
	}
	if f.Industry != "" {
		args = append(args, "%"+strings.ToLower(f.Industry)+"%")
		conds = append(conds, "LOWER(industry) LIKE "+next())
	}
	if f.Location != "" {
		pattern := "%" + strings.ToLower(f.Location) + "%"
		args = append(args, pattern)
		city := next()
		args = append(args, pattern)
		street := next()
		conds = append(conds, "(LOWER(city) LIKE "+city+" OR LOWER(street) LIKE "+street+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause maps a sort field to its column expression. Unknown fields fall
// back to name so caller input can never reach the SQL string.
func orderClause(f Filter) string {
	col := "name"
	switch f.SortBy {
	case SortByTurnover:
		col = "turnover"
	case SortByIndustry:
		col = "industry"
	case SortByLocation:
		col = "city"
	case SortByEmployees:
		col = "employee_count"
	case SortByName, "":
		col = "name"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	// NULL turnover/employee rows sort last either direction.
	if col == "turnover" || col == "employee_count" {
		return fmt.Sprintf("%s IS NULL, %s %s, name ASC", col, col, dir)
	}
	return fmt.Sprintf("%s %s, business_id ASC", col, dir)
}

// pageBounds converts 1-based page/size into LIMIT/OFFSET, clamping the size.
func pageBounds(f Filter) (limit, offset int) {
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}
