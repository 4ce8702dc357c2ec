// Package export writes company query results to an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/store"
)

const pageSize = 200

var headers = []string{
	"Business ID", "Name", "Industry", "City", "Turnover (EUR)",
	"Employees", "Has Own Products", "Confidence", "Last Verified",
}

// Write queries every matching company and writes one summary row each.
// Rows are ordered with Finnish collation so ä/ö sort after z, the way a
// Finnish reader expects.
func Write(ctx context.Context, st store.Store, f store.Filter, path string) (int, error) {
	var all []model.Company
	f.Page = 1
	f.PageSize = pageSize
	for {
		page, err := st.QueryCompanies(ctx, f)
		if err != nil {
			return 0, eris.Wrap(err, "export: query companies")
		}
		all = append(all, page.Companies...)
		if len(all) >= page.Total || len(page.Companies) == 0 {
			break
		}
		f.Page++
	}

	coll := collate.New(language.Finnish)
	sort.SliceStable(all, func(i, j int) bool {
		return coll.CompareString(all[i].Name, all[j].Name) < 0
	})

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Companies")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, c := range all {
		row := sheet.AddRow()
		row.AddCell().SetString(c.BusinessID)
		row.AddCell().SetString(c.Name)
		row.AddCell().SetString(c.Industry)
		row.AddCell().SetString(c.City)
		if c.Turnover != nil {
			row.AddCell().SetFloat(*c.Turnover)
		} else {
			row.AddCell().SetString("")
		}
		if c.EmployeeCount != nil {
			row.AddCell().SetInt(*c.EmployeeCount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(fmt.Sprintf("%t", c.HasOwnProducts))
		row.AddCell().SetFloat(c.ProductConfidenceScore)
		if c.LastVerified != nil {
			row.AddCell().SetString(c.LastVerified.Format("2006-01-02"))
		} else {
			row.AddCell().SetString("")
		}
	}

	if err := file.Save(path); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("export: complete",
		zap.String("path", path),
		zap.Int("companies", len(all)),
	)
	return len(all), nil
}
