package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sells-group/finprospect/internal/model"
)

const veroDefaultBaseURL = "https://avoinomadata.vero.fi/export/v1"

// VeroClient reads the tax administration's export and financial statement
// data. It is the only source supplying export value and fiscal-year figures.
type VeroClient struct {
	httpSource
}

// NewVero creates the tax/export client.
func NewVero(cfg SourceConfig, hc *http.Client) *VeroClient {
	base, rank, rps, burst := cfg.apply(veroDefaultBaseURL, RankVero, 2, 2)
	return &VeroClient{newHTTPSource(SourceVero, rank, base, hc, rateLimit(rps), burst)}
}

type veroCompany struct {
	BusinessID  string   `json:"businessId"`
	Name        string   `json:"name"`
	Turnover    *float64 `json:"turnover"`
	ExportValue *float64 `json:"exportValue"`
	FiscalYears []struct {
		Year        int      `json:"year"`
		Revenue     *float64 `json:"revenue"`
		Profit      *float64 `json:"profit"`
		Assets      *float64 `json:"assets"`
		Liabilities *float64 `json:"liabilities"`
	} `json:"fiscalYears"`
}

type veroSearchResponse struct {
	Companies []veroCompany `json:"companies"`
}

// FetchByID looks up export and financial data for one business id.
func (c *VeroClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	var vc veroCompany
	err := c.getJSON(ctx, "/companies/"+url.PathEscape(businessID), nil, &vc)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if vc.BusinessID == "" {
		return nil, nil
	}
	rec := mapVeroCompany(vc)
	return &rec, nil
}

// Search queries by company name.
func (c *VeroClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	var resp veroSearchResponse
	err := c.getJSON(ctx, "/companies", url.Values{"name": {query}}, &resp)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]model.SourceRecord, 0, len(resp.Companies))
	for _, vc := range resp.Companies {
		records = append(records, mapVeroCompany(vc))
	}
	return records, nil
}

func mapVeroCompany(vc veroCompany) model.SourceRecord {
	rec := model.SourceRecord{
		Source:      SourceVero,
		BusinessID:  vc.BusinessID,
		Name:        vc.Name,
		Turnover:    vc.Turnover,
		ExportValue: vc.ExportValue,
	}
	for _, fy := range vc.FiscalYears {
		rec.FinancialYears = append(rec.FinancialYears, model.FinancialYear{
			Year:        fy.Year,
			Revenue:     fy.Revenue,
			Profit:      fy.Profit,
			Assets:      fy.Assets,
			Liabilities: fy.Liabilities,
		})
	}
	return rec
}
