package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sells-group/finprospect/internal/model"
)

const nordicDefaultBaseURL = "https://api.nordicfirms.eu/v2"

// NordicClient reads a commercial Nordic company aggregator. Broad coverage
// including product catalogs and web presence, but lowest reliability rank —
// its values never overwrite registry data.
type NordicClient struct {
	httpSource
}

// NewNordic creates the aggregator client.
func NewNordic(cfg SourceConfig, hc *http.Client) *NordicClient {
	base, rank, rps, burst := cfg.apply(nordicDefaultBaseURL, RankNordic, 5, 5)
	return &NordicClient{newHTTPSource(SourceNordic, rank, base, hc, rateLimit(rps), burst)}
}

type nordicCompany struct {
	OrgNumber  string   `json:"orgNumber"`
	LegalName  string   `json:"legalName"`
	Industry   string   `json:"industry"`
	Website    string   `json:"website"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Employees  *int     `json:"employees"`
	RevenueEur *float64 `json:"revenueEur"`
	Address    struct {
		Street string `json:"street"`
		Zip    string `json:"zip"`
		City   string `json:"city"`
	} `json:"address"`
	Products []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	} `json:"products"`
}

type nordicSearchResponse struct {
	Hits []nordicCompany `json:"hits"`
}

// FetchByID looks up one company by Finnish business id.
func (c *NordicClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	var nc nordicCompany
	err := c.getJSON(ctx, "/companies/"+url.PathEscape(businessID), url.Values{"country": {"FI"}}, &nc)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if nc.OrgNumber == "" {
		return nil, nil
	}
	rec := mapNordicCompany(nc)
	return &rec, nil
}

// Search queries the aggregator's free-text index.
func (c *NordicClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	var resp nordicSearchResponse
	err := c.getJSON(ctx, "/search", url.Values{"q": {query}, "country": {"FI"}}, &resp)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]model.SourceRecord, 0, len(resp.Hits))
	for _, nc := range resp.Hits {
		records = append(records, mapNordicCompany(nc))
	}
	return records, nil
}

func mapNordicCompany(nc nordicCompany) model.SourceRecord {
	rec := model.SourceRecord{
		Source:        SourceNordic,
		BusinessID:    nc.OrgNumber,
		Name:          nc.LegalName,
		IndustryText:  nc.Industry,
		Website:       nc.Website,
		Email:         nc.Email,
		Phone:         nc.Phone,
		Street:        nc.Address.Street,
		PostalCode:    nc.Address.Zip,
		City:          nc.Address.City,
		Turnover:      nc.RevenueEur,
		EmployeeCount: nc.Employees,
	}
	for _, p := range nc.Products {
		rec.Products = append(rec.Products, model.ProductHint{
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Confidence:  0.6, // aggregator catalog entries are unverified
		})
	}
	return rec
}
