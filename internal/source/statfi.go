package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sells-group/finprospect/internal/model"
)

const statFiDefaultBaseURL = "https://data.stat.fi/api/companies/v1"

// StatFiClient reads Statistics Finland's company register: employee counts
// and TOL 2008 industry codes.
type StatFiClient struct {
	httpSource
}

// NewStatFi creates the statistics office client.
func NewStatFi(cfg SourceConfig, hc *http.Client) *StatFiClient {
	base, rank, rps, burst := cfg.apply(statFiDefaultBaseURL, RankStatFi, 2, 2)
	return &StatFiClient{newHTTPSource(SourceStatFi, rank, base, hc, rateLimit(rps), burst)}
}

type statFiCompany struct {
	BusinessID string `json:"businessId"`
	Name       string `json:"name"`
	TolCode    string `json:"tolCode"`
	TolText    string `json:"tolText"`
	Personnel  *int   `json:"personnel"`
	Address    struct {
		Street     string `json:"street"`
		PostalCode string `json:"postalCode"`
		City       string `json:"city"`
	} `json:"address"`
}

type statFiSearchResponse struct {
	Companies []statFiCompany `json:"companies"`
}

// FetchByID looks up one company in the statistical register.
func (c *StatFiClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	var sc statFiCompany
	err := c.getJSON(ctx, "/"+url.PathEscape(businessID), nil, &sc)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sc.BusinessID == "" {
		return nil, nil
	}
	rec := mapStatFiCompany(sc)
	return &rec, nil
}

// Search queries the register by name.
func (c *StatFiClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	var resp statFiSearchResponse
	err := c.getJSON(ctx, "", url.Values{"name": {query}}, &resp)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]model.SourceRecord, 0, len(resp.Companies))
	for _, sc := range resp.Companies {
		records = append(records, mapStatFiCompany(sc))
	}
	return records, nil
}

func mapStatFiCompany(sc statFiCompany) model.SourceRecord {
	return model.SourceRecord{
		Source:        SourceStatFi,
		BusinessID:    sc.BusinessID,
		Name:          sc.Name,
		IndustryText:  sc.TolText,
		IndustryCode:  sc.TolCode,
		Street:        sc.Address.Street,
		PostalCode:    sc.Address.PostalCode,
		City:          sc.Address.City,
		EmployeeCount: sc.Personnel,
	}
}
