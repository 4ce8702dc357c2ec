package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/model"
)

const prhDefaultBaseURL = "https://avoindata.prh.fi/bis/v1"

// PRHClient reads the Finnish business information system (PRH/YTJ open
// data), the primary registry and most reliable source for name, address and
// registration facts.
type PRHClient struct {
	httpSource
}

// NewPRH creates the PRH client. hc may be nil; overrides from cfg apply on
// top of the built-in defaults.
func NewPRH(cfg SourceConfig, hc *http.Client) *PRHClient {
	base, rank, rps, burst := cfg.apply(prhDefaultBaseURL, RankPRH, 2, 2)
	return &PRHClient{newHTTPSource(SourcePRH, rank, base, hc, rateLimit(rps), burst)}
}

type prhResponse struct {
	Results []prhCompany `json:"results"`
}

type prhCompany struct {
	BusinessID       string `json:"businessId"`
	Name             string `json:"name"`
	RegistrationDate string `json:"registrationDate"`
	CompanyForm      string `json:"companyForm"`
	BusinessLines    []struct {
		Name     string `json:"name"`
		Language string `json:"language"`
	} `json:"businessLines"`
	Addresses []struct {
		Street   string `json:"street"`
		PostCode string `json:"postCode"`
		City     string `json:"city"`
	} `json:"addresses"`
	ContactDetails []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"contactDetails"`
}

// FetchByID looks up one company by business id. Returns (nil, nil) when the
// registry has no record.
func (c *PRHClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	var resp prhResponse
	err := c.getJSON(ctx, "/"+url.PathEscape(businessID), nil, &resp)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	rec := mapPRHCompany(resp.Results[0])
	return &rec, nil
}

// Search queries the registry by company name.
func (c *PRHClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	var resp prhResponse
	params := url.Values{
		"name":       {query},
		"maxResults": {strconv.Itoa(50)},
	}
	err := c.getJSON(ctx, "", params, &resp)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]model.SourceRecord, 0, len(resp.Results))
	for _, pc := range resp.Results {
		records = append(records, mapPRHCompany(pc))
	}
	return records, nil
}

func mapPRHCompany(pc prhCompany) model.SourceRecord {
	rec := model.SourceRecord{
		Source:     SourcePRH,
		BusinessID: pc.BusinessID,
		Name:       pc.Name,
	}

	// Prefer the Finnish business line; fall back to whatever is listed first.
	for _, bl := range pc.BusinessLines {
		if bl.Language == "FI" {
			rec.IndustryText = bl.Name
			break
		}
	}
	if rec.IndustryText == "" && len(pc.BusinessLines) > 0 {
		rec.IndustryText = pc.BusinessLines[0].Name
	}

	if len(pc.Addresses) > 0 {
		rec.Street = pc.Addresses[0].Street
		rec.PostalCode = pc.Addresses[0].PostCode
		rec.City = pc.Addresses[0].City
	}

	for _, cd := range pc.ContactDetails {
		switch cd.Type {
		case "Matkapuhelin", "Puhelin", "phone":
			if rec.Phone == "" {
				rec.Phone = cd.Value
			}
		case "Kotisivun www-osoite", "website":
			if rec.Website == "" {
				rec.Website = cd.Value
			}
		case "Sähköposti", "email":
			if rec.Email == "" {
				rec.Email = cd.Value
			}
		}
	}

	if pc.RegistrationDate != "" {
		if t, err := time.Parse("2006-01-02", pc.RegistrationDate); err == nil {
			rec.RegistrationDate = &t
		} else {
			zap.L().Debug("prh: unparseable registration date",
				zap.String("business_id", pc.BusinessID),
				zap.String("value", pc.RegistrationDate),
			)
		}
	}

	return rec
}
