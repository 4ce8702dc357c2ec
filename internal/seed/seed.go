// Package seed generates deterministic demo companies for local development.
// It is driven only by the seed CLI command, never by the pipeline.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/heuristics"
	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/scoring"
	"github.com/sells-group/finprospect/internal/store"
)

var (
	nameStems = []string{
		"Konepaja", "Ohjelmisto", "Teräs", "Puu", "Elektroniikka", "Muovi",
		"Laite", "Palvelu", "Kuljetus", "Rakennus", "Elintarvike", "Kemia",
	}
	nameSuffixes = []string{"Oy", "Oy Ab", "Group Oy", "Finland Oy", "Solutions Oy"}

	industries = []string{
		"Metallituotteiden valmistus",
		"Ohjelmistokehitys ja valmistus",
		"Elintarvikkeiden valmistus",
		"Elektroniikkateollisuus",
		"Konsultointi ja liikkeenjohto",
		"Tukkukauppa",
		"Rakentaminen",
		"Logistiikka ja kuljetus",
		"Teknologiateollisuus",
		"Huolto- ja kunnossapitopalvelut",
	}

	cities = []string{
		"Helsinki", "Espoo", "Tampere", "Vantaa", "Oulu",
		"Turku", "Jyväskylä", "Lahti", "Kuopio", "Pori",
	}
)

// Generate produces count deterministic companies from the given seed. The
// same (seed, count) pair always yields the same aggregates.
func Generate(seed int64, count int) []model.Company {
	rng := rand.New(rand.NewSource(seed))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	companies := make([]model.Company, 0, count)
	for i := 0; i < count; i++ {
		stem := nameStems[rng.Intn(len(nameStems))]
		name := fmt.Sprintf("%s %s %s",
			stem, cities[rng.Intn(len(cities))], nameSuffixes[rng.Intn(len(nameSuffixes))])
		industryText := industries[rng.Intn(len(industries))]

		turnover := float64(rng.Intn(80_000)) * 1000 // 0..80M EUR
		employees := 1 + rng.Intn(400)
		exportShare := rng.Float64() * 0.6
		exportValue := turnover * exportShare

		c := model.Company{
			BusinessID:    fmt.Sprintf("%07d-%d", 1000000+rng.Intn(9000000), rng.Intn(10)),
			Name:          name,
			Industry:      heuristics.ClassifyIndustry(industryText),
			IndustryCode:  fmt.Sprintf("%02d%02d0", 10+rng.Intn(30), rng.Intn(100)),
			Street:        fmt.Sprintf("Teollisuuskatu %d", 1+rng.Intn(60)),
			PostalCode:    fmt.Sprintf("%05d", 100+rng.Intn(99000)),
			City:          cities[rng.Intn(len(cities))],
			Phone:         fmt.Sprintf("+358 %d %07d", 40+rng.Intn(10), rng.Intn(10000000)),
			Turnover:      &turnover,
			EmployeeCount: &employees,
		}

		years := 2 + rng.Intn(3)
		for y := 0; y < years; y++ {
			revenue := turnover * (0.85 + rng.Float64()*0.3)
			profit := revenue * (rng.Float64()*0.25 - 0.05)
			assets := revenue * (0.5 + rng.Float64())
			liabilities := assets * rng.Float64() * 0.9
			f := model.FinancialData{
				Year:        2024 - y,
				Revenue:     &revenue,
				Profit:      &profit,
				Assets:      &assets,
				Liabilities: &liabilities,
				Source:      "seed",
			}
			hs := scoring.YearHealthScore(f)
			f.HealthScore = &hs
			c.Financials = append(c.Financials, f)
		}

		analysis := scoring.Score(scoring.Input{
			IndustryText:  industryText,
			Turnover:      c.Turnover,
			EmployeeCount: c.EmployeeCount,
			ExportValue:   &exportValue,
			Financials:    c.Financials,
		}, now)
		c.Analysis = analysis
		c.ProductConfidenceScore = analysis.OverallScore
		c.HasOwnProducts = scoring.HasOwnProducts(analysis.OverallScore)

		if c.HasOwnProducts {
			c.Products = append(c.Products, model.Product{
				Name:          stem + "-sarja",
				Category:      c.Industry,
				IsMainProduct: true,
				Confidence:    analysis.OverallScore,
				Source:        "seed",
			})
		}

		companies = append(companies, c)
	}
	return companies
}

// Run writes count generated companies into the store.
func Run(ctx context.Context, st store.Store, seed int64, count int) error {
	if count <= 0 {
		return eris.New("seed: count must be positive")
	}

	companies := Generate(seed, count)
	for i := range companies {
		if err := st.UpsertCompany(ctx, &companies[i]); err != nil {
			return eris.Wrapf(err, "seed: persist %s", companies[i].BusinessID)
		}
	}

	zap.L().Info("seed: complete",
		zap.Int64("seed", seed),
		zap.Int("count", len(companies)),
	)
	return nil
}
