package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/finprospect/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id              TEXT NOT NULL UNIQUE,
	name                     TEXT NOT NULL,
	industry                 TEXT NOT NULL DEFAULT '',
	industry_code            TEXT NOT NULL DEFAULT '',
	street                   TEXT NOT NULL DEFAULT '',
	postal_code              TEXT NOT NULL DEFAULT '',
	city                     TEXT NOT NULL DEFAULT '',
	phone                    TEXT NOT NULL DEFAULT '',
	email                    TEXT NOT NULL DEFAULT '',
	website                  TEXT NOT NULL DEFAULT '',
	turnover                 REAL,
	employee_count           INTEGER,
	has_own_products         INTEGER NOT NULL DEFAULT 0,
	product_confidence_score REAL NOT NULL DEFAULT 0,
	registration_date        DATETIME,
	last_verified            DATETIME,
	created_at               DATETIME NOT NULL,
	updated_at               DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id      INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	is_main_product INTEGER NOT NULL DEFAULT 0,
	confidence      REAL NOT NULL DEFAULT 0,
	source          TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS financials (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id   INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	year         INTEGER NOT NULL,
	revenue      REAL,
	profit       REAL,
	assets       REAL,
	liabilities  REAL,
	health_score REAL,
	source       TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	UNIQUE(company_id, year)
);

CREATE TABLE IF NOT EXISTS contacts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id        INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	role              TEXT NOT NULL DEFAULT '',
	is_decision_maker INTEGER NOT NULL DEFAULT 0,
	email             TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS ownership_analyses (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id        INTEGER NOT NULL UNIQUE REFERENCES companies(id) ON DELETE CASCADE,
	industry_score    REAL NOT NULL,
	export_score      REAL NOT NULL,
	company_size_score REAL NOT NULL,
	financial_score   REAL NOT NULL,
	patent_score      REAL NOT NULL,
	overall_score     REAL NOT NULL,
	reasoning         TEXT NOT NULL DEFAULT '',
	algorithm_version TEXT NOT NULL DEFAULT '',
	analyzed_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_turnover ON companies(turnover);
CREATE INDEX IF NOT EXISTS idx_companies_has_own_products ON companies(has_own_products);
CREATE INDEX IF NOT EXISTS idx_products_company_id ON products(company_id);
CREATE INDEX IF NOT EXISTS idx_financials_company_id ON financials(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteCompanyColumns = `id, business_id, name, industry, industry_code, street, postal_code, city,
	phone, email, website, turnover, employee_count, has_own_products, product_confidence_score,
	registration_date, last_verified, created_at, updated_at`

func (s *SQLiteStore) GetCompany(ctx context.Context, businessID string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteCompanyColumns+` FROM companies WHERE business_id = ?`, businessID)

	c, err := scanSQLiteCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", businessID)
	}

	if err := s.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLiteStore) loadChildren(ctx context.Context, c *model.Company) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, name, description, category, is_main_product, confidence, source, created_at
		 FROM products WHERE company_id = ? ORDER BY confidence DESC, name`, c.ID)
	if err != nil {
		return eris.Wrap(err, "sqlite: load products")
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Category,
			&p.IsMainProduct, &p.Confidence, &p.Source, &p.CreatedAt); err != nil {
			return eris.Wrap(err, "sqlite: scan product")
		}
		c.Products = append(c.Products, p)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: iterate products")
	}

	frows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, year, revenue, profit, assets, liabilities, health_score, source, created_at, updated_at
		 FROM financials WHERE company_id = ? ORDER BY year`, c.ID)
	if err != nil {
		return eris.Wrap(err, "sqlite: load financials")
	}
	defer frows.Close()
	for frows.Next() {
		var f model.FinancialData
		if err := frows.Scan(&f.ID, &f.CompanyID, &f.Year, &f.Revenue, &f.Profit, &f.Assets,
			&f.Liabilities, &f.HealthScore, &f.Source, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return eris.Wrap(err, "sqlite: scan financial")
		}
		c.Financials = append(c.Financials, f)
	}
	if err := frows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: iterate financials")
	}

	crows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, name, role, is_decision_maker, email, phone, source, created_at
		 FROM contacts WHERE company_id = ? ORDER BY name`, c.ID)
	if err != nil {
		return eris.Wrap(err, "sqlite: load contacts")
	}
	defer crows.Close()
	for crows.Next() {
		var ct model.Contact
		if err := crows.Scan(&ct.ID, &ct.CompanyID, &ct.Name, &ct.Role, &ct.IsDecisionMaker,
			&ct.Email, &ct.Phone, &ct.Source, &ct.CreatedAt); err != nil {
			return eris.Wrap(err, "sqlite: scan contact")
		}
		c.Contacts = append(c.Contacts, ct)
	}
	if err := crows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: iterate contacts")
	}

	arow := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, industry_score, export_score, company_size_score, financial_score,
		        patent_score, overall_score, reasoning, algorithm_version, analyzed_at
		 FROM ownership_analyses WHERE company_id = ?`, c.ID)
	var a model.OwnershipAnalysis
	err = arow.Scan(&a.ID, &a.CompanyID, &a.IndustryScore, &a.ExportScore, &a.CompanySizeScore,
		&a.FinancialScore, &a.PatentScore, &a.OverallScore, &a.Reasoning, &a.AlgorithmVersion, &a.AnalyzedAt)
	if err == nil {
		c.Analysis = &a
	} else if err != sql.ErrNoRows {
		return eris.Wrap(err, "sqlite: load analysis")
	}

	return nil
}

// UpsertCompany writes the aggregate in one transaction: parent row keyed by
// business id, financials by (company, year), products and contacts by name,
// analysis replaced.
func (s *SQLiteStore) UpsertCompany(ctx context.Context, c *model.Company) error {
	if c.BusinessID == "" || c.Name == "" {
		return eris.New("sqlite: business id and name are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO companies (business_id, name, industry, industry_code, street, postal_code, city,
			phone, email, website, turnover, employee_count, has_own_products, product_confidence_score,
			registration_date, last_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(business_id) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			industry_code = excluded.industry_code,
			street = excluded.street,
			postal_code = excluded.postal_code,
			city = excluded.city,
			phone = excluded.phone,
			email = excluded.email,
			website = excluded.website,
			turnover = excluded.turnover,
			employee_count = excluded.employee_count,
			has_own_products = excluded.has_own_products,
			product_confidence_score = excluded.product_confidence_score,
			registration_date = excluded.registration_date,
			last_verified = excluded.last_verified,
			updated_at = excluded.updated_at`,
		c.BusinessID, c.Name, c.Industry, c.IndustryCode, c.Street, c.PostalCode, c.City,
		c.Phone, c.Email, c.Website, c.Turnover, c.EmployeeCount, c.HasOwnProducts,
		c.ProductConfidenceScore, c.RegistrationDate, c.LastVerified, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert company %s", c.BusinessID)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM companies WHERE business_id = ?`, c.BusinessID).Scan(&c.ID); err != nil {
		return eris.Wrap(err, "sqlite: read company id")
	}

	for i := range c.Financials {
		f := &c.Financials[i]
		f.CompanyID = c.ID
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		f.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO financials (company_id, year, revenue, profit, assets, liabilities, health_score, source, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id, year) DO UPDATE SET
				revenue = excluded.revenue,
				profit = excluded.profit,
				assets = excluded.assets,
				liabilities = excluded.liabilities,
				health_score = excluded.health_score,
				source = excluded.source,
				updated_at = excluded.updated_at`,
			f.CompanyID, f.Year, f.Revenue, f.Profit, f.Assets, f.Liabilities, f.HealthScore, f.Source, f.CreatedAt, f.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert financial year %d", f.Year)
		}
	}

	for i := range c.Products {
		p := &c.Products[i]
		p.CompanyID = c.ID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (company_id, name, description, category, is_main_product, confidence, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id, name) DO UPDATE SET
				description = excluded.description,
				category = excluded.category,
				is_main_product = excluded.is_main_product,
				confidence = excluded.confidence,
				source = excluded.source`,
			p.CompanyID, p.Name, p.Description, p.Category, p.IsMainProduct, p.Confidence, p.Source, p.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert product %s", p.Name)
		}
	}

	for i := range c.Contacts {
		ct := &c.Contacts[i]
		ct.CompanyID = c.ID
		if ct.CreatedAt.IsZero() {
			ct.CreatedAt = now
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contacts (company_id, name, role, is_decision_maker, email, phone, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id, name) DO UPDATE SET
				role = excluded.role,
				is_decision_maker = excluded.is_decision_maker,
				email = excluded.email,
				phone = excluded.phone,
				source = excluded.source`,
			ct.CompanyID, ct.Name, ct.Role, ct.IsDecisionMaker, ct.Email, ct.Phone, ct.Source, ct.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert contact %s", ct.Name)
		}
	}

	if c.Analysis != nil {
		a := c.Analysis
		a.CompanyID = c.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ownership_analyses (company_id, industry_score, export_score, company_size_score,
				financial_score, patent_score, overall_score, reasoning, algorithm_version, analyzed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(company_id) DO UPDATE SET
				industry_score = excluded.industry_score,
				export_score = excluded.export_score,
				company_size_score = excluded.company_size_score,
				financial_score = excluded.financial_score,
				patent_score = excluded.patent_score,
				overall_score = excluded.overall_score,
				reasoning = excluded.reasoning,
				algorithm_version = excluded.algorithm_version,
				analyzed_at = excluded.analyzed_at`,
			a.CompanyID, a.IndustryScore, a.ExportScore, a.CompanySizeScore, a.FinancialScore,
			a.PatentScore, a.OverallScore, a.Reasoning, a.AlgorithmVersion, a.AnalyzedAt,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: upsert analysis")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) QueryCompanies(ctx context.Context, f Filter) (*Page, error) {
	where, args := buildFilter(f, questionPlaceholder)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "sqlite: count companies")
	}

	query := `SELECT ` + sqliteCompanyColumns + ` FROM companies` + where +
		` ORDER BY ` + orderClause(f) + ` LIMIT ? OFFSET ?`
	limit, offset := pageBounds(f)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query companies")
	}
	defer rows.Close()

	page := &Page{Total: total}
	for rows.Next() {
		c, err := scanSQLiteCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		page.Companies = append(page.Companies, *c)
	}
	return page, eris.Wrap(rows.Err(), "sqlite: iterate companies")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteCompany(row scannable) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Industry, &c.IndustryCode,
		&c.Street, &c.PostalCode, &c.City, &c.Phone, &c.Email, &c.Website,
		&c.Turnover, &c.EmployeeCount, &c.HasOwnProducts, &c.ProductConfidenceScore,
		&c.RegistrationDate, &c.LastVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
