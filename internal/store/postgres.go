package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/finprospect/internal/model"
)

// PgxPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgres connects to the given DSN and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id                       BIGSERIAL PRIMARY KEY,
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
	turnover                 DOUBLE PRECISION,
	employee_count           INTEGER,
	has_own_products         BOOLEAN NOT NULL DEFAULT FALSE,
	product_confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	registration_date        TIMESTAMPTZ,
	last_verified            TIMESTAMPTZ,
	created_at               TIMESTAMPTZ NOT NULL,
	updated_at               TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id              BIGSERIAL PRIMARY KEY,
	company_id      BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	is_main_product BOOLEAN NOT NULL DEFAULT FALSE,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	source          TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS financials (
	id           BIGSERIAL PRIMARY KEY,
	company_id   BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	year         INTEGER NOT NULL,
	revenue      DOUBLE PRECISION,
	profit       DOUBLE PRECISION,
	assets       DOUBLE PRECISION,
	liabilities  DOUBLE PRECISION,
	health_score DOUBLE PRECISION,
	source       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	UNIQUE(company_id, year)
);

CREATE TABLE IF NOT EXISTS contacts (
	id                BIGSERIAL PRIMARY KEY,
	company_id        BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	role              TEXT NOT NULL DEFAULT '',
	is_decision_maker BOOLEAN NOT NULL DEFAULT FALSE,
	email             TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL,
	UNIQUE(company_id, name)
);

CREATE TABLE IF NOT EXISTS ownership_analyses (
	id                 BIGSERIAL PRIMARY KEY,
	company_id         BIGINT NOT NULL UNIQUE REFERENCES companies(id) ON DELETE CASCADE,
	industry_score     DOUBLE PRECISION NOT NULL,
	export_score       DOUBLE PRECISION NOT NULL,
	company_size_score DOUBLE PRECISION NOT NULL,
	financial_score    DOUBLE PRECISION NOT NULL,
	patent_score       DOUBLE PRECISION NOT NULL,
	overall_score      DOUBLE PRECISION NOT NULL,
	reasoning          TEXT NOT NULL DEFAULT '',
	algorithm_version  TEXT NOT NULL DEFAULT '',
	analyzed_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_turnover ON companies(turnover);
CREATE INDEX IF NOT EXISTS idx_companies_has_own_products ON companies(has_own_products);
CREATE INDEX IF NOT EXISTS idx_products_company_id ON products(company_id);
CREATE INDEX IF NOT EXISTS idx_financials_company_id ON financials(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgCompanyColumns = `id, business_id, name, industry, industry_code, street, postal_code, city,
	phone, email, website, turnover, employee_count, has_own_products, product_confidence_score,
	registration_date, last_verified, created_at, updated_at`

func (s *PostgresStore) GetCompany(ctx context.Context, businessID string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgCompanyColumns+` FROM companies WHERE business_id = $1`, businessID)

	c, err := scanPgCompany(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", businessID)
	}

	if err := s.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) loadChildren(ctx context.Context, c *model.Company) error {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, description, category, is_main_product, confidence, source, created_at
		 FROM products WHERE company_id = $1 ORDER BY confidence DESC, name`, c.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: load products")
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Category,
			&p.IsMainProduct, &p.Confidence, &p.Source, &p.CreatedAt); err != nil {
			return eris.Wrap(err, "postgres: scan product")
		}
		c.Products = append(c.Products, p)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "postgres: iterate products")
	}

	frows, err := s.pool.Query(ctx,
		`SELECT id, company_id, year, revenue, profit, assets, liabilities, health_score, source, created_at, updated_at
		 FROM financials WHERE company_id = $1 ORDER BY year`, c.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: load financials")
	}
	defer frows.Close()
	for frows.Next() {
		var f model.FinancialData
		if err := frows.Scan(&f.ID, &f.CompanyID, &f.Year, &f.Revenue, &f.Profit, &f.Assets,
			&f.Liabilities, &f.HealthScore, &f.Source, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return eris.Wrap(err, "postgres: scan financial")
		}
		c.Financials = append(c.Financials, f)
	}
	if err := frows.Err(); err != nil {
		return eris.Wrap(err, "postgres: iterate financials")
	}

	crows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, role, is_decision_maker, email, phone, source, created_at
		 FROM contacts WHERE company_id = $1 ORDER BY name`, c.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: load contacts")
	}
	defer crows.Close()
	for crows.Next() {
		var ct model.Contact
		if err := crows.Scan(&ct.ID, &ct.CompanyID, &ct.Name, &ct.Role, &ct.IsDecisionMaker,
			&ct.Email, &ct.Phone, &ct.Source, &ct.CreatedAt); err != nil {
			return eris.Wrap(err, "postgres: scan contact")
		}
		c.Contacts = append(c.Contacts, ct)
	}
	if err := crows.Err(); err != nil {
		return eris.Wrap(err, "postgres: iterate contacts")
	}

	arow := s.pool.QueryRow(ctx,
		`SELECT id, company_id, industry_score, export_score, company_size_score, financial_score,
		        patent_score, overall_score, reasoning, algorithm_version, analyzed_at
		 FROM ownership_analyses WHERE company_id = $1`, c.ID)
	var a model.OwnershipAnalysis
	err = arow.Scan(&a.ID, &a.CompanyID, &a.IndustryScore, &a.ExportScore, &a.CompanySizeScore,
		&a.FinancialScore, &a.PatentScore, &a.OverallScore, &a.Reasoning, &a.AlgorithmVersion, &a.AnalyzedAt)
	if err == nil {
		c.Analysis = &a
	} else if err != pgx.ErrNoRows {
		return eris.Wrap(err, "postgres: load analysis")
	}

	return nil
}

func (s *PostgresStore) UpsertCompany(ctx context.Context, c *model.Company) error {
	if c.BusinessID == "" || c.Name == "" {
		return eris.New("postgres: business id and name are required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err = tx.QueryRow(ctx, `
		INSERT INTO companies (business_id, name, industry, industry_code, street, postal_code, city,
			phone, email, website, turnover, employee_count, has_own_products, product_confidence_score,
			registration_date, last_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (business_id) DO UPDATE SET
			name = EXCLUDED.name,
			industry = EXCLUDED.industry,
			industry_code = EXCLUDED.industry_code,
			street = EXCLUDED.street,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			turnover = EXCLUDED.turnover,
			employee_count = EXCLUDED.employee_count,
			has_own_products = EXCLUDED.has_own_products,
			product_confidence_score = EXCLUDED.product_confidence_score,
			registration_date = EXCLUDED.registration_date,
			last_verified = EXCLUDED.last_verified,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		c.BusinessID, c.Name, c.Industry, c.IndustryCode, c.Street, c.PostalCode, c.City,
		c.Phone, c.Email, c.Website, c.Turnover, c.EmployeeCount, c.HasOwnProducts,
		c.ProductConfidenceScore, c.RegistrationDate, c.LastVerified, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert company %s", c.BusinessID)
	}

	for i := range c.Financials {
		f := &c.Financials[i]
		f.CompanyID = c.ID
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		f.UpdatedAt = now
		_, err = tx.Exec(ctx, `
			INSERT INTO financials (company_id, year, revenue, profit, assets, liabilities, health_score, source, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (company_id, year) DO UPDATE SET
				revenue = EXCLUDED.revenue,
				profit = EXCLUDED.profit,
				assets = EXCLUDED.assets,
				liabilities = EXCLUDED.liabilities,
				health_score = EXCLUDED.health_score,
				source = EXCLUDED.source,
				updated_at = EXCLUDED.updated_at`,
			f.CompanyID, f.Year, f.Revenue, f.Profit, f.Assets, f.Liabilities, f.HealthScore, f.Source, f.CreatedAt, f.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert financial year %d", f.Year)
		}
	}

	for i := range c.Products {
		p := &c.Products[i]
		p.CompanyID = c.ID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO products (company_id, name, description, category, is_main_product, confidence, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (company_id, name) DO UPDATE SET
				description = EXCLUDED.description,
				category = EXCLUDED.category,
				is_main_product = EXCLUDED.is_main_product,
				confidence = EXCLUDED.confidence,
				source = EXCLUDED.source`,
			p.CompanyID, p.Name, p.Description, p.Category, p.IsMainProduct, p.Confidence, p.Source, p.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert product %s", p.Name)
		}
	}

	for i := range c.Contacts {
		ct := &c.Contacts[i]
		ct.CompanyID = c.ID
		if ct.CreatedAt.IsZero() {
			ct.CreatedAt = now
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO contacts (company_id, name, role, is_decision_maker, email, phone, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (company_id, name) DO UPDATE SET
				role = EXCLUDED.role,
				is_decision_maker = EXCLUDED.is_decision_maker,
				email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				source = EXCLUDED.source`,
			ct.CompanyID, ct.Name, ct.Role, ct.IsDecisionMaker, ct.Email, ct.Phone, ct.Source, ct.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert contact %s", ct.Name)
		}
	}

	if c.Analysis != nil {
		a := c.Analysis
		a.CompanyID = c.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO ownership_analyses (company_id, industry_score, export_score, company_size_score,
				financial_score, patent_score, overall_score, reasoning, algorithm_version, analyzed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (company_id) DO UPDATE SET
				industry_score = EXCLUDED.industry_score,
				export_score = EXCLUDED.export_score,
				company_size_score = EXCLUDED.company_size_score,
				financial_score = EXCLUDED.financial_score,
				patent_score = EXCLUDED.patent_score,
				overall_score = EXCLUDED.overall_score,
				reasoning = EXCLUDED.reasoning,
				algorithm_version = EXCLUDED.algorithm_version,
				analyzed_at = EXCLUDED.analyzed_at`,
			a.CompanyID, a.IndustryScore, a.ExportScore, a.CompanySizeScore, a.FinancialScore,
			a.PatentScore, a.OverallScore, a.Reasoning, a.AlgorithmVersion, a.AnalyzedAt,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: upsert analysis")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) QueryCompanies(ctx context.Context, f Filter) (*Page, error) {
	where, args := buildFilter(f, dollarPlaceholder)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "postgres: count companies")
	}

	limit, offset := pageBounds(f)
	args = append(args, limit)
	limitPh := dollarPlaceholder(len(args))
	args = append(args, offset)
	offsetPh := dollarPlaceholder(len(args))

	query := `SELECT ` + pgCompanyColumns + ` FROM companies` + where +
		` ORDER BY ` + orderClause(f) + ` LIMIT ` + limitPh + ` OFFSET ` + offsetPh

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query companies")
	}
	defer rows.Close()

	page := &Page{Total: total}
	for rows.Next() {
		c, err := scanPgCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		page.Companies = append(page.Companies, *c)
	}
	return page, eris.Wrap(rows.Err(), "postgres: iterate companies")
}

func scanPgCompany(row pgx.Row) (*model.Company, error) {
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
