// internal/engine/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"scheme-advisor/internal/models"
)

const (
	selectSchemesQuery = `SELECT plan_id, plan_name, category, sub_category, provider_name, provider_type,
		interest_rate, tenure, min_investment, max_investment, risk_level, payout_frequency,
		tax_benefits, lock_in_period, eligibility, description, key_features
		FROM schemes ORDER BY display_order, plan_id`

	selectProvidersQuery = `SELECT name, logo, banner, official_url FROM providers`
)

// PostgresLoader reads the catalog from the schemes and providers tables.
// It only ever issues SELECTs.
type PostgresLoader struct {
	DB *sql.DB
}

func (l PostgresLoader) Name() string {
	return "postgres"
}

func (l PostgresLoader) Load(ctx context.Context) (*Source, error) {
	src := &Source{Providers: map[string]models.ProviderMeta{}}

	if err := l.loadSchemes(ctx, src); err != nil {
		return nil, err
	}
	if err := l.loadProviders(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

func (l PostgresLoader) loadSchemes(ctx context.Context, src *Source) error {
	rows, err := l.DB.QueryContext(ctx, selectSchemesQuery)
	if err != nil {
		return fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s                                         models.Scheme
			category, subCategory, providerType       sql.NullString
			interestRate, tenure, riskLevel, payout   sql.NullString
			taxBenefits, lockIn, eligibility, details sql.NullString
			features                                  sql.NullString
			minInv, maxInv                            sql.NullFloat64
		)
		if err := rows.Scan(
			&s.PlanID, &s.PlanName, &category, &subCategory, &s.ProviderName, &providerType,
			&interestRate, &tenure, &minInv, &maxInv, &riskLevel, &payout,
			&taxBenefits, &lockIn, &eligibility, &details, &features,
		); err != nil {
			return fmt.Errorf("scan scheme: %w", err)
		}

		s.Category = category.String
		s.SubCategory = subCategory.String
		s.ProviderType = providerType.String
		s.InterestRate = interestRate.String
		s.Tenure = tenure.String
		s.RiskLevel = riskLevel.String
		s.PayoutFrequency = payout.String
		s.TaxBenefits = taxBenefits.String
		s.LockInPeriod = lockIn.String
		s.Eligibility = eligibility.String
		s.Description = details.String
		if minInv.Valid {
			v := minInv.Float64
			s.MinInvestment = &v
		}
		if maxInv.Valid {
			v := maxInv.Float64
			s.MaxInvestment = &v
		}
		if features.Valid && features.String != "" {
			if err := json.Unmarshal([]byte(features.String), &s.KeyFeatures); err != nil {
				src.Warnings = append(src.Warnings, fmt.Sprintf("plan %q: key_features is not a JSON array: %v", s.PlanID, err))
				s.KeyFeatures = nil
			}
		}
		src.Schemes = append(src.Schemes, s)
	}
	return rows.Err()
}

func (l PostgresLoader) loadProviders(ctx context.Context, src *Source) error {
	rows, err := l.DB.QueryContext(ctx, selectProvidersQuery)
	if err != nil {
		return fmt.Errorf("query providers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name                     string
			logo, banner, officialURL sql.NullString
		)
		if err := rows.Scan(&name, &logo, &banner, &officialURL); err != nil {
			return fmt.Errorf("scan provider: %w", err)
		}
		src.Providers[name] = models.ProviderMeta{
			Logo:        logo.String,
			Banner:      banner.String,
			OfficialURL: officialURL.String,
		}
	}
	return rows.Err()
}
