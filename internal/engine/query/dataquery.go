// internal/engine/query/dataquery.go
package query

import (
	"context"
	"strings"
	"time"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// OverviewTotal is the totalFound value reported for the overview type.
const OverviewTotal = "overview"

type DataResult struct {
	Query     string           `json:"query"`
	QueryType models.QueryType `json:"queryType"`
	// Results is a []models.ScoredScheme or, for the overview type, a
	// models.CatalogOverview.
	Results    interface{} `json:"results"`
	TotalFound interface{} `json:"totalFound"`
}

type dataQueryFunc func(ctx context.Context, query string) []models.ScoredScheme

func (e *Engine) dataQueryHandlers() map[models.QueryType]dataQueryFunc {
	return map[models.QueryType]dataQueryFunc{
		models.QueryTypeSearch: func(ctx context.Context, q string) []models.ScoredScheme {
			return e.resolve(e.searchIDs(ctx, q, 0))
		},
		models.QueryTypeCategory: e.filterBy(func(n models.NormalizedScheme, q string) bool {
			return fields.Fold(n.Category) == q || fields.Fold(n.SubCategory) == q
		}),
		models.QueryTypeBank: e.filterBy(func(n models.NormalizedScheme, q string) bool {
			return strings.Contains(fields.Fold(n.ProviderName), q)
		}),
		models.QueryTypeRisk: e.filterBy(func(n models.NormalizedScheme, q string) bool {
			return fields.Fold(n.RiskLevel) == q
		}),
		models.QueryTypeTenure: e.filterBy(matchesTenureBucket),
	}
}

func (e *Engine) filterBy(match func(n models.NormalizedScheme, folded string) bool) dataQueryFunc {
	return func(_ context.Context, q string) []models.ScoredScheme {
		folded := fields.Fold(strings.TrimSpace(q))
		out := []models.ScoredScheme{}
		for _, n := range e.catalog.All() {
			if match(n, folded) {
				out = append(out, models.ScoredScheme{NormalizedScheme: n})
			}
		}
		return out
	}
}

var tenureBuckets = []struct {
	aliases  []string
	mentions []string
}{
	{[]string{"short", "1 year", "1-2"}, []string{"1 year", "2 year", "short"}},
	{[]string{"medium", "3-5"}, []string{"3 year", "4 year", "5 year"}},
	{[]string{"long", "5+"}, []string{"5 year", "10 year", "long"}},
}

// matchesTenureBucket maps a loose tenure request onto mentions in the
// scheme's tenure text. Requests outside the known buckets match nothing.
func matchesTenureBucket(n models.NormalizedScheme, folded string) bool {
	tenure := fields.Fold(n.Tenure)
	for _, b := range tenureBuckets {
		if !containsAny(folded, b.aliases) {
			continue
		}
		return containsAny(tenure, b.mentions)
	}
	return false
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// DataQuery answers the assistant's structured lookups. Unknown or empty
// types return the catalog overview.
func (e *Engine) DataQuery(ctx context.Context, queryType models.QueryType, q string) (res *DataResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			if items, ok := res.Results.([]models.ScoredScheme); ok {
				n = len(items)
			}
		}
		e.observe(ctx, "data-query", start, err, n)
	}()

	if strings.TrimSpace(q) == "" {
		return nil, apperrors.NewEmptyQueryError("query")
	}
	if queryType == "" {
		queryType = models.QueryTypeAll
	}

	handler, ok := e.handlers[queryType]
	if !ok {
		return &DataResult{
			Query:      q,
			QueryType:  queryType,
			Results:    e.catalog.Overview(),
			TotalFound: OverviewTotal,
		}, nil
	}

	items := handler(ctx, q)
	if len(items) > e.opts.DataQueryLimit {
		items = items[:e.opts.DataQueryLimit]
	}
	items = e.enrich(items)
	return &DataResult{Query: q, QueryType: queryType, Results: items, TotalFound: len(items)}, nil
}
