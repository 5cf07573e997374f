// internal/engine/query/engine.go
package query

import (
	"context"
	"strings"
	"time"
	"unicode"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/observability"
	"scheme-advisor/internal/engine/catalog"
	"scheme-advisor/internal/engine/category"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/engine/scoring"
	"scheme-advisor/internal/engine/search"
	"scheme-advisor/internal/engine/tiebreak"
	"scheme-advisor/internal/models"
)

const (
	DefaultQueryLimit     = 12
	DefaultDataQueryLimit = 10
	minKeywordLen         = 3
)

type Options struct {
	// QueryLimit caps free-text results; 0 means unlimited.
	QueryLimit     int
	DataQueryLimit int
	// Index replaces the in-memory index for substring searches. The memory
	// index is still used when it fails.
	Index         search.Index
	Source        tiebreak.Source
	Observability *observability.Observability
}

// Engine answers every read operation against one immutable catalog. It is
// safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	memory   *search.MemoryIndex
	index    search.Index
	opts     Options
	log      logger.Logger
	handlers map[models.QueryType]dataQueryFunc
}

type FilterRequest struct {
	Amount          *float64 `json:"amount"`
	TenureYears     *float64 `json:"tenure"`
	PreferredPayout string   `json:"preferredPayout,omitempty"`
}

type FilterResult struct {
	LowRisk  []models.ScoredScheme `json:"lowRisk"`
	HighRisk []models.ScoredScheme `json:"highRisk"`
}

type CategoryResult struct {
	category.Info
	Items []models.ScoredScheme `json:"items"`
}

type Result struct {
	Prompt     string                `json:"prompt"`
	Signals    Signals               `json:"signals"`
	Items      []models.ScoredScheme `json:"items"`
	TotalFound int                   `json:"totalFound"`
}

type ProviderInfo struct {
	Name string `json:"name"`
	models.ProviderMeta
}

func NewEngine(cat *catalog.Catalog, opts Options, log logger.Logger) *Engine {
	if opts.DataQueryLimit <= 0 {
		opts.DataQueryLimit = DefaultDataQueryLimit
	}
	if opts.QueryLimit < 0 {
		opts.QueryLimit = DefaultQueryLimit
	}

	memory := search.NewMemoryIndex(cat.All())
	e := &Engine{
		catalog: cat,
		memory:  memory,
		index:   opts.Index,
		opts:    opts,
		log:     log.WithFields(map[string]interface{}{"component": "query-engine"}),
	}
	if e.index == nil {
		e.index = memory
	}
	e.handlers = e.dataQueryHandlers()
	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// All returns every scheme in catalog order, enriched.
func (e *Engine) All(ctx context.Context) []models.ScoredScheme {
	start := time.Now()
	out := e.catalog.EnrichAll(e.catalog.All())
	e.observe(ctx, "all", start, nil, len(out))
	return out
}

// Filter ranks the eligible schemes for an amount and tenure.
func (e *Engine) Filter(ctx context.Context, req FilterRequest) (res *FilterResult, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "filter", start, err, resultCount(res)) }()

	if req.Amount == nil || *req.Amount <= 0 {
		return nil, apperrors.NewInvalidAmountError("Investment amount and tenure are required.")
	}
	if req.TenureYears == nil || *req.TenureYears <= 0 {
		return nil, apperrors.NewInvalidTenureError("Investment amount and tenure are required.")
	}

	low, high := scoring.Rank(*req.Amount, *req.TenureYears,
		scoring.Preferences{PreferredPayout: req.PreferredPayout}, e.catalog.All(), e.opts.Source)
	return &FilterResult{LowRisk: e.enrich(low), HighRisk: e.enrich(high)}, nil
}

// Category ranks the schemes of one slug. Unknown slugs yield no items.
func (e *Engine) Category(ctx context.Context, slug string) *CategoryResult {
	start := time.Now()

	info, ok := category.Lookup(slug)
	if !ok {
		e.log.Debug("unknown category slug", map[string]interface{}{"slug": slug})
		e.observe(ctx, "category", start, nil, 0)
		return &CategoryResult{Info: category.Info{Slug: category.Slug(slug)}, Items: []models.ScoredScheme{}}
	}
	items := e.enrich(category.Rank(info.Slug, e.catalog.All()))
	e.observe(ctx, "category", start, nil, len(items))
	return &CategoryResult{Info: info, Items: items}
}

// Lookup returns one enriched scheme, or RESOURCE_NOT_FOUND.
func (e *Engine) Lookup(ctx context.Context, planID string) (res models.ScoredScheme, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "lookup", start, err, 1) }()

	planID = strings.TrimSpace(planID)
	if planID == "" {
		return models.ScoredScheme{}, apperrors.NewInvalidPlanIDError("plan id is required")
	}
	n, ok := e.catalog.Get(planID)
	if !ok {
		return models.ScoredScheme{}, apperrors.NewResourceNotFoundError("scheme", planID)
	}
	return e.catalog.Enrich(n), nil
}

// Provider returns a provider's branding metadata by name, or RESOURCE_NOT_FOUND.
func (e *Engine) Provider(ctx context.Context, name string) (res ProviderInfo, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "provider", start, err, 1) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return ProviderInfo{}, apperrors.NewEmptyQueryError("bankName")
	}
	meta, ok := e.catalog.Provider(name)
	if !ok {
		return ProviderInfo{}, apperrors.NewResourceNotFoundError("bank", name)
	}
	return ProviderInfo{Name: name, ProviderMeta: meta}, nil
}

// Search is the plain substring search over the searchable text.
func (e *Engine) Search(ctx context.Context, term string, limit int) (res []models.ScoredScheme, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "search", start, err, len(res)) }()

	if strings.TrimSpace(term) == "" {
		return nil, apperrors.NewEmptyQueryError("query")
	}
	return e.resolve(e.searchIDs(ctx, term, limit)), nil
}

// Query interprets a free-text prompt. Scored matches come first, then
// category matches, then text matches, each scheme at most once. The
// category path also runs when amount and tenure were given but nothing
// scored survived the risk filter.
func (e *Engine) Query(ctx context.Context, prompt string) (res *Result, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Items)
		}
		e.observe(ctx, "query", start, err, n)
	}()

	if strings.TrimSpace(prompt) == "" {
		return nil, apperrors.NewEmptyQueryError("prompt")
	}

	sig := ExtractSignals(prompt)
	ranked := e.rankBySignals(sig)

	found := e.searchIDs(ctx, prompt, 0)
	if len(found) == 0 {
		found = e.memory.SearchAny(ctx, keywords(prompt), 0)
	}

	merged := mergeUnique(ranked, e.resolve(found))
	total := len(merged)
	if limit := e.opts.QueryLimit; limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	e.log.Debug("query interpreted", map[string]interface{}{
		"hasAmount": sig.Amount != nil,
		"hasTenure": sig.TenureYears != nil,
		"category":  string(sig.Category),
		"risk":      string(sig.Risk),
		"found":     total,
	})
	return &Result{Prompt: prompt, Signals: sig, Items: e.enrich(merged), TotalFound: total}, nil
}

func (e *Engine) rankBySignals(sig Signals) []models.ScoredScheme {
	var ranked []models.ScoredScheme

	if sig.Amount != nil && sig.TenureYears != nil {
		low, high := scoring.Rank(*sig.Amount, *sig.TenureYears,
			scoring.Preferences{PreferredPayout: sig.PreferredPayout}, e.catalog.All(), e.opts.Source)
		for _, s := range append(low, high...) {
			if matchesRisk(s, sig.Risk) {
				ranked = append(ranked, s)
			}
		}
	}

	if len(ranked) == 0 && sig.Category != "" {
		ranked = category.Rank(sig.Category, e.catalog.All())
	}
	return ranked
}

func matchesRisk(s models.ScoredScheme, risk models.RiskIntent) bool {
	switch risk {
	case models.RiskLow:
		return s.IsLowRisk
	case models.RiskHigh:
		return !s.IsLowRisk
	default:
		return true
	}
}

// searchIDs uses the configured index and falls back to the memory index
// when the remote one fails.
func (e *Engine) searchIDs(ctx context.Context, term string, limit int) []string {
	ids, err := e.index.Search(ctx, term, limit)
	if err == nil {
		return ids
	}
	e.log.Warn("search index failed, using in-memory index", map[string]interface{}{"error": err.Error()})
	ids, _ = e.memory.Search(ctx, term, limit)
	return ids
}

// resolve maps plan IDs back to catalog entries, dropping unknown IDs.
func (e *Engine) resolve(ids []string) []models.ScoredScheme {
	out := make([]models.ScoredScheme, 0, len(ids))
	for _, id := range ids {
		if n, ok := e.catalog.Get(id); ok {
			out = append(out, models.ScoredScheme{NormalizedScheme: n})
		}
	}
	return out
}

// enrich fills in provider metadata while keeping any score already set.
func (e *Engine) enrich(in []models.ScoredScheme) []models.ScoredScheme {
	out := make([]models.ScoredScheme, len(in))
	for i, s := range in {
		enriched := e.catalog.Enrich(s.NormalizedScheme)
		enriched.Score = s.Score
		enriched.CategoryScore = s.CategoryScore
		out[i] = enriched
	}
	return out
}

func mergeUnique(lists ...[]models.ScoredScheme) []models.ScoredScheme {
	seen := map[string]bool{}
	out := []models.ScoredScheme{}
	for _, list := range lists {
		for _, s := range list {
			if seen[s.PlanID] {
				continue
			}
			seen[s.PlanID] = true
			out = append(out, s)
		}
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "want": true, "need": true,
	"invest": true, "investment": true, "investing": true, "looking": true, "best": true,
	"good": true, "plan": true, "plans": true, "scheme": true, "schemes": true,
	"year": true, "years": true, "yrs": true, "month": true, "months": true,
	"lakh": true, "lakhs": true, "crore": true, "crores": true, "thousand": true,
	"about": true, "which": true, "what": true, "some": true, "from": true, "into": true,
	"that": true, "this": true, "have": true, "like": true, "please": true, "suggest": true,
	"show": true, "give": true, "options": true, "option": true, "can": true, "you": true,
	"are": true, "any": true, "money": true, "put": true, "get": true, "how": true,
}

// keywords splits a prompt into folded words worth searching for on their own.
func keywords(prompt string) []string {
	words := strings.FieldsFunc(fields.Fold(prompt), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minKeywordLen || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func resultCount(r *FilterResult) int {
	if r == nil {
		return 0
	}
	return len(r.LowRisk) + len(r.HighRisk)
}

func (e *Engine) observe(ctx context.Context, op string, start time.Time, err error, n int) {
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusError
		n = 0
	}
	e.opts.Observability.RecordOperation(ctx, op, status, time.Since(start), n)
}
