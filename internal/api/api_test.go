// internal/api/api_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-advisor/internal/cache"
	"scheme-advisor/internal/common/config"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/engine/catalog"
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func f(v float64) *float64 { return &v }

func testEngine(t *testing.T) *query.Engine {
	t.Helper()
	schemes := []models.Scheme{
		{
			PlanID: "SBI-FD", PlanName: "SBI Fixed Deposit", Category: "Fixed Deposit", SubCategory: "Term Deposit",
			ProviderName: "SBI", ProviderType: "Public Sector Bank", InterestRate: "7.00%", Tenure: "1-3 Years",
			MinInvestment: f(1000), RiskLevel: "Low", PayoutFrequency: "Quarterly",
		},
		{
			PlanID: "HDFC-EQ", PlanName: "HDFC Flexi Cap Fund", Category: "Mutual Fund", SubCategory: "Equity",
			ProviderName: "HDFC Bank", ProviderType: "Private Sector Bank", InterestRate: "12-15%", Tenure: "1 to 10 years",
			MinInvestment: f(500), RiskLevel: "High", Description: "Monthly SIP in diversified equity",
		},
		{
			PlanID: "SCSS", PlanName: "Senior Citizens Savings Scheme", Category: "Savings Scheme",
			ProviderName: "India Post", ProviderType: "Government", InterestRate: "8.2%", Tenure: "5 years",
			MinInvestment: f(1000), MaxInvestment: f(3000000), RiskLevel: "Low", PayoutFrequency: "Quarterly",
			Description: "Regular income for retirees",
		},
		{
			PlanID: "AXIS-RD", PlanName: "Axis Recurring Deposit", Category: "Recurring Deposit",
			ProviderName: "Axis Bank", ProviderType: "Private Sector Bank", InterestRate: "6.5%", Tenure: "6 months to 10 years",
			MinInvestment: f(100), RiskLevel: "Low", PayoutFrequency: "On maturity",
		},
		{
			PlanID: "GOLD-BOND", PlanName: "Sovereign Gold Bond", Category: "Bond",
			ProviderName: "RBI", ProviderType: "Government", InterestRate: "2.5%", Tenure: "8 years",
			MinInvestment: f(6000), RiskLevel: "Moderate", PayoutFrequency: "Half-yearly",
			Description: "Gold linked returns",
		},
	}
	providers := map[string]models.ProviderMeta{
		"SBI": {Logo: "/logos/sbi.png", Banner: "/banners/sbi.jpg", OfficialURL: "https://sbi.co.in"},
	}
	return query.NewEngine(catalog.New(schemes, providers), query.Options{
		QueryLimit:     query.DefaultQueryLimit,
		DataQueryLimit: query.DefaultDataQueryLimit,
		Source:         rand.New(rand.NewPCG(1, 2)),
	}, logger.NewTestLogger(t))
}

func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Engine == nil {
		deps.Engine = testEngine(t)
	}
	cfg := config.ServerConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		RequestTimeout: 5000,
	}
	return NewRouter(deps, cfg, logger.NewTestLogger(t))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, code, body["error"])
	assert.NotEmpty(t, body["message"])
}

func ids(t *testing.T, raw interface{}) []string {
	t.Helper()
	list, ok := raw.([]interface{})
	require.True(t, ok, "expected array, got %T", raw)
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.(map[string]interface{})["plan_id"].(string)
	}
	return out
}

// countingEngine counts the calls that are served through the cache.
type countingEngine struct {
	SchemeEngine
	categoryCalls int
	lookupCalls   int
}

func (c *countingEngine) Category(ctx context.Context, slug string) *query.CategoryResult {
	c.categoryCalls++
	return c.SchemeEngine.Category(ctx, slug)
}

func (c *countingEngine) Lookup(ctx context.Context, planID string) (models.ScoredScheme, error) {
	c.lookupCalls++
	return c.SchemeEngine.Lookup(ctx, planID)
}

// ==========================
// Probes
// ==========================

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, Dependencies{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestReady(t *testing.T) {
	ready := do(t, newTestRouter(t, Dependencies{}), http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, ready.Code)
	assert.Equal(t, "ready", decode(t, ready)["status"])

	failing := newTestRouter(t, Dependencies{Ready: func(context.Context) error {
		return errors.New("redis: connection refused")
	}})
	rec := do(t, failing, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "redis: connection refused", decode(t, rec)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestRouter(t, Dependencies{}), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scheme_catalog_schemes")
}

// ==========================
// Schemes
// ==========================

func TestListSchemes(t *testing.T) {
	rec := do(t, newTestRouter(t, Dependencies{}), http.MethodGet, "/api/schemes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 5)
	assert.Equal(t, "SBI-FD", list[0]["plan_id"])
	assert.Equal(t, "/logos/sbi.png", list[0]["provider_logo"])
	assert.Nil(t, list[1]["provider_logo"])
}

func TestFilterSchemes(t *testing.T) {
	rec := do(t, newTestRouter(t, Dependencies{}), http.MethodGet, "/api/schemes/filter?minInvestment=150000&tenure=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.ElementsMatch(t, []string{"SBI-FD", "AXIS-RD"}, ids(t, body["lowRisk"]))
	assert.Equal(t, []string{"HDFC-EQ"}, ids(t, body["highRisk"]))

	first := body["lowRisk"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, first, "score")
}

func TestFilterSchemes_Validation(t *testing.T) {
	router := newTestRouter(t, Dependencies{})
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing everything", "", "INVALID_AMOUNT"},
		{"missing tenure", "?minInvestment=1000", "INVALID_TENURE"},
		{"non numeric amount", "?minInvestment=lots&tenure=2", "INVALID_AMOUNT"},
		{"non numeric tenure", "?minInvestment=1000&tenure=long", "INVALID_TENURE"},
		{"zero amount", "?minInvestment=0&tenure=2", "INVALID_AMOUNT"},
		{"negative tenure", "?minInvestment=1000&tenure=-1", "INVALID_TENURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/schemes/filter"+tt.query, "")
			requireError(t, rec, http.StatusBadRequest, tt.code)
		})
	}
}

func TestCategorySchemes(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodGet, "/api/schemes/category/smart-investment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "smart-investment", body["slug"])
	assert.Equal(t, "Smart Investment", body["title"])
	assert.Equal(t, []string{"HDFC-EQ"}, ids(t, body["items"]))

	unknown := do(t, router, http.MethodGet, "/api/schemes/category/crypto", "")
	require.Equal(t, http.StatusOK, unknown.Code)
	ub := decode(t, unknown)
	assert.Equal(t, "crypto", ub["slug"])
	assert.Empty(t, ids(t, ub["items"]))
}

func TestGetScheme(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodGet, "/api/schemes/SCSS", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Senior Citizens Savings Scheme", decode(t, rec)["plan_name"])

	requireError(t, do(t, router, http.MethodGet, "/api/schemes/NOPE", ""), http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

func TestQuerySchemes(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodPost, "/api/schemes/query", `{"prompt":"tell me about gold"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "tell me about gold", body["prompt"])
	assert.Equal(t, []string{"GOLD-BOND"}, ids(t, body["items"]))
	assert.EqualValues(t, 1, body["totalFound"])
	assert.Contains(t, body, "signals")
}

func TestQuerySchemes_BadBodies(t *testing.T) {
	router := newTestRouter(t, Dependencies{})
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty prompt", `{"prompt":""}`, "INVALID_REQUEST_BODY"},
		{"missing prompt", `{}`, "INVALID_REQUEST_BODY"},
		{"not json", `prompt=gold`, "INVALID_REQUEST_BODY"},
		{"blank prompt", `{"prompt":"   "}`, "EMPTY_QUERY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/schemes/query", tt.body)
			requireError(t, rec, http.StatusBadRequest, tt.code)
		})
	}
}

// ==========================
// Assistant data
// ==========================

func TestQueryData(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodPost, "/api/ai-data/query-data", `{"query":"SBI","queryType":"bank"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "SBI", body["query"])
	assert.Equal(t, "bank", body["queryType"])
	assert.Equal(t, []string{"SBI-FD"}, ids(t, body["results"]))
	assert.EqualValues(t, 1, body["totalFound"])
}

func TestQueryData_Overview(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodPost, "/api/ai-data/query-data", `{"query":"anything"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "all", body["queryType"])
	assert.Equal(t, "overview", body["totalFound"])
	overview := body["results"].(map[string]interface{})
	assert.EqualValues(t, 5, overview["totalSchemes"])
}

func TestQueryData_Validation(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	requireError(t, do(t, router, http.MethodPost, "/api/ai-data/query-data", `{"queryType":"bank"}`),
		http.StatusBadRequest, "INVALID_REQUEST_BODY")
	requireError(t, do(t, router, http.MethodPost, "/api/ai-data/query-data", `{"query":"x","queryType":"weather"}`),
		http.StatusBadRequest, "INVALID_REQUEST_BODY")
}

func TestSchemeAndBankDetails(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	rec := do(t, router, http.MethodGet, "/api/ai-data/scheme/SBI-FD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "SBI-FD", body["scheme"].(map[string]interface{})["plan_id"])

	rec = do(t, router, http.MethodGet, "/api/ai-data/bank/SBI", "")
	require.Equal(t, http.StatusOK, rec.Code)
	bank := decode(t, rec)["bank"].(map[string]interface{})
	assert.Equal(t, "SBI", bank["name"])
	assert.Equal(t, "/logos/sbi.png", bank["logo"])
	assert.Equal(t, "https://sbi.co.in", bank["official_url"])

	requireError(t, do(t, router, http.MethodGet, "/api/ai-data/scheme/NOPE", ""), http.StatusNotFound, "RESOURCE_NOT_FOUND")
	requireError(t, do(t, router, http.MethodGet, "/api/ai-data/bank/Unknown", ""), http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// ==========================
// Response cache
// ==========================

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, time.Minute, "schemes:", logger.NewTestLogger(t)), mr
}

func TestCategorySchemes_Cached(t *testing.T) {
	c, mr := newTestCache(t)
	engine := &countingEngine{SchemeEngine: testEngine(t)}
	router := newTestRouter(t, Dependencies{Engine: engine, Cache: c})

	first := do(t, router, http.MethodGet, "/api/schemes/category/smart-investment", "")
	second := do(t, router, http.MethodGet, "/api/schemes/category/smart-investment", "")

	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, engine.categoryCalls)
	assert.True(t, mr.Exists(c.Key("category", "smart-investment")))
}

func TestGetScheme_NotFoundIsNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	engine := &countingEngine{SchemeEngine: testEngine(t)}
	router := newTestRouter(t, Dependencies{Engine: engine, Cache: c})

	for i := 0; i < 2; i++ {
		requireError(t, do(t, router, http.MethodGet, "/api/schemes/NOPE", ""), http.StatusNotFound, "RESOURCE_NOT_FOUND")
	}
	assert.Equal(t, 2, engine.lookupCalls)
	assert.False(t, mr.Exists(c.Key("scheme", "NOPE")))

	do(t, router, http.MethodGet, "/api/schemes/SCSS", "")
	do(t, router, http.MethodGet, "/api/schemes/SCSS", "")
	assert.Equal(t, 3, engine.lookupCalls)
}

func TestQueryData_CacheDownStillAnswers(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	c := cache.New(client, time.Minute, "schemes:", logger.NewTestLogger(t))
	router := newTestRouter(t, Dependencies{Cache: c})

	rec := do(t, router, http.MethodPost, "/api/ai-data/query-data", `{"query":"low","queryType":"risk"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"SBI-FD", "SCSS", "AXIS-RD"}, ids(t, decode(t, rec)["results"]))
}
