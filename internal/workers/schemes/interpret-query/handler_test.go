// internal/workers/schemes/interpret-query/handler_test.go
package interpretquery

import (
	"context"
	goerrors "errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/engine/catalog"
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func ptr(v float64) *float64 { return &v }

func newEngine() *query.Engine {
	cat := catalog.New([]models.Scheme{
		{PlanID: "SCSS", PlanName: "Senior Citizens Savings Scheme", Category: "Savings Scheme",
			ProviderName: "India Post", ProviderType: "Government", InterestRate: "8.2%", Tenure: "5 years",
			MinInvestment: ptr(1000), RiskLevel: "Low", PayoutFrequency: "Quarterly"},
		{PlanID: "FD", PlanName: "Fixed Deposit", Category: "Fixed Deposit", ProviderName: "SBI",
			ProviderType: "Public Sector Bank", InterestRate: "7%", Tenure: "1-3 Years", MinInvestment: ptr(1000), RiskLevel: "Low"},
	}, nil)
	return query.NewEngine(cat, query.Options{Source: rand.New(rand.NewPCG(5, 6))}, logger.NewNoOpLogger())
}

type failingEngine struct{}

func (failingEngine) Query(context.Context, string) (*query.Result, error) {
	return nil, goerrors.New("index exploded")
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_ScoredPrompt(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, newEngine(), &testLogger{t: t})

	out, err := h.Execute(context.Background(), &Input{Prompt: "safe place for 2 lakh over 2 years"})
	require.NoError(t, err)

	require.NotNil(t, out.Signals.Amount)
	assert.Equal(t, 200000.0, *out.Signals.Amount)
	assert.Equal(t, models.RiskLow, out.Signals.Risk)
	require.True(t, out.HasResults)
	assert.Equal(t, "FD", out.Items[0].PlanID)
	assert.NotNil(t, out.Items[0].Score)
}

func TestExecute_CategoryPrompt(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, newEngine(), &testLogger{t: t})

	out, err := h.Execute(context.Background(), &Input{Prompt: "plans for senior parents"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Items)
	assert.Equal(t, "SCSS", out.Items[0].PlanID)
	assert.Equal(t, len(out.Items), out.TotalFound)
}

func TestExecute_EmptyPrompt(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, newEngine(), &testLogger{t: t})

	_, err := h.Execute(context.Background(), &Input{Prompt: ""})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEmptyQuery, stdErr.Code)
}

func TestExecute_UnexpectedErrorBecomesInternal(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, failingEngine{}, &testLogger{t: t})

	_, err := h.Execute(context.Background(), &Input{Prompt: "anything"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.Normalize(err).Code)
}
