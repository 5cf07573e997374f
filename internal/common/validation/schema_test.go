// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scheme-advisor/internal/common/errors"
)

func TestValidate_QueryRequest(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]interface{}
		wantErr bool
	}{
		{"valid prompt", map[string]interface{}{"prompt": "safe FD for 2 years"}, false},
		{"missing prompt", map[string]interface{}{}, true},
		{"empty prompt", map[string]interface{}{"prompt": ""}, true},
		{"wrong type", map[string]interface{}{"prompt": 42}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(QueryRequest, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidRequestBody, stdErr.Code)
			assert.NotEmpty(t, stdErr.Details)
		})
	}
}

func TestValidate_DataQueryRequest(t *testing.T) {
	assert.NoError(t, Validate(DataQueryRequest, map[string]interface{}{"query": "sbi", "queryType": "bank"}))
	assert.NoError(t, Validate(DataQueryRequest, map[string]interface{}{"query": "sbi"}))
	assert.Error(t, Validate(DataQueryRequest, map[string]interface{}{"query": "sbi", "queryType": "weather"}))
}

func TestProblems_SchemeRecord(t *testing.T) {
	valid := map[string]interface{}{
		"plan_id":        "SBI-FD-01",
		"plan_name":      "SBI Fixed Deposit",
		"provider_name":  "SBI",
		"min_investment": 1000.0,
		"max_investment": nil,
		"key_features":   []interface{}{"Loan against deposit"},
	}
	problems, err := Problems(SchemeRecord, valid)
	require.NoError(t, err)
	assert.Empty(t, problems)

	invalid := map[string]interface{}{
		"plan_name":      "Nameless",
		"min_investment": "one thousand",
	}
	problems, err = Problems(SchemeRecord, invalid)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(problems), 2)
}

func TestProblems_UnknownSchema(t *testing.T) {
	_, err := Problems(SchemaName("nope"), map[string]interface{}{})
	assert.Error(t, err)
}

func TestValidate_ChatRequest(t *testing.T) {
	assert.NoError(t, Validate(ChatRequest, map[string]interface{}{"message": "hi"}))
	assert.NoError(t, Validate(ChatRequest, map[string]interface{}{
		"message": "and quarterly?",
		"conversationHistory": []interface{}{
			map[string]interface{}{"role": "user", "content": "monthly income"},
			map[string]interface{}{"role": "assistant", "content": "Try MIS."},
		},
	}))
	assert.Error(t, Validate(ChatRequest, map[string]interface{}{
		"message":             "hi",
		"conversationHistory": []interface{}{map[string]interface{}{"role": "system", "content": "x"}},
	}))
	assert.Error(t, Validate(ChatRequest, map[string]interface{}{"prompt": "hi"}))
}
