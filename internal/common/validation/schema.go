// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "scheme-advisor/internal/common/errors"
)

// SchemaName identifies one of the documents the service accepts.
type SchemaName string

const (
	SchemeRecord     SchemaName = "scheme-record"
	QueryRequest     SchemaName = "query-request"
	DataQueryRequest SchemaName = "data-query-request"
	AdviceRequest    SchemaName = "advice-request"
	ChatRequest      SchemaName = "chat-request"
)

var definitions = map[SchemaName]map[string]interface{}{
	SchemeRecord: {
		"type":     "object",
		"required": []interface{}{"plan_id", "plan_name", "provider_name"},
		"properties": map[string]interface{}{
			"plan_id":          map[string]interface{}{"type": "string", "minLength": 1},
			"plan_name":        map[string]interface{}{"type": "string", "minLength": 1},
			"category":         map[string]interface{}{"type": "string"},
			"sub_category":     map[string]interface{}{"type": "string"},
			"provider_name":    map[string]interface{}{"type": "string", "minLength": 1},
			"provider_type":    map[string]interface{}{"type": "string"},
			"interest_rate":    map[string]interface{}{"type": "string"},
			"tenure":           map[string]interface{}{"type": "string"},
			"min_investment":   map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0},
			"max_investment":   map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0},
			"risk_level":       map[string]interface{}{"type": "string"},
			"payout_frequency": map[string]interface{}{"type": "string"},
			"key_features": map[string]interface{}{
				"type":  []interface{}{"array", "null"},
				"items": map[string]interface{}{"type": "string"},
			},
		},
	},
	QueryRequest: {
		"type":     "object",
		"required": []interface{}{"prompt"},
		"properties": map[string]interface{}{
			"prompt": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 2000},
		},
	},
	DataQueryRequest: {
		"type":     "object",
		"required": []interface{}{"query"},
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 500},
			"queryType": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"", "search", "category", "bank", "risk", "tenure", "all"},
			},
		},
	},
	AdviceRequest: {
		"type":     "object",
		"required": []interface{}{"prompt"},
		"properties": map[string]interface{}{
			"prompt": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 4000},
		},
	},
	ChatRequest: {
		"type":     "object",
		"required": []interface{}{"message"},
		"properties": map[string]interface{}{
			"message": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 4000},
			"conversationHistory": map[string]interface{}{
				"type":     []interface{}{"array", "null"},
				"maxItems": 50,
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"role", "content"},
					"properties": map[string]interface{}{
						"role":    map[string]interface{}{"type": "string", "enum": []interface{}{"user", "assistant", "model"}},
						"content": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    map[SchemaName]*gojsonschema.Schema
	compileErr  error
)

func schemas() (map[SchemaName]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[SchemaName]*gojsonschema.Schema, len(definitions))
		for name, def := range definitions {
			s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Problems validates doc against the named schema and lists every violation.
// An empty slice means the document is valid.
func Problems(name SchemaName, doc interface{}) ([]string, error) {
	all, err := schemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return problems, nil
}

// Validate returns an INVALID_REQUEST_BODY error when doc does not satisfy
// the named schema.
func Validate(name SchemaName, doc interface{}) error {
	problems, err := Problems(name, doc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if len(problems) > 0 {
		return apperrors.NewInvalidRequestBodyError(strings.Join(problems, "; "))
	}
	return nil
}
