// internal/engine/search/elastic.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// maxResultWindow is the Elasticsearch default index.max_result_window, used
// as the page size for unlimited searches when the catalog size is unknown.
const maxResultWindow = 10000

var searchFields = []string{"plan_name", "category", "sub_category", "provider_name", "description", "key_features"}

// ElasticIndex runs substring searches against an Elasticsearch index that
// mirrors the catalog.
type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
	// docs is the number of schemes the last IndexCatalog call wrote.
	docs atomic.Int64
}

func NewElasticIndex(client *elasticsearch.Client, index string) *ElasticIndex {
	return &ElasticIndex{client: client, index: index}
}

type indexedScheme struct {
	PlanID       string   `json:"plan_id"`
	PlanName     string   `json:"plan_name"`
	Category     string   `json:"category"`
	SubCategory  string   `json:"sub_category"`
	ProviderName string   `json:"provider_name"`
	Description  string   `json:"description"`
	KeyFeatures  []string `json:"key_features"`
	Position     int      `json:"position"`
}

// EnsureIndex creates the index with keyword mappings when it does not exist.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{e.index}}.Do(ctx, e.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(e.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("exists check: %s", res.Status()))
	}

	props := map[string]interface{}{
		"plan_id":  map[string]interface{}{"type": "keyword"},
		"position": map[string]interface{}{"type": "integer"},
	}
	for _, f := range searchFields {
		props[f] = map[string]interface{}{"type": "keyword"}
	}
	body, err := json.Marshal(map[string]interface{}{
		"mappings": map[string]interface{}{"properties": props},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	res, err = esapi.IndicesCreateRequest{Index: e.index, Body: bytes.NewReader(body)}.Do(ctx, e.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("create index: %s", res.Status()))
	}
	return nil
}

// IndexCatalog bulk-indexes every scheme keyed by plan_id.
func (e *ElasticIndex) IndexCatalog(ctx context.Context, schemes []models.NormalizedScheme) error {
	if len(schemes) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, n := range schemes {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": e.index, "_id": n.PlanID}}
		doc := indexedScheme{
			PlanID:       n.PlanID,
			PlanName:     fields.Fold(n.PlanName),
			Category:     fields.Fold(n.Category),
			SubCategory:  fields.Fold(n.SubCategory),
			ProviderName: fields.Fold(n.ProviderName),
			Description:  fields.Fold(n.Description),
			Position:     i,
		}
		for _, f := range n.KeyFeatures {
			doc.KeyFeatures = append(doc.KeyFeatures, fields.Fold(f))
		}
		if err := enc.Encode(meta); err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := enc.Encode(doc); err != nil {
			return apperrors.NewInternalError(err)
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, e.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("bulk: %s", res.Status()))
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("decode bulk response: %w", err))
	}
	if out.Errors {
		return apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("bulk response reported item failures"))
	}
	e.docs.Store(int64(len(schemes)))
	return nil
}

// Search returns matching plan IDs in catalog order. A limit <= 0 asks for
// every indexed scheme rather than the server's default page of 10.
func (e *ElasticIndex) Search(ctx context.Context, term string, limit int) ([]string, error) {
	t := fields.Fold(strings.TrimSpace(term))
	if t == "" {
		return []string{}, nil
	}

	body, err := json.Marshal(buildWildcardQuery(t))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	size := e.pageSize(limit)
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Sort:  []string{"position:asc"},
		Size:  &size,
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(e.index, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(e.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("search: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(e.index, fmt.Errorf("decode search response: %w", err))
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (e *ElasticIndex) pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	if n := e.docs.Load(); n > 0 {
		return int(n)
	}
	return maxResultWindow
}

func buildWildcardQuery(folded string) map[string]interface{} {
	pattern := "*" + escapeWildcard(folded) + "*"
	should := make([]interface{}, 0, len(searchFields))
	for _, f := range searchFields {
		should = append(should, map[string]interface{}{
			"wildcard": map[string]interface{}{
				f: map[string]interface{}{"value": pattern, "case_insensitive": true},
			},
		})
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}
