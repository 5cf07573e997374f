// internal/engine/search/memory.go
package search

import (
	"context"
	"sort"
	"strings"

	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// Index finds schemes whose searchable text mentions a term. Results are
// plan IDs in relevance order; limit <= 0 means no limit.
type Index interface {
	Search(ctx context.Context, term string, limit int) ([]string, error)
}

type entry struct {
	planID   string
	haystack []string
}

// MemoryIndex is a case-folded substring index over the catalog.
type MemoryIndex struct {
	entries []entry
}

func NewMemoryIndex(schemes []models.NormalizedScheme) *MemoryIndex {
	idx := &MemoryIndex{entries: make([]entry, 0, len(schemes))}
	for _, n := range schemes {
		idx.entries = append(idx.entries, entry{planID: n.PlanID, haystack: haystack(n)})
	}
	return idx
}

func haystack(n models.NormalizedScheme) []string {
	texts := []string{n.PlanName, n.Category, n.SubCategory, n.ProviderName, n.Description}
	texts = append(texts, n.KeyFeatures...)

	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, fields.Fold(t))
		}
	}
	return out
}

// Search returns matches in catalog order.
func (m *MemoryIndex) Search(_ context.Context, term string, limit int) ([]string, error) {
	t := fields.Fold(strings.TrimSpace(term))
	if t == "" {
		return []string{}, nil
	}

	out := []string{}
	for _, e := range m.entries {
		if !e.mentions(t) {
			continue
		}
		out = append(out, e.planID)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SearchAny ranks schemes by how many distinct keywords they mention, most
// first, then by catalog order. Schemes mentioning none are left out.
func (m *MemoryIndex) SearchAny(_ context.Context, keywords []string, limit int) []string {
	terms := make([]string, 0, len(keywords))
	seen := map[string]bool{}
	for _, k := range keywords {
		k = fields.Fold(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		terms = append(terms, k)
	}
	if len(terms) == 0 {
		return []string{}
	}

	type hit struct {
		planID string
		count  int
	}
	hits := []hit{}
	for _, e := range m.entries {
		c := 0
		for _, t := range terms {
			if e.mentions(t) {
				c++
			}
		}
		if c > 0 {
			hits = append(hits, hit{e.planID, c})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.planID)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (e entry) mentions(folded string) bool {
	for _, h := range e.haystack {
		if strings.Contains(h, folded) {
			return true
		}
	}
	return false
}
