// internal/engine/catalog/loader.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/validation"
	"scheme-advisor/internal/models"
)

// Source is the raw material a loader produces. Warnings describe records
// that were skipped or look suspicious but never abort the load.
type Source struct {
	Schemes   []models.Scheme
	Providers map[string]models.ProviderMeta
	Warnings  []string
}

type Loader interface {
	Load(ctx context.Context) (*Source, error)
	Name() string
}

// FileLoader reads a JSON array of schemes and a JSON object mapping provider
// names to their metadata.
type FileLoader struct {
	SchemesPath   string
	ProvidersPath string
}

func (l FileLoader) Name() string {
	return "file"
}

func (l FileLoader) Load(_ context.Context) (*Source, error) {
	data, err := os.ReadFile(l.SchemesPath)
	if err != nil {
		return nil, fmt.Errorf("read schemes file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode schemes file %s: %w", l.SchemesPath, err)
	}

	src := &Source{
		Schemes:   make([]models.Scheme, 0, len(raw)),
		Providers: map[string]models.ProviderMeta{},
	}
	for i, rec := range raw {
		var s models.Scheme
		if err := json.Unmarshal(rec, &s); err != nil {
			src.Warnings = append(src.Warnings, fmt.Sprintf("record %d skipped: %v", i, err))
			continue
		}
		src.Schemes = append(src.Schemes, s)
	}

	if l.ProvidersPath == "" {
		return src, nil
	}
	pdata, err := os.ReadFile(l.ProvidersPath)
	if errors.Is(err, fs.ErrNotExist) {
		src.Warnings = append(src.Warnings, fmt.Sprintf("providers file %s not found; enrichment disabled", l.ProvidersPath))
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	if err := json.Unmarshal(pdata, &src.Providers); err != nil {
		return nil, fmt.Errorf("decode providers file %s: %w", l.ProvidersPath, err)
	}
	return src, nil
}

// Build loads, validates and normalizes the catalog. Only a failure to read
// the source as a whole is an error.
func Build(ctx context.Context, loader Loader, log logger.Logger) (*Catalog, error) {
	log = log.WithFields(map[string]interface{}{"component": "catalog", "source": loader.Name()})

	src, err := loader.Load(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(loader.Name(), err)
	}

	warnings := append([]string{}, src.Warnings...)
	for _, s := range src.Schemes {
		warnings = append(warnings, recordProblems(s)...)
	}

	cat := New(src.Schemes, src.Providers)
	for _, id := range cat.Duplicates() {
		warnings = append(warnings, fmt.Sprintf("duplicate plan_id %q ignored", id))
	}

	for _, w := range warnings {
		log.Warn("catalog record warning", map[string]interface{}{"warning": w})
	}
	log.Info("catalog loaded", map[string]interface{}{
		"schemes":   cat.Len(),
		"providers": len(src.Providers),
		"warnings":  len(warnings),
	})
	return cat, nil
}

func recordProblems(s models.Scheme) []string {
	data, err := json.Marshal(s)
	if err != nil {
		return []string{fmt.Sprintf("plan %q: %v", s.PlanID, err)}
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("plan %q: %v", s.PlanID, err)}
	}

	problems, err := validation.Problems(validation.SchemeRecord, doc)
	if err != nil {
		return []string{fmt.Sprintf("plan %q: %v", s.PlanID, err)}
	}
	out := make([]string, 0, len(problems))
	for _, p := range problems {
		out = append(out, fmt.Sprintf("plan %q: %s", s.PlanID, p))
	}
	return out
}
