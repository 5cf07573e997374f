// internal/api/schemes.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/validation"
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/models"
)

// ListSchemes handles GET /api/schemes.
func (h *Handler) ListSchemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.All(r.Context()))
}

// FilterSchemes handles GET /api/schemes/filter.
func (h *Handler) FilterSchemes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := optionalFloat(q.Get("minInvestment"))
	if err != nil {
		h.writeError(w, r, apperrors.NewInvalidAmountError("minInvestment must be a number"))
		return
	}
	tenure, err := optionalFloat(q.Get("tenure"))
	if err != nil {
		h.writeError(w, r, apperrors.NewInvalidTenureError("tenure must be a number"))
		return
	}

	res, err := h.engine.Filter(r.Context(), query.FilterRequest{
		Amount:          amount,
		TenureYears:     tenure,
		PreferredPayout: q.Get("preferredPayout"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CategorySchemes handles GET /api/schemes/category/{slug}.
func (h *Handler) CategorySchemes(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	body, err := h.cachedJSON(r.Context(), h.cache.Key("category", slug), func() (interface{}, error) {
		return h.engine.Category(r.Context(), slug), nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// GetScheme handles GET /api/schemes/{planId}.
func (h *Handler) GetScheme(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planId")
	body, err := h.cachedJSON(r.Context(), h.cache.Key("scheme", planID), func() (interface{}, error) {
		return h.engine.Lookup(r.Context(), planID)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

// QuerySchemes handles POST /api/schemes/query.
func (h *Handler) QuerySchemes(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, validation.QueryRequest, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.engine.Query(r.Context(), req.Prompt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type dataQueryRequest struct {
	Query     string           `json:"query"`
	QueryType models.QueryType `json:"queryType"`
}

type dataQueryResponse struct {
	Success bool `json:"success"`
	*query.DataResult
}

// QueryData handles POST /api/ai-data/query-data.
func (h *Handler) QueryData(w http.ResponseWriter, r *http.Request) {
	var req dataQueryRequest
	if err := decodeBody(r, validation.DataQueryRequest, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	key := h.cache.Key("data-query", string(req.QueryType), strings.TrimSpace(req.Query))
	body, err := h.cachedJSON(r.Context(), key, func() (interface{}, error) {
		res, err := h.engine.DataQuery(r.Context(), req.QueryType, req.Query)
		if err != nil {
			return nil, err
		}
		return dataQueryResponse{Success: true, DataResult: res}, nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// SchemeDetails handles GET /api/ai-data/scheme/{planId}.
func (h *Handler) SchemeDetails(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Lookup(r.Context(), chi.URLParam(r, "planId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "scheme": s})
}

// BankDetails handles GET /api/ai-data/bank/{bankName}.
func (h *Handler) BankDetails(w http.ResponseWriter, r *http.Request) {
	bank, err := h.engine.Provider(r.Context(), chi.URLParam(r, "bankName"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "bank": bank})
}

// optionalFloat parses a query parameter; an absent parameter yields nil.
func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
