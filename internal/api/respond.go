// internal/api/respond.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"scheme-advisor/internal/cache"
	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   apperrors.ErrorCode `json:"error"`
	Message string              `json:"message"`
	Detail  string              `json:"detail,omitempty"`
}

// writeError maps err onto its HTTP status. Server side failures are logged.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"path":  r.URL.Path,
		"code":  string(stdErr.Code),
		"error": stdErr.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request error", fields)
	} else {
		h.log.Debug("request rejected", fields)
	}

	writeJSON(w, status, errorResponse{
		Error:   stdErr.Code,
		Message: stdErr.Message,
		Detail:  stdErr.Details,
	})
}

// writeRaw sends an already encoded JSON document.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// decodeBody validates the request body against schema before decoding it
// into dest.
func decodeBody(r *http.Request, schema validation.SchemaName, dest interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewInvalidRequestBodyError(err.Error())
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperrors.NewInvalidRequestBodyError("request body must be a JSON object")
	}
	if err := validation.Validate(schema, doc); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.NewInvalidRequestBodyError(err.Error())
	}
	return nil
}

// cachedJSON returns the encoded response for key, building it with load on a
// miss. Errors from load are never cached.
func (h *Handler) cachedJSON(ctx context.Context, key string, load func() (interface{}, error)) (json.RawMessage, error) {
	return cache.Remember(ctx, h.cache, key, func() (json.RawMessage, error) {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
}
