// internal/api/advice.go
package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"scheme-advisor/internal/advisor"
	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/validation"
)

type adviceRequest struct {
	Prompt string `json:"prompt"`
}

type chatRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []advisor.Turn `json:"conversationHistory"`
}

type chatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) advisorUnavailable(w http.ResponseWriter, r *http.Request) bool {
	if h.advisor != nil {
		return false
	}
	h.writeError(w, r, apperrors.NewAdvisorUnavailableError("no language model is configured"))
	return true
}

// GetAdvice handles POST /api/ai/get-advice.
func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if err := decodeBody(r, validation.AdviceRequest, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.advisorUnavailable(w, r) {
		return
	}

	advice, err := h.advisor.Advise(r.Context(), req.Prompt, chimiddleware.GetReqID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

// Chat handles POST /api/ai/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, validation.ChatRequest, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.advisorUnavailable(w, r) {
		return
	}

	advice, err := h.advisor.Chat(r.Context(), req.Message, req.ConversationHistory, chimiddleware.GetReqID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Response:  advice.Message,
		RequestID: advice.RequestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AdvisorHealth handles GET /api/ai/health.
func (h *Handler) AdvisorHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if h.advisor == nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status":    status,
		"service":   "advisor",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
