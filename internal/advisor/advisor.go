// internal/advisor/advisor.go
package advisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"scheme-advisor/internal/common/config"
	apperrors "scheme-advisor/internal/common/errors"
	commonhttp "scheme-advisor/internal/common/http"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

const (
	// FallbackMessage is returned when the model answers without any text.
	FallbackMessage = "Sorry, I could not generate a response."

	contextLimit   = 5
	initialBackoff = 100 * time.Millisecond
)

const systemPrompt = `You are a banking advisor for Indian savings and investment schemes.
Explain fixed deposits, recurring deposits, small savings schemes, mutual funds and tax saving options in plain language.
Prefer the plans listed under RELEVANT PLANS when they answer the question and quote their figures exactly.
Never promise returns. End every answer with: "Note: For education only, not financial advice."`

// planKeywords mark a question about concrete products, which is when catalog
// context is attached to the prompt.
var planKeywords = []string{
	"fd", "fixed deposit", "rd", "recurring deposit", "mis", "monthly income",
	"scss", "senior citizen", "ppf", "sukanya", "tax saving", "section 80c",
	"sbi", "hdfc", "axis", "icici", "kotak", "bank", "scheme", "plan",
}

// Searcher finds catalog schemes by free text.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]models.ScoredScheme, error)
}

type Advice struct {
	Message   string   `json:"message"`
	RequestID string   `json:"requestId"`
	PlanIDs   []string `json:"-"`
}

// Advisor answers open questions through a generateContent style model API,
// grounding the prompt with matching catalog schemes when the question names
// a product.
type Advisor struct {
	cfg     config.GenAIConfig
	client  *commonhttp.Client
	schemes Searcher
	log     logger.Logger
	backoff time.Duration
}

func New(cfg config.GenAIConfig, schemes Searcher, log logger.Logger) *Advisor {
	return &Advisor{
		cfg:     cfg,
		client:  commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		schemes: schemes,
		log:     log.WithFields(map[string]interface{}{"component": "advisor"}),
		backoff: initialBackoff,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Turn is one earlier exchange of a conversation. Role is "user" or
// "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Advise sends the prompt to the model. An empty requestID is replaced by a
// fresh UUID.
func (a *Advisor) Advise(ctx context.Context, prompt, requestID string) (*Advice, error) {
	return a.Chat(ctx, prompt, nil, requestID)
}

// Chat is Advise with the earlier turns of a conversation replayed ahead of
// the new message.
func (a *Advisor) Chat(ctx context.Context, message string, history []Turn, requestID string) (*Advice, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewEmptyQueryError("prompt")
	}
	if !a.cfg.Configured() {
		return nil, apperrors.NewAdvisorUnavailableError("genai base_url and api_key must be set")
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := a.log.WithFields(map[string]interface{}{"requestId": requestID})

	var plans []models.ScoredScheme
	if IsPlanQuery(message) {
		plans = a.relevantPlans(ctx, message, log)
	}

	body := generateRequest{Contents: append(historyContents(history), content{
		Role:  "user",
		Parts: []part{{Text: BuildPrompt(message, plans)}},
	})}

	var resp generateResponse
	if err := a.send(ctx, body, &resp, log); err != nil {
		return nil, err
	}

	reply := FallbackMessage
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		if text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text); text != "" {
			reply = text
		}
	}

	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.PlanID
	}
	log.Info("advice generated", map[string]interface{}{
		"contextPlans": len(plans),
		"historyTurns": len(history),
		"chars":        len(reply),
	})
	return &Advice{Message: reply, RequestID: requestID, PlanIDs: ids}, nil
}

// historyContents maps conversation turns onto model roles, skipping blanks.
func historyContents(history []Turn) []content {
	out := make([]content, 0, len(history)+1)
	for _, t := range history {
		text := strings.TrimSpace(t.Content)
		if text == "" {
			continue
		}
		role := "user"
		if strings.EqualFold(t.Role, "assistant") || strings.EqualFold(t.Role, "model") {
			role = "model"
		}
		out = append(out, content{Role: role, Parts: []part{{Text: text}}})
	}
	return out
}

func (a *Advisor) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(a.cfg.BaseURL, "/"), url.PathEscape(a.cfg.Model), url.QueryEscape(a.cfg.APIKey))
}

// send posts the request, retrying throttling, server errors and transport
// timeouts with exponential backoff.
func (a *Advisor) send(ctx context.Context, body generateRequest, out *generateResponse, log logger.Logger) error {
	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := a.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return apperrors.NewLLMTimeoutError()
			}
		}

		lastErr = a.client.PostJSON(ctx, a.endpoint(), body, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return apperrors.NewLLMTimeoutError()
		}
		if !retryable(lastErr) {
			break
		}
		log.Warn("model request failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}

	if isTimeout(lastErr) {
		return apperrors.NewLLMTimeoutError()
	}
	var statusErr *commonhttp.StatusError
	if errors.As(lastErr, &statusErr) {
		log.Error("model request rejected", map[string]interface{}{"status": statusErr.StatusCode})
	}
	return apperrors.NewLLMSynthesisFailedError(lastErr)
}

func retryable(err error) bool {
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return isTimeout(err)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// relevantPlans collects up to five schemes mentioning the whole prompt or,
// failing that, one of the product keywords it contains.
func (a *Advisor) relevantPlans(ctx context.Context, prompt string, log logger.Logger) []models.ScoredScheme {
	if a.schemes == nil {
		return nil
	}
	terms := append([]string{prompt}, matchedKeywords(prompt)...)

	seen := map[string]bool{}
	var out []models.ScoredScheme
	for _, term := range terms {
		hits, err := a.schemes.Search(ctx, term, contextLimit)
		if err != nil {
			log.Warn("plan context search failed", map[string]interface{}{"term": term, "error": err.Error()})
			continue
		}
		for _, h := range hits {
			if seen[h.PlanID] {
				continue
			}
			seen[h.PlanID] = true
			out = append(out, h)
			if len(out) == contextLimit {
				return out
			}
		}
	}
	return out
}

// IsPlanQuery reports whether the prompt asks about a concrete product or
// provider.
func IsPlanQuery(prompt string) bool {
	return len(matchedKeywords(prompt)) > 0
}

func matchedKeywords(prompt string) []string {
	var out []string
	for _, kw := range planKeywords {
		if fields.ContainsTerm(prompt, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// BuildPrompt renders the full model prompt.
func BuildPrompt(question string, plans []models.ScoredScheme) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if len(plans) > 0 {
		b.WriteString("\n\nRELEVANT PLANS FROM OUR DATABASE:\n")
		for i, p := range plans {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, p.PlanName, p.ProviderName)
			fmt.Fprintf(&b, "   Interest rate: %s | Tenure: %s | Min investment: %s\n",
				orNA(p.InterestRate), orNA(p.Tenure), rupees(p.MinInvestment))
			fmt.Fprintf(&b, "   Risk: %s | Tax benefits: %s\n", orNA(p.RiskLevel), orNA(p.TaxBenefits))
		}
	}

	b.WriteString("\nUser question: ")
	b.WriteString(question)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func rupees(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return "₹" + decimal.NewFromFloat(*v).Round(2).String()
}
