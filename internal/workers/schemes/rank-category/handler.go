// internal/workers/schemes/rank-category/handler.go
package rankcategory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/metrics"
	"scheme-advisor/internal/engine/query"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-category"
)

type CategoryRanker interface {
	Category(ctx context.Context, slug string) *query.CategoryResult
}

type Handler struct {
	config       *Config
	engine       CategoryRanker
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine CategoryRanker, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidRequestBodyError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// Execute ranks one category. An unknown slug is not an error; it yields no items.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return nil, errors.NewEmptyQueryError("slug")
	}

	res := h.engine.Category(ctx, slug)

	limit := input.MaxItems
	if limit <= 0 {
		limit = h.config.MaxItems
	}
	items := res.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if res.Title == "" {
		h.logger.Warn("unknown category slug", map[string]interface{}{"slug": slug})
	}
	return &Output{
		Slug:     string(res.Slug),
		Title:    res.Title,
		Subtitle: res.Subtitle,
		Items:    items,
		Total:    len(res.Items),
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
