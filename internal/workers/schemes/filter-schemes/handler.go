// internal/workers/schemes/filter-schemes/handler.go
package filterschemes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/metrics"
	"scheme-advisor/internal/engine/query"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "filter-schemes"
)

// Filterer is the part of the query engine this worker drives.
type Filterer interface {
	Filter(ctx context.Context, req query.FilterRequest) (*query.FilterResult, error)
}

type Handler struct {
	config       *Config
	engine       Filterer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine Filterer, log logger.Logger) *Handler {
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

	h.completeJob(ctx, client, job, output)
}

// Execute ranks the eligible schemes for the job's amount and tenure.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.engine.Filter(ctx, query.FilterRequest{
		Amount:          input.Amount,
		TenureYears:     input.Tenure,
		PreferredPayout: input.PreferredPayout,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{
		LowRisk:       capList(res.LowRisk, h.config.MaxPerList),
		HighRisk:      capList(res.HighRisk, h.config.MaxPerList),
		EligibleCount: len(res.LowRisk) + len(res.HighRisk),
	}

	h.logger.Info("schemes filtered", map[string]interface{}{
		"eligible": out.EligibleCount,
		"lowRisk":  len(out.LowRisk),
		"highRisk": len(out.HighRisk),
	})
	return out, nil
}

func capList[T any](items []T, max int) []T {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
