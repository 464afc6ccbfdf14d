// internal/workers/reporting/index-score-report/handler.go
package indexscorereport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
)

const (
	TaskType = "index-score-report"
)

type Handler struct {
	config     *Config
	client     *elasticsearch.Client
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, errors.NewApplicantDataInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, errors.NewApplicantDataInvalidError("applicationId is required")
	}

	indexedAt := time.Now().UTC().Format(time.RFC3339)
	doc := NewScoreDocument(input, indexedAt)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("marshal document: %w", err))
	}

	res, err := h.client.Index(
		h.config.IndexName,
		bytes.NewReader(body),
		h.client.Index.WithContext(ctx),
		h.client.Index.WithDocumentID(input.ApplicationID),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError("elasticsearch", err)
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, errors.NewIndexFailedError(h.config.IndexName,
			fmt.Errorf("%s: %s", res.Status(), bytes.TrimSpace(detail))).
			WithMetadata("applicationId", input.ApplicationID)
	}

	var parsed indexResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		h.logger.Warn("could not decode index response", map[string]interface{}{
			"error": err,
		})
	}
	if parsed.ID == "" {
		parsed.ID = input.ApplicationID
	}

	h.logger.Info("score report indexed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"index":         h.config.IndexName,
		"result":        parsed.Result,
	})

	return &Output{
		DocumentID: parsed.ID,
		Index:      h.config.IndexName,
		Result:     parsed.Result,
		Version:    parsed.Version,
		IndexedAt:  indexedAt,
	}, nil
}

// NewScoreDocument flattens a report for indexing.
func NewScoreDocument(input *Input, indexedAt string) ScoreDocument {
	suggestions := input.ScoreReport.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return ScoreDocument{
		ApplicationID: input.ApplicationID,
		ApplicantName: input.ApplicantName,
		ScaledScore:   input.ScoreReport.ScaledScore,
		RiskLevel:     string(input.ScoreReport.RiskLevel),
		Breakdown:     input.ScoreReport.Breakdown.Map(),
		Suggestions:   suggestions,
		IndexedAt:     indexedAt,
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
