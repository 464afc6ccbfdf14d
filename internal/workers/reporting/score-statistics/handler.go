// internal/workers/reporting/score-statistics/handler.go
package scorestatistics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"tidescore-workers/internal/common/database"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/metrics"
	"tidescore-workers/internal/models"
	"tidescore-workers/internal/tidescore"
)

const (
	TaskType = "score-statistics"

	CacheKey = "tidescore:stats"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      redis.Cmdable
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb redis.Cmdable, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      rdb,
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
	if !input.Refresh && h.redis != nil {
		var cached Output
		err := database.GetJSON(ctx, h.redis, CacheKey, &cached)
		metrics.ObserveCache("stats", err == nil)
		if err == nil {
			cached.Cached = true
			return &cached, nil
		}
		if err != database.ErrCacheMiss {
			h.logger.Warn("stats cache read failed", map[string]interface{}{
				"error": err,
			})
		}
	}

	output, err := h.aggregate(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewQueryTimeoutError("score-statistics")
		}
		return nil, err
	}

	if h.redis != nil {
		if err := database.SetJSON(ctx, h.redis, CacheKey, output, h.config.CacheTTL); err != nil {
			h.logger.Warn("stats cache write failed", map[string]interface{}{
				"error": err,
			})
		}
	}

	h.logger.Info("statistics computed", map[string]interface{}{
		"total":        output.TotalApplications,
		"verified":     output.VerifiedApplications,
		"averageScore": output.AverageScore,
	})

	return output, nil
}

func (h *Handler) aggregate(ctx context.Context) (*Output, error) {
	statusCounts, err := h.countByStatus(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range statusCounts {
		total += n
	}

	average, err := h.averageScore(ctx)
	if err != nil {
		return nil, err
	}

	distribution, err := h.riskDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &Output{
		TotalApplications:    total,
		VerifiedApplications: statusCounts[models.StatusVerified],
		StatusCounts:         statusCounts,
		AverageScore:         average,
		RiskDistribution:     distribution,
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) countByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT verification_status, COUNT(*) FROM applications GROUP BY verification_status`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("status_counts", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.NewQueryExecutionFailedError("status_counts", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("status_counts", err)
	}
	return counts, nil
}

// averageScore is the mean scaled score of verified applications, rounded
// half-to-even to two places. It is zero when nothing has been scored.
func (h *Handler) averageScore(ctx context.Context) (float64, error) {
	var avg decimal.NullDecimal
	err := h.db.QueryRowContext(ctx, `
		SELECT AVG(scaled_score) FROM applications
		WHERE verification_status = $1 AND scaled_score IS NOT NULL`,
		models.StatusVerified,
	).Scan(&avg)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("average_score", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Decimal.RoundBank(2).InexactFloat64(), nil
}

func (h *Handler) riskDistribution(ctx context.Context) (map[string]int, error) {
	distribution := map[string]int{UnknownRisk: 0}
	for _, level := range tidescore.RiskLevels() {
		distribution[string(level)] = 0
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT COALESCE(risk_level, ''), COUNT(*) FROM applications
		WHERE verification_status = $1 AND score_result IS NOT NULL
		GROUP BY 1`,
		models.StatusVerified,
	)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("risk_distribution", err)
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, errors.NewQueryExecutionFailedError("risk_distribution", err)
		}
		if !tidescore.RiskLevel(level).Valid() {
			level = UnknownRisk
		}
		distribution[level] += n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("risk_distribution", err)
	}
	return distribution, nil
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
