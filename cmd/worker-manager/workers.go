// cmd/worker-manager/workers.go
package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"tidescore-workers/internal/applicant"
	"tidescore-workers/internal/common/aws"
	"tidescore-workers/internal/common/camunda"
	"tidescore-workers/internal/common/config"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/observability"
	"tidescore-workers/internal/common/validation"

	ssn "tidescore-workers/internal/workers/communication/send-score-notification"
	isr "tidescore-workers/internal/workers/reporting/index-score-report"
	sst "tidescore-workers/internal/workers/reporting/score-statistics"
	ct "tidescore-workers/internal/workers/scoring/calculate-tidescore"
	psr "tidescore-workers/internal/workers/scoring/persist-score-report"
	va "tidescore-workers/internal/workers/scoring/verify-application"
)

type dependencies struct {
	cfg       *config.Config
	db        *sql.DB
	redis     redis.Cmdable
	es        *elasticsearch.Client
	validator *validation.Validator
	email     ssn.EmailSender
	sms       ssn.SMSSender
	log       logger.Logger
}

// initNotifications creates the SES and SNS senders for enabled channels.
func (d *dependencies) initNotifications(ctx context.Context) error {
	n := d.cfg.Notifications
	if !n.Email.Enabled && !n.SMS.Enabled {
		return nil
	}

	awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
	if err != nil {
		return err
	}
	if n.Email.Enabled {
		d.email = aws.NewEmailSender(awsCfg, n.Email.FromEmail)
	}
	if n.SMS.Enabled {
		d.sms = aws.NewSMSSender(awsCfg, n.SMS.SenderID)
	}
	return nil
}

func (d *dependencies) flagConvention() applicant.FlagConvention {
	// Validated at config load.
	c, _ := applicant.ParseConvention(d.cfg.Scoring.FlagConvention)
	return c
}

// registerWorkers opens a job worker for every enabled task type.
func registerWorkers(zeebe *camunda.Client, d *dependencies, obs *observability.Observability) []*camunda.CamundaWorker {
	handlers := map[string]func(timeout time.Duration) worker.JobHandler{
		ct.TaskType: func(timeout time.Duration) worker.JobHandler {
			return ct.NewHandler(&ct.Config{
				FlagConvention:     d.flagConvention(),
				IncludeSuggestions: d.cfg.Scoring.IncludeSuggestions,
				CacheTTL:           d.cfg.Scoring.CacheTTLDuration(),
				Timeout:            timeout,
			}, d.redis, d.validator, d.log).Handle
		},
		va.TaskType: func(timeout time.Duration) worker.JobHandler {
			return va.NewHandler(&va.Config{
				FlagConvention: d.flagConvention(),
				Timeout:        timeout,
			}, d.db, d.log).Handle
		},
		psr.TaskType: func(timeout time.Duration) worker.JobHandler {
			return psr.NewHandler(&psr.Config{Timeout: timeout}, d.db, d.log).Handle
		},
		sst.TaskType: func(timeout time.Duration) worker.JobHandler {
			return sst.NewHandler(&sst.Config{
				CacheTTL: d.cfg.Scoring.StatsCacheTTLDuration(),
				Timeout:  timeout,
			}, d.db, d.redis, d.log).Handle
		},
		isr.TaskType: func(timeout time.Duration) worker.JobHandler {
			return isr.NewHandler(&isr.Config{
				IndexName: d.cfg.Scoring.ReportIndex,
				Timeout:   timeout,
			}, d.es, d.log).Handle
		},
		ssn.TaskType: func(timeout time.Duration) worker.JobHandler {
			n := d.cfg.Notifications
			return ssn.NewHandler(&ssn.Config{
				EmailEnabled:  n.Email.Enabled,
				SMSEnabled:    n.SMS.Enabled,
				SMSRiskLevels: n.SMS.RiskLevels,
				Timeout:       timeout,
			}, d.email, d.sms, d.log).Handle
		},
	}

	var started []*camunda.CamundaWorker
	for _, taskType := range []string{ct.TaskType, va.TaskType, psr.TaskType, sst.TaskType, isr.TaskType, ssn.TaskType} {
		if !config.IsWorkerEnabled(d.cfg, taskType) {
			d.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		wcfg := config.GetWorkerConfig(d.cfg, taskType)
		timeout := config.GetDuration(wcfg.Timeout)

		started = append(started, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      taskType,
			Name:          "tidescore-" + taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       timeout,
		}, handlers[taskType](timeout), obs, d.log))
	}
	return started
}
