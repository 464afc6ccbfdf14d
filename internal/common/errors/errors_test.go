// internal/common/errors/errors_test.go
package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidescore-workers/internal/common/camunda/jobtest"
	"tidescore-workers/internal/common/errors"
)

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     errors.ErrorCode
		expected int
	}{
		{errors.ErrCodeDatabaseUpdateFailed, 3},
		{errors.ErrCodeIndexFailed, 3},
		{errors.ErrCodeNotificationSendFailed, 3},
		{errors.ErrCodeQueryTimeout, 2},
		{errors.ErrCodeApplicantDataInvalid, 0},
		{errors.ErrCodeApplicationNotFound, 0},
		{errors.ErrorCode("SOMETHING_ELSE"), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, errors.GetRetryCount(tt.code), string(tt.code))
		assert.Equal(t, tt.expected > 0, errors.IsRetryableErrorCode(tt.code), string(tt.code))
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := errors.NewApplicationNotFoundError("app-42").WithMetadata("applicationId", "app-42")

	bpmnErr := errors.ConvertToBPMNError(stdErr)

	assert.Equal(t, "APPLICATION_NOT_FOUND", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "APPLICATION_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "APPLICATION_NOT_FOUND", vars["originalErrorCode"])
	assert.Equal(t, "app-42", vars["applicationId"])
	assert.Equal(t, "applicationId: app-42", vars["errorDetails"])
}

func TestConvertToBPMNError_NonRetryableOverridesCode(t *testing.T) {
	stdErr := errors.NewDatabaseUpdateFailedError(fmt.Errorf("constraint"))
	stdErr.Retryable = false

	assert.Equal(t, 0, errors.ConvertToBPMNError(stdErr).Retries)
}

func TestAsStandardError(t *testing.T) {
	stdErr := errors.NewIndexFailedError("tidescore-reports", fmt.Errorf("503"))
	wrapped := fmt.Errorf("index step: %w", stdErr)

	assert.Same(t, stdErr, errors.AsStandardError(wrapped))

	internal := errors.AsStandardError(stderrors.New("boom"))
	assert.Equal(t, errors.ErrCodeInternal, internal.Code)
	assert.Equal(t, "boom", internal.Details)
	assert.False(t, internal.Retryable)
}

func TestEnsureStandard(t *testing.T) {
	assert.NoError(t, errors.EnsureStandard(nil, errors.NewDatabaseUpdateFailedError))

	notFound := errors.NewApplicationNotFoundError("app-1")
	assert.Same(t, notFound, errors.EnsureStandard(notFound, errors.NewDatabaseUpdateFailedError))

	wrapped := errors.EnsureStandard(stderrors.New("begin transaction: eof"), errors.NewDatabaseUpdateFailedError)
	assert.Equal(t, errors.ErrCodeDatabaseUpdateFailed, errors.AsStandardError(wrapped).Code)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", errors.GetErrorCategory(errors.ErrCodeApplicantDataInvalid))
	assert.Equal(t, "VALIDATION", errors.GetErrorCategory(errors.ErrCodeSchemaValidationFailed))
	assert.Equal(t, "APPLICATION", errors.GetErrorCategory(errors.ErrCodeApplicationNotFound))
	assert.Equal(t, "DATABASE", errors.GetErrorCategory(errors.ErrCodeDatabaseUpdateFailed))
	assert.Equal(t, "DATABASE", errors.GetErrorCategory(errors.ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", errors.GetErrorCategory(errors.ErrCodeIndexFailed))
	assert.Equal(t, "NOTIFICATION", errors.GetErrorCategory(errors.ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", errors.GetErrorCategory(errors.ErrCodeInternal))
}

func TestErrorHandler_RetryableFailsJob(t *testing.T) {
	log := &recordingLogger{}
	client := jobtest.NewClient()
	job := jobtest.NewJob(7, "persist-score-report", nil)

	errors.NewErrorHandler(log).HandleJobError(context.Background(), client, job,
		errors.NewDatabaseUpdateFailedError(fmt.Errorf("connection reset")))

	failed := client.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(7), failed[0].JobKey)
	assert.Equal(t, int32(2), failed[0].Retries)
	assert.Contains(t, failed[0].Variables, "DATABASE_UPDATE_FAILED")
	assert.Empty(t, client.Thrown())

	require.Len(t, log.fields, 1)
	assert.Equal(t, "DATABASE", log.fields[0]["errorCategory"])
}

func TestErrorHandler_NonRetryableThrows(t *testing.T) {
	client := jobtest.NewClient()
	job := jobtest.NewJob(8, "verify-application", nil)

	errors.NewErrorHandler(&recordingLogger{}).HandleJobError(context.Background(), client, job,
		errors.NewApplicationNotFoundError("missing"))

	thrown := client.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, "APPLICATION_NOT_FOUND", thrown[0].ErrorCode)
	assert.Empty(t, client.Failed())
}

func TestErrorHandler_LastAttemptThrows(t *testing.T) {
	client := jobtest.NewClient()
	job := jobtest.NewJob(9, "index-score-report", nil)
	job.Retries = 1

	errors.NewErrorHandler(&recordingLogger{}).HandleJobError(context.Background(), client, job,
		errors.NewIndexFailedError("tidescore-reports", fmt.Errorf("503")))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INDEX_FAILED", client.Thrown()[0].ErrorCode)
}

func TestErrorHandler_SendFailureIsLogged(t *testing.T) {
	log := &recordingLogger{}
	client := jobtest.NewClient()
	client.SendErr = fmt.Errorf("gateway unavailable")

	errors.NewErrorHandler(log).HandleJobError(context.Background(), client,
		jobtest.NewJob(10, "calculate-tidescore", nil), stderrors.New("unexpected"))

	require.Len(t, log.messages, 2)
	assert.Equal(t, "failed to send throw error command", log.messages[1])
}
