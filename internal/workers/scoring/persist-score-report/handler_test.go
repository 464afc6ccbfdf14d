// internal/workers/scoring/persist-score-report/handler_test.go
package persistscorereport

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidescore-workers/internal/common/camunda/jobtest"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/tidescore"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, db *sql.DB) *Handler {
	return NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
}

func createInput() *Input {
	return &Input{
		ApplicationID: "app-001",
		ScoreReport: tidescore.Report{
			ScaledScore: 574,
			RiskLevel:   tidescore.RiskMedium,
			Breakdown:   tidescore.Breakdown{Bank: 0, TotalPenalties: -30, FinalRaw: 500},
		},
	}
}

func expectUpdate(mock sqlmock.Sqlmock, rows int64) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-001", sqlmock.AnyArg(), 574, "Medium", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, rows))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectUpdate(mock, 1)
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), "app-001", "score_recorded", "tidescore-workers", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := createTestHandler(t, db).Execute(context.Background(), createInput())

	require.NoError(t, err)
	assert.True(t, output.Persisted)
	_, err = time.Parse(time.RFC3339, output.UpdatedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditFailureIsNotFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	input := createInput()
	input.RecordedBy = "admin@tidescore.app"

	expectUpdate(mock, 1)
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), "app-001", "score_recorded", "admin@tidescore.app", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(stderrors.New("relation audit_log does not exist"))

	output, err := createTestHandler(t, db).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, output.Persisted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		input     func() *Input
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{
			name:     "application not found",
			setup:    func(mock sqlmock.Sqlmock) { expectUpdate(mock, 0) },
			input:    createInput,
			wantCode: errors.ErrCodeApplicationNotFound,
		},
		{
			name: "update fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE applications`).WillReturnError(stderrors.New("deadlock detected"))
			},
			input:     createInput,
			wantCode:  errors.ErrCodeDatabaseUpdateFailed,
			retryable: true,
		},
		{
			name:  "missing application id",
			setup: func(sqlmock.Sqlmock) {},
			input: func() *Input {
				in := createInput()
				in.ApplicationID = ""
				return in
			},
			wantCode: errors.ErrCodeApplicantDataInvalid,
		},
		{
			name:  "score out of range",
			setup: func(sqlmock.Sqlmock) {},
			input: func() *Input {
				in := createInput()
				in.ScoreReport.ScaledScore = 900
				return in
			},
			wantCode: errors.ErrCodeApplicantDataInvalid,
		},
		{
			name:  "unknown risk level",
			setup: func(sqlmock.Sqlmock) {},
			input: func() *Input {
				in := createInput()
				in.ScoreReport.RiskLevel = "Moderate"
				return in
			},
			wantCode: errors.ErrCodeApplicantDataInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			output, err := createTestHandler(t, db).Execute(context.Background(), tt.input())

			assert.Nil(t, output)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Handle_NotFoundThrows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	expectUpdate(mock, 0)

	client := jobtest.NewClient()
	createTestHandler(t, db).Handle(client, jobtest.NewJob(3, TaskType, createInput()))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "APPLICATION_NOT_FOUND", client.Thrown()[0].ErrorCode)
}
