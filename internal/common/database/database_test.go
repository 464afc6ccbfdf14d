// internal/common/database/database_test.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidescore-workers/internal/common/config"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func esResponse(status int, body string) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// ==========================
// PostgreSQL
// ==========================

func TestWithTx_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE applications SET status = 'Verified'")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("boom")
	err = WithTx(context.Background(), db, func(*sql.Tx) error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err = WithTx(context.Background(), db, func(*sql.Tx) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	client := &PostgresClient{DB: db}

	assert.NoError(t, client.Ping(context.Background()))
	assert.Same(t, db, client.GetDB())

	mock.ExpectClose()
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Redis
// ==========================

func TestJSONCache_RoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	type entry struct {
		Score int    `json:"score"`
		Risk  string `json:"risk"`
	}

	require.NoError(t, SetJSON(ctx, client, "tidescore:test", entry{Score: 816, Risk: "Low"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("tidescore:test"))

	var got entry
	require.NoError(t, GetJSON(ctx, client, "tidescore:test", &got))
	assert.Equal(t, entry{Score: 816, Risk: "Low"}, got)
}

func TestGetJSON_Miss(t *testing.T) {
	_, client := setupRedis(t)

	var got map[string]interface{}
	err := GetJSON(context.Background(), client, "missing", &got)

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var got map[string]interface{}
	err := GetJSON(context.Background(), client, "bad", &got)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisClient_Ping(t *testing.T) {
	mr, client := setupRedis(t)
	rc := &RedisClient{Client: client}

	assert.NoError(t, rc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

// ==========================
// Elasticsearch
// ==========================

func TestElasticsearchClient_Ping(t *testing.T) {
	status := http.StatusOK
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodHead, req.Method)
		return esResponse(status, ""), nil
	})

	es, err := newElasticsearch(config.ElasticsearchConfig{URL: "http://es.local:9200"}, transport)
	require.NoError(t, err)

	assert.NoError(t, es.Ping(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, es.Ping(context.Background()))
}
