// internal/common/database/database_test.go
package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.Equal(t, "redis", client.Name())
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := &PostgresClient{DB: db}
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	require.NoError(t, client.Ping(context.Background()))
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres ping failed")

	require.NoError(t, client.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestElasticsearchClient_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", client.Name())

	require.NoError(t, client.Ping(context.Background()))

	status.Store(http.StatusUnauthorized)
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elasticsearch ping error")
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                 { return s.name }
func (s stubChecker) Ping(_ context.Context) error { return s.err }

func TestCheckAll(t *testing.T) {
	failures := CheckAll(context.Background(),
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: errors.New("redis ping failed: EOF")},
	)
	assert.Equal(t, map[string]string{"redis": "redis ping failed: EOF"}, failures)

	assert.Empty(t, CheckAll(context.Background()))
}
