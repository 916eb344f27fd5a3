package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/lumenforge.attest.so/handlers"
	"github.com/daccred/lumenforge.attest.so/models"
)

func testRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.NewEntry(logrus.New())
	forge, err := handlers.NewForge(&handlers.Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
		LogLevel:          "error",
	}, mockDB, logger)
	require.NoError(t, err)

	r := gin.New()
	NewForgeController(mockDB, forge).RegisterRoutes(r)
	return r, mock
}

func TestBuildTransactionEndpoint(t *testing.T) {
	router, mock := testRouter(t)
	source := keypair.MustRandom()
	destination := keypair.MustRandom()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO forged_transactions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, err := json.Marshal(models.BuildRequest{
		SourceAccount:  source.Address(),
		SequenceNumber: 100,
		Operations: []models.OperationRequest{
			{Type: "payment", Destination: destination.Address(), Amount: 10_0000000},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success bool                     `json:"success"`
		Data    models.ForgedTransaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, uint32(100), response.Data.Fee)
	assert.Equal(t, source.Address(), response.Data.SourceAccount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildTransactionEndpointRejectsEmptyOps(t *testing.T) {
	router, _ := testRouter(t)
	source := keypair.MustRandom()

	body, err := json.Marshal(models.BuildRequest{
		SourceAccount:  source.Address(),
		SequenceNumber: 100,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecodeEndpointRequiresEnvelope(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/decode", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransactionsEndpoint(t *testing.T) {
	router, mock := testRouter(t)

	rows := sqlmock.NewRows([]string{
		"hash", "source_account", "sequence_number", "fee", "operation_count",
		"memo_type", "memo_value", "network", "created_at",
	}).AddRow(
		"abc123", "GCLWGQPMKXQSPF776IU33AH4PZNOOWNAWGGKVTBQMIC5IMKUNP3E6NVU",
		int64(100), int64(100), int32(1), "text", "hello",
		network.TestNetworkPassphrase, time.Now(),
	)
	mock.ExpectQuery("SELECT hash, source_account").WillReturnRows(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc123")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionNotFound(t *testing.T) {
	router, mock := testRouter(t)

	mock.ExpectQuery("SELECT hash, source_account").WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/deadbeef", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
