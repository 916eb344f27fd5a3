package db

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	database, err := Connect(dsn)
	require.NoError(t, err)
	defer database.Close()

	stats := database.Stats()
	assert.LessOrEqual(t, stats.MaxOpenConnections, 25)
}

func TestArchiveOperations(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	t.Run("Insert forged transaction", func(t *testing.T) {
		hash := "5ac2823ad709b5aae4c7e1311c5dc4b3b6817595a5cb36d02b36f1867a9b9716"
		sourceAccount := "GCLWGQPMKXQSPF776IU33AH4PZNOOWNAWGGKVTBQMIC5IMKUNP3E6NVU"
		sequenceNumber := int64(100)
		fee := int64(100)
		operationCount := int32(1)
		memoType := ""
		memoValue := ""
		networkPassphrase := "Test SDF Network ; September 2015"
		transactionXDR := "AAAAAJdjQexV4SeX//IpvYD8flrnWaCxjKrMMGIF1DFUa/ZPAAAAZAAAAAAAAABk"
		signatureBase := "zuAwLVmETTK9ypFcggPdRLM/u37cGQUeo3q+3yjs1HI="
		envelopeXDR := ""
		createdAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

		mock.ExpectExec("INSERT INTO forged_transactions").
			WithArgs(hash, sourceAccount, sequenceNumber, fee, operationCount,
				memoType, memoValue, networkPassphrase, transactionXDR,
				signatureBase, envelopeXDR, createdAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := mockDB.Exec(`
			INSERT INTO forged_transactions (hash, source_account, sequence_number, fee,
				operation_count, memo_type, memo_value, network, transaction_xdr,
				signature_base, envelope_xdr, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (hash) DO NOTHING`,
			hash, sourceAccount, sequenceNumber, fee, operationCount,
			memoType, memoValue, networkPassphrase, transactionXDR,
			signatureBase, envelopeXDR, createdAt)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query by hash with no rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT hash FROM forged_transactions WHERE").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		var hash string
		err := mockDB.QueryRow(`SELECT hash FROM forged_transactions WHERE hash = $1`, "missing").
			Scan(&hash)

		assert.Equal(t, sql.ErrNoRows, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnectionPoolSettings(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mockDB.SetMaxOpenConns(25)
	mockDB.SetMaxIdleConns(10)
	mockDB.SetConnMaxLifetime(5 * time.Minute)

	stats := mockDB.Stats()
	assert.Equal(t, 25, stats.MaxOpenConnections)
}
