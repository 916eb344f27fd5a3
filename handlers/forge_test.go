package handlers

import (
	"encoding/hex"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/lumenforge.attest.so/models"
	"github.com/daccred/lumenforge.attest.so/txbuilder"
)

func testForge(t *testing.T) *Forge {
	t.Helper()
	logger := logrus.NewEntry(logrus.New())
	forge, err := NewForge(&Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
		BaseFee:           txbuilder.MinBaseFee,
		LogLevel:          "error",
	}, nil, logger)
	require.NoError(t, err)
	return forge
}

func TestNewForgeRequiresPassphrase(t *testing.T) {
	logger := logrus.NewEntry(logrus.New())
	_, err := NewForge(&Config{}, nil, logger)
	assert.Error(t, err)
}

func TestForgeBuild(t *testing.T) {
	forge := testForge(t)
	source := keypair.MustRandom()
	destination := keypair.MustRandom()

	tests := []struct {
		name        string
		request     models.BuildRequest
		expectError bool
		check       func(t *testing.T, forged *models.ForgedTransaction)
	}{
		{
			name: "payment with default fee",
			request: models.BuildRequest{
				SourceAccount:  source.Address(),
				SequenceNumber: 100,
				Operations: []models.OperationRequest{
					{Type: "payment", Destination: destination.Address(), Amount: 10_0000000},
				},
			},
			check: func(t *testing.T, forged *models.ForgedTransaction) {
				assert.Equal(t, uint32(100), forged.Fee)
				assert.Equal(t, int32(1), forged.OperationCount)
				assert.Empty(t, forged.MemoType)
				assert.Empty(t, forged.EnvelopeXDR) // unsigned: no envelope yet
				assert.NotEmpty(t, forged.SignatureBase)
				assert.Len(t, forged.Hash, 64)
			},
		},
		{
			name: "fee override stored verbatim",
			request: models.BuildRequest{
				SourceAccount:  source.Address(),
				SequenceNumber: 101,
				Fee:            5000,
				Operations: []models.OperationRequest{
					{Type: "payment", Destination: destination.Address(), Amount: 1},
					{Type: "payment", Destination: destination.Address(), Amount: 2},
				},
			},
			check: func(t *testing.T, forged *models.ForgedTransaction) {
				assert.Equal(t, uint32(5000), forged.Fee)
			},
		},
		{
			name: "memo and time bounds",
			request: models.BuildRequest{
				SourceAccount:  source.Address(),
				SequenceNumber: 102,
				Memo:           &models.MemoRequest{Type: "text", Value: "invoice 7"},
				TimeBounds:     &models.TimeBounds{MinTime: 0, MaxTime: 2000000000},
				Operations: []models.OperationRequest{
					{Type: "create_account", Destination: destination.Address(), StartingBalance: 20_0000000},
				},
			},
			check: func(t *testing.T, forged *models.ForgedTransaction) {
				assert.Equal(t, "text", forged.MemoType)
				assert.Equal(t, "invoice 7", forged.MemoValue)
			},
		},
		{
			name: "empty operation list",
			request: models.BuildRequest{
				SourceAccount:  source.Address(),
				SequenceNumber: 103,
			},
			expectError: true,
		},
		{
			name: "unsupported operation type",
			request: models.BuildRequest{
				SourceAccount:  source.Address(),
				SequenceNumber: 104,
				Operations:     []models.OperationRequest{{Type: "merge_account"}},
			},
			expectError: true,
		},
		{
			name: "invalid source account",
			request: models.BuildRequest{
				SourceAccount:  "not an address",
				SequenceNumber: 105,
				Operations: []models.OperationRequest{
					{Type: "payment", Destination: destination.Address(), Amount: 1},
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forged, err := forge.Build(tt.request)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, forged)
		})
	}
}

func TestForgeBuildSignedRoundTrip(t *testing.T) {
	forge := testForge(t)
	source := keypair.MustRandom()
	destination := keypair.MustRandom()

	// Sign out of band, the way an external signer would, then hand the
	// decorated signature back to the forge.
	tx, err := txbuilder.NewTransaction(txbuilder.TransactionParams{
		SourceAccount: txbuilder.MustAccount(source.Address()),
		Sequence:      200,
		Operations: []txbuilder.Operation{
			&txbuilder.Payment{
				Destination: txbuilder.MustAccount(destination.Address()),
				Asset:       txbuilder.NativeAsset,
				Amount:      3_0000000,
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Sign(network.TestNetworkPassphrase, source))
	envelopeB64, err := tx.EnvelopeBase64()
	require.NoError(t, err)

	decoded, err := forge.Decode(envelopeB64)
	require.NoError(t, err)
	assert.Equal(t, "v1", decoded.EnvelopeVersion)
	assert.Equal(t, source.Address(), decoded.SourceAccount)
	assert.Equal(t, int64(200), decoded.SequenceNumber)
	assert.Equal(t, int32(1), decoded.SignatureCount)
	assert.Nil(t, decoded.TimeBounds)

	expectedHash, err := tx.Hash(network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, int64(1), forge.Snapshot().DecodedCount)
	assert.Len(t, decoded.Hash, 64)
	assert.Equal(t, hex.EncodeToString(expectedHash[:]), decoded.Hash)
}

func TestForgeDecodeMalformed(t *testing.T) {
	forge := testForge(t)
	_, err := forge.Decode("definitely not xdr")
	assert.Error(t, err)
}

func TestForgeArchives(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.NewEntry(logrus.New())
	forge, err := NewForge(&Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
		LogLevel:          "error",
	}, mockDB, logger)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO forged_transactions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	source := keypair.MustRandom()
	destination := keypair.MustRandom()
	_, err = forge.Build(models.BuildRequest{
		SourceAccount:  source.Address(),
		SequenceNumber: 1,
		Operations: []models.OperationRequest{
			{Type: "payment", Destination: destination.Address(), Amount: 1_0000000},
		},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
	stats := forge.Snapshot()
	assert.Equal(t, int64(1), stats.BuiltCount)
	assert.Equal(t, int64(1), stats.StoredCount)
}

func TestForgeSnapshotConcurrent(t *testing.T) {
	forge := testForge(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			forge.incrementDecoded()
		}()
		go func() {
			defer wg.Done()
			_ = forge.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), forge.Snapshot().DecodedCount)
}
