package handlers

import (
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/xdr"

	"github.com/daccred/lumenforge.attest.so/models"
	"github.com/daccred/lumenforge.attest.so/txbuilder"
)

// Forge assembles, hashes and decodes transaction envelopes and archives
// what it builds.
type Forge struct {
	config *Config
	db     *sql.DB
	mu     sync.RWMutex
	stats  *models.Stats
	logger *logrus.Entry
}

// Config holds the forge configuration
type Config struct {
	NetworkPassphrase string
	BaseFee           uint32
	LogLevel          string
}

func NewForge(cfg *Config, db *sql.DB, logger *logrus.Entry) (*Forge, error) {
	if cfg.NetworkPassphrase == "" {
		return nil, fmt.Errorf("network passphrase is required")
	}
	if cfg.LogLevel != "" {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.Logger.SetLevel(level)
		}
	}
	return &Forge{
		config: cfg,
		db:     db,
		logger: logger,
		stats:  &models.Stats{StartTime: time.Now()},
	}, nil
}

// Snapshot copies the current stats under the forge's lock, so readers
// never race the increment helpers.
func (f *Forge) Snapshot() models.Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return *f.stats
}

// Build assembles a transaction from the request, computes its signature
// base and network hash, and archives the result. When the request carries
// signatures, the submission envelope is produced as well.
func (f *Forge) Build(req models.BuildRequest) (*models.ForgedTransaction, error) {
	sourceAccount, err := txbuilder.NewAccount(req.SourceAccount)
	if err != nil {
		return nil, err
	}

	operations := make([]txbuilder.Operation, len(req.Operations))
	for i, opReq := range req.Operations {
		operations[i], err = buildOperation(opReq)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}

	memo, err := buildMemo(req.Memo)
	if err != nil {
		return nil, err
	}

	var timeBounds *txbuilder.TimeBounds
	if req.TimeBounds != nil {
		timeBounds = txbuilder.NewTimeBounds(req.TimeBounds.MinTime, req.TimeBounds.MaxTime)
	}

	tx, err := txbuilder.NewTransaction(txbuilder.TransactionParams{
		SourceAccount: sourceAccount,
		Sequence:      req.SequenceNumber,
		Operations:    operations,
		Memo:          memo,
		TimeBounds:    timeBounds,
		Fee:           req.Fee,
	})
	if err != nil {
		return nil, err
	}

	for _, sigReq := range req.Signatures {
		sig, err := decodeSignature(sigReq)
		if err != nil {
			return nil, err
		}
		tx.AppendSignature(sig)
	}

	base, err := tx.SignatureBase(f.config.NetworkPassphrase)
	if err != nil {
		return nil, fmt.Errorf("computing signature base: %w", err)
	}
	hash, err := tx.Hash(f.config.NetworkPassphrase)
	if err != nil {
		return nil, err
	}
	body, err := tx.BuildXDR()
	if err != nil {
		return nil, err
	}
	bodyBytes, err := body.MarshalBinary()
	if err != nil {
		return nil, err
	}

	memoType, memoValue := memoView(tx.Memo())
	forged := &models.ForgedTransaction{
		Hash:           hex.EncodeToString(hash[:]),
		SourceAccount:  tx.SourceAccount().Address(),
		SequenceNumber: tx.SequenceNumber(),
		Fee:            tx.Fee(),
		OperationCount: int32(len(tx.Operations())),
		MemoType:       memoType,
		MemoValue:      memoValue,
		Network:        f.config.NetworkPassphrase,
		TransactionXDR: base64.StdEncoding.EncodeToString(bodyBytes),
		SignatureBase:  base64.StdEncoding.EncodeToString(base),
		CreatedAt:      time.Now(),
	}

	if len(tx.Signatures()) > 0 {
		forged.EnvelopeXDR, err = tx.EnvelopeBase64()
		if err != nil {
			return nil, err
		}
	}

	if f.db != nil {
		if err := f.store(forged); err != nil {
			f.logger.Errorf("Failed to archive transaction %s: %v", forged.Hash, err)
		} else {
			f.incrementStored()
		}
	}
	f.incrementBuilt()
	f.logger.Infof("Built transaction %s with %d operations", forged.Hash, forged.OperationCount)
	return forged, nil
}

// Decode unpacks an envelope of either historical shape into a JSON view.
func (f *Forge) Decode(envelopeB64 string) (*models.DecodedTransaction, error) {
	var envelope xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(envelopeB64, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}

	var version string
	switch envelope.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		version = "v0"
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		version = "v1"
	}

	tx, err := txbuilder.FromEnvelopeXDR(envelope)
	if err != nil {
		return nil, err
	}
	hash, err := tx.Hash(f.config.NetworkPassphrase)
	if err != nil {
		return nil, err
	}

	memoType, memoValue := memoView(tx.Memo())
	decoded := &models.DecodedTransaction{
		Hash:            hex.EncodeToString(hash[:]),
		EnvelopeVersion: version,
		SourceAccount:   tx.SourceAccount().Address(),
		SequenceNumber:  tx.SequenceNumber(),
		Fee:             tx.Fee(),
		MemoType:        memoType,
		MemoValue:       memoValue,
		OperationCount:  int32(len(tx.Operations())),
		SignatureCount:  int32(len(tx.Signatures())),
	}
	if tb := tx.TimeBounds(); tb != nil {
		decoded.TimeBounds = &models.TimeBounds{MinTime: tb.MinTime, MaxTime: tb.MaxTime}
	}
	f.incrementDecoded()
	return decoded, nil
}

func buildOperation(req models.OperationRequest) (txbuilder.Operation, error) {
	var opSource *txbuilder.Account
	if req.SourceAccount != "" {
		account, err := txbuilder.NewAccount(req.SourceAccount)
		if err != nil {
			return nil, err
		}
		opSource = &account
	}

	switch req.Type {
	case "payment":
		destination, err := txbuilder.NewAccount(req.Destination)
		if err != nil {
			return nil, err
		}
		return &txbuilder.Payment{
			SourceAccount: opSource,
			Destination:   destination,
			Asset:         txbuilder.Asset{Code: req.AssetCode, Issuer: req.AssetIssuer},
			Amount:        req.Amount,
		}, nil
	case "create_account":
		return &txbuilder.CreateAccount{
			SourceAccount:   opSource,
			Destination:     req.Destination,
			StartingBalance: req.StartingBalance,
		}, nil
	case "manage_data":
		op := &txbuilder.ManageData{SourceAccount: opSource, Name: req.Name}
		if req.Value != "" {
			value, err := base64.StdEncoding.DecodeString(req.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid data value: %w", err)
			}
			op.Value = value
		}
		return op, nil
	default:
		return nil, fmt.Errorf("unsupported operation type %q", req.Type)
	}
}

func buildMemo(req *models.MemoRequest) (txbuilder.Memo, error) {
	if req == nil {
		return nil, nil
	}
	switch req.Type {
	case "", "none":
		return nil, nil
	case "text":
		return txbuilder.MemoText(req.Value), nil
	case "id":
		id, err := strconv.ParseUint(req.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid memo id %q: %w", req.Value, err)
		}
		return txbuilder.MemoID(id), nil
	case "hash", "return":
		raw, err := hex.DecodeString(req.Value)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("memo %s must be 32 hex-encoded bytes", req.Type)
		}
		var h [32]byte
		copy(h[:], raw)
		if req.Type == "hash" {
			return txbuilder.MemoHash(h), nil
		}
		return txbuilder.MemoReturn(h), nil
	default:
		return nil, fmt.Errorf("unsupported memo type %q", req.Type)
	}
}

func memoView(memo txbuilder.Memo) (string, string) {
	switch m := memo.(type) {
	case nil:
		return "", ""
	case txbuilder.MemoText:
		return "text", string(m)
	case txbuilder.MemoID:
		return "id", strconv.FormatUint(uint64(m), 10)
	case txbuilder.MemoHash:
		return "hash", hex.EncodeToString(m[:])
	case txbuilder.MemoReturn:
		return "return", hex.EncodeToString(m[:])
	default:
		return "unknown", ""
	}
}

func decodeSignature(req models.SignatureRequest) (xdr.DecoratedSignature, error) {
	hint, err := base64.StdEncoding.DecodeString(req.Hint)
	if err != nil || len(hint) != 4 {
		return xdr.DecoratedSignature{}, fmt.Errorf("signature hint must be 4 base64-encoded bytes")
	}
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return xdr.DecoratedSignature{}, fmt.Errorf("invalid signature: %w", err)
	}
	var decorated xdr.DecoratedSignature
	copy(decorated.Hint[:], hint)
	decorated.Signature = xdr.Signature(signature)
	return decorated, nil
}

func (f *Forge) store(forged *models.ForgedTransaction) error {
	_, err := f.db.Exec(`
		INSERT INTO forged_transactions (hash, source_account, sequence_number, fee,
			operation_count, memo_type, memo_value, network, transaction_xdr,
			signature_base, envelope_xdr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (hash) DO NOTHING`,
		forged.Hash, forged.SourceAccount, forged.SequenceNumber, forged.Fee,
		forged.OperationCount, forged.MemoType, forged.MemoValue, forged.Network,
		forged.TransactionXDR, forged.SignatureBase, forged.EnvelopeXDR, forged.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}
	return nil
}

// Stats helpers
func (f *Forge) incrementBuilt()   { f.mu.Lock(); defer f.mu.Unlock(); f.stats.BuiltCount++; f.stats.LastUpdateTime = time.Now() }
func (f *Forge) incrementDecoded() { f.mu.Lock(); defer f.mu.Unlock(); f.stats.DecodedCount++; f.stats.LastUpdateTime = time.Now() }
func (f *Forge) incrementStored()  { f.mu.Lock(); defer f.mu.Unlock(); f.stats.StoredCount++ }
