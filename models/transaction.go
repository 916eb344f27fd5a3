package models

import "time"

// ForgedTransaction is the archive record of one transaction assembled by
// the forge.
type ForgedTransaction struct {
	Hash           string    `json:"hash"`
	SourceAccount  string    `json:"source_account"`
	SequenceNumber int64     `json:"sequence_number"`
	Fee            uint32    `json:"fee"`
	OperationCount int32     `json:"operation_count"`
	MemoType       string    `json:"memo_type,omitempty"`
	MemoValue      string    `json:"memo_value,omitempty"`
	Network        string    `json:"network"`
	TransactionXDR string    `json:"transaction_xdr"`
	SignatureBase  string    `json:"signature_base"`
	EnvelopeXDR    string    `json:"envelope_xdr,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DecodedTransaction is the JSON view of an envelope of either historical
// shape.
type DecodedTransaction struct {
	Hash            string      `json:"hash"`
	EnvelopeVersion string      `json:"envelope_version"`
	SourceAccount   string      `json:"source_account"`
	SequenceNumber  int64       `json:"sequence_number"`
	Fee             uint32      `json:"fee"`
	MemoType        string      `json:"memo_type,omitempty"`
	MemoValue       string      `json:"memo_value,omitempty"`
	TimeBounds      *TimeBounds `json:"time_bounds,omitempty"`
	OperationCount  int32       `json:"operation_count"`
	SignatureCount  int32       `json:"signature_count"`
}

type TimeBounds struct {
	MinTime int64 `json:"min_time"`
	MaxTime int64 `json:"max_time"`
}
