package models

// BuildRequest describes one transaction to assemble.
type BuildRequest struct {
	SourceAccount  string             `json:"source_account"`
	SequenceNumber int64              `json:"sequence_number"`
	Fee            uint32             `json:"fee,omitempty"`
	Memo           *MemoRequest       `json:"memo,omitempty"`
	TimeBounds     *TimeBounds        `json:"time_bounds,omitempty"`
	Operations     []OperationRequest `json:"operations"`
	Signatures     []SignatureRequest `json:"signatures,omitempty"`
}

type MemoRequest struct {
	Type  string `json:"type"` // text, id, hash, return
	Value string `json:"value"`
}

// OperationRequest is the union of supported operation kinds; Type selects
// which of the remaining fields apply.
type OperationRequest struct {
	Type            string `json:"type"` // payment, create_account, manage_data
	SourceAccount   string `json:"source_account,omitempty"`
	Destination     string `json:"destination,omitempty"`
	AssetCode       string `json:"asset_code,omitempty"`
	AssetIssuer     string `json:"asset_issuer,omitempty"`
	Amount          int64  `json:"amount,omitempty"`
	StartingBalance int64  `json:"starting_balance,omitempty"`
	Name            string `json:"name,omitempty"`
	Value           string `json:"value,omitempty"`
}

// SignatureRequest carries one externally produced decorated signature.
type SignatureRequest struct {
	Hint      string `json:"hint"`      // base64, 4 bytes
	Signature string `json:"signature"` // base64
}

type DecodeRequest struct {
	EnvelopeXDR string `json:"envelope_xdr"`
}
