package txbuilder

import (
	"encoding/base64"
	"fmt"

	"github.com/stellar/go/xdr"
)

// ToEnvelopeXDR wraps the transaction and its accumulated signatures into
// the current (V1) envelope shape. The legacy V0 shape is only ever a decode
// target; this package never produces it.
func (t *Transaction) ToEnvelopeXDR() (xdr.TransactionEnvelope, error) {
	if len(t.signatures) == 0 {
		return xdr.TransactionEnvelope{}, ErrUnsignedTransaction
	}
	tx, err := t.BuildXDR()
	if err != nil {
		return xdr.TransactionEnvelope{}, err
	}
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx:         tx,
			Signatures: t.Signatures(),
		},
	}, nil
}

// EnvelopeBase64 is ToEnvelopeXDR serialized to the base64 form used for
// network submission.
func (t *Transaction) EnvelopeBase64() (string, error) {
	envelope, err := t.ToEnvelopeXDR()
	if err != nil {
		return "", err
	}
	raw, err := envelope.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// FromEnvelopeXDR reconstructs a transaction from either historical envelope
// shape, selected by the envelope discriminant. Fee-bump envelopes are not a
// transaction in this sense and are rejected.
func FromEnvelopeXDR(envelope xdr.TransactionEnvelope) (*Transaction, error) {
	switch envelope.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		return FromV1EnvelopeXDR(*envelope.V1)
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		return FromV0EnvelopeXDR(*envelope.V0)
	default:
		return nil, fmt.Errorf("unsupported envelope type: %v", envelope.Type)
	}
}

// FromV1EnvelopeXDR reconstructs a transaction from the current envelope
// shape. The source account may carry a sub-id.
func FromV1EnvelopeXDR(envelope xdr.TransactionV1Envelope) (*Transaction, error) {
	tx := envelope.Tx
	sourceAccount, err := accountFromXDR(tx.SourceAccount)
	if err != nil {
		return nil, err
	}
	return fromXDRParts(
		sourceAccount,
		tx.Fee,
		tx.SeqNum,
		timeBoundsFromPreconditions(tx.Cond),
		tx.Memo,
		tx.Operations,
		envelope.Signatures,
	)
}

// FromV0EnvelopeXDR reconstructs a transaction from the legacy envelope
// shape. Its source field predates multiplexed accounts and holds a bare
// ed25519 key, which is promoted to the multiplexed representation with no
// sub-id.
func FromV0EnvelopeXDR(envelope xdr.TransactionV0Envelope) (*Transaction, error) {
	tx := envelope.Tx
	sourceAccount, err := accountFromEd25519(tx.SourceAccountEd25519)
	if err != nil {
		return nil, err
	}
	return fromXDRParts(
		sourceAccount,
		tx.Fee,
		tx.SeqNum,
		timeBoundsFromXDR(tx.TimeBounds),
		tx.Memo,
		tx.Operations,
		envelope.Signatures,
	)
}

// DecodeEnvelope unmarshals a base64 envelope of either shape.
func DecodeEnvelope(envelopeB64 string) (*Transaction, error) {
	var envelope xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(envelopeB64, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	return FromEnvelopeXDR(envelope)
}

func fromXDRParts(
	sourceAccount Account,
	fee xdr.Uint32,
	seqNum xdr.SequenceNumber,
	timeBounds *TimeBounds,
	memoXDR xdr.Memo,
	operationsXDR []xdr.Operation,
	signatures []xdr.DecoratedSignature,
) (*Transaction, error) {
	memo, err := memoFromXDR(memoXDR)
	if err != nil {
		return nil, err
	}
	operations := make([]Operation, len(operationsXDR))
	for i, op := range operationsXDR {
		operations[i], err = operationFromXDR(op)
		if err != nil {
			return nil, fmt.Errorf("decoding operation %d: %w", i, err)
		}
	}
	tx := &Transaction{
		sourceAccount: sourceAccount,
		sequence:      int64(seqNum),
		fee:           uint32(fee),
		operations:    operations,
		memo:          memo,
		timeBounds:    timeBounds,
		signatures:    make([]xdr.DecoratedSignature, len(signatures)),
	}
	copy(tx.signatures, signatures)
	return tx, nil
}
