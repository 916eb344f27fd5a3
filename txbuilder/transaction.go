// Package txbuilder assembles Stellar transactions, computes the canonical
// byte sequence that gets signed, and converts between the in-memory
// representation and the two historical envelope formats.
package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/hash"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"
)

// MinBaseFee is the per-operation fee floor, in stroops. It is only used as
// the default-fee multiplier; an explicit fee override is never validated
// against it, since the network itself decides fee sufficiency.
const MinBaseFee = 100

var (
	// ErrInvalidOperationList is returned when a transaction is constructed
	// with no operations.
	ErrInvalidOperationList = errors.New("transaction requires at least one operation")
	// ErrInvalidOperationType is returned when an entry of the operation
	// list is not a usable Operation value.
	ErrInvalidOperationType = errors.New("operation list contains an unrecognized operation")
	// ErrUnsignedTransaction is returned when envelope assembly is attempted
	// before any signature has been attached.
	ErrUnsignedTransaction = errors.New("transaction has no signatures")
)

// TransactionParams collects the inputs of NewTransaction. Memo, TimeBounds
// and Fee are optional: a nil Memo means MEMO_NONE, a nil TimeBounds means
// unrestricted validity, and a zero Fee means MinBaseFee per operation.
type TransactionParams struct {
	SourceAccount Account
	Sequence      int64
	Operations    []Operation
	Memo          Memo
	TimeBounds    *TimeBounds
	Fee           uint32
}

// Transaction is one ledger operation batch awaiting signature. Its
// structural fields are immutable after construction; only the signature
// list grows, and callers appending signatures concurrently must provide
// their own mutual exclusion.
type Transaction struct {
	sourceAccount Account
	sequence      int64
	fee           uint32
	operations    []Operation
	memo          Memo
	timeBounds    *TimeBounds
	signatures    []xdr.DecoratedSignature
}

// NewTransaction validates params and returns the constructed transaction.
func NewTransaction(params TransactionParams) (*Transaction, error) {
	if len(params.Operations) == 0 {
		return nil, ErrInvalidOperationList
	}
	for i, op := range params.Operations {
		if op == nil {
			return nil, fmt.Errorf("%w: operation %d is nil", ErrInvalidOperationType, i)
		}
	}
	if _, err := params.SourceAccount.toXDR(); err != nil {
		return nil, err
	}
	fee := params.Fee
	if fee == 0 {
		fee = MinBaseFee * uint32(len(params.Operations))
	}
	tx := &Transaction{
		sourceAccount: params.SourceAccount,
		sequence:      params.Sequence,
		fee:           fee,
		operations:    make([]Operation, len(params.Operations)),
		memo:          params.Memo,
		timeBounds:    params.TimeBounds,
	}
	copy(tx.operations, params.Operations)
	return tx, nil
}

func (t *Transaction) SourceAccount() Account { return t.sourceAccount }
func (t *Transaction) SequenceNumber() int64  { return t.sequence }
func (t *Transaction) Fee() uint32            { return t.fee }
func (t *Transaction) Memo() Memo             { return t.memo }

// TimeBounds returns the validity window, or nil when unrestricted.
func (t *Transaction) TimeBounds() *TimeBounds { return t.timeBounds }

func (t *Transaction) Operations() []Operation {
	ops := make([]Operation, len(t.operations))
	copy(ops, t.operations)
	return ops
}

func (t *Transaction) Signatures() []xdr.DecoratedSignature {
	sigs := make([]xdr.DecoratedSignature, len(t.signatures))
	copy(sigs, t.signatures)
	return sigs
}

// BuildXDR encodes the transaction body in its canonical wire form. It is
// total for a constructed transaction; only operation encoding failures
// propagate.
func (t *Transaction) BuildXDR() (xdr.Transaction, error) {
	sourceAccount, err := t.sourceAccount.toXDR()
	if err != nil {
		return xdr.Transaction{}, err
	}
	memo, err := memoToXDR(t.memo)
	if err != nil {
		return xdr.Transaction{}, err
	}
	operations := make([]xdr.Operation, len(t.operations))
	for i, op := range t.operations {
		operations[i], err = op.BuildXDR()
		if err != nil {
			return xdr.Transaction{}, fmt.Errorf("encoding operation %d: %w", i, err)
		}
	}
	return xdr.Transaction{
		SourceAccount: sourceAccount,
		Fee:           xdr.Uint32(t.fee),
		SeqNum:        xdr.SequenceNumber(t.sequence),
		Cond:          t.timeBounds.toPreconditions(),
		Memo:          memo,
		Operations:    operations,
	}, nil
}

// SignatureBase computes the exact byte sequence that must be hashed and
// signed to authorize this transaction on the network identified by
// passphrase: the network id digest, then the 4-byte ENVELOPE_TYPE_TX
// discriminant, then the canonical transaction body. Field order and widths
// are part of the contract; any divergence silently invalidates every
// signature.
func (t *Transaction) SignatureBase(networkPassphrase string) ([]byte, error) {
	tx, err := t.BuildXDR()
	if err != nil {
		return nil, err
	}
	networkID := hash.Hash([]byte(networkPassphrase))

	var base bytes.Buffer
	base.Write(networkID[:])
	if _, err := xdr3.Marshal(&base, int32(xdr.EnvelopeTypeEnvelopeTypeTx)); err != nil {
		return nil, err
	}
	body, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	base.Write(body)
	return base.Bytes(), nil
}

// Hash is the digest of SignatureBase; it is both what gets signed and the
// transaction's network-wide identifier.
func (t *Transaction) Hash(networkPassphrase string) ([32]byte, error) {
	base, err := t.SignatureBase(networkPassphrase)
	if err != nil {
		return [32]byte{}, err
	}
	return hash.Hash(base), nil
}

// Sign computes the network hash and appends one decorated signature per
// keypair.
func (t *Transaction) Sign(networkPassphrase string, keypairs ...*keypair.Full) error {
	h, err := t.Hash(networkPassphrase)
	if err != nil {
		return err
	}
	for _, kp := range keypairs {
		sig, err := kp.SignDecorated(h[:])
		if err != nil {
			return err
		}
		t.signatures = append(t.signatures, sig)
	}
	return nil
}

// AppendSignature attaches a signature produced by an external signer.
func (t *Transaction) AppendSignature(sig xdr.DecoratedSignature) {
	t.signatures = append(t.signatures, sig)
}
