package txbuilder

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// Memo is the optional value attached to a transaction for off-chain
// correlation. A nil Memo encodes as MEMO_NONE.
type Memo interface {
	ToXDR() (xdr.Memo, error)
}

// MemoText carries up to 28 bytes of text.
type MemoText string

// MemoID carries a 64-bit id.
type MemoID uint64

// MemoHash carries a 32-byte hash.
type MemoHash [32]byte

// MemoReturn carries the hash of the transaction being refunded.
type MemoReturn [32]byte

func (m MemoText) ToXDR() (xdr.Memo, error) {
	if len(m) > 28 {
		return xdr.Memo{}, fmt.Errorf("memo text exceeds 28 bytes: %d", len(m))
	}
	text := string(m)
	return xdr.Memo{Type: xdr.MemoTypeMemoText, Text: &text}, nil
}

func (m MemoID) ToXDR() (xdr.Memo, error) {
	id := xdr.Uint64(m)
	return xdr.Memo{Type: xdr.MemoTypeMemoId, Id: &id}, nil
}

func (m MemoHash) ToXDR() (xdr.Memo, error) {
	h := xdr.Hash(m)
	return xdr.Memo{Type: xdr.MemoTypeMemoHash, Hash: &h}, nil
}

func (m MemoReturn) ToXDR() (xdr.Memo, error) {
	h := xdr.Hash(m)
	return xdr.Memo{Type: xdr.MemoTypeMemoReturn, RetHash: &h}, nil
}

func memoToXDR(m Memo) (xdr.Memo, error) {
	if m == nil {
		return xdr.Memo{Type: xdr.MemoTypeMemoNone}, nil
	}
	return m.ToXDR()
}

func memoFromXDR(x xdr.Memo) (Memo, error) {
	switch x.Type {
	case xdr.MemoTypeMemoNone:
		return nil, nil
	case xdr.MemoTypeMemoText:
		return MemoText(x.MustText()), nil
	case xdr.MemoTypeMemoId:
		return MemoID(x.MustId()), nil
	case xdr.MemoTypeMemoHash:
		return MemoHash(x.MustHash()), nil
	case xdr.MemoTypeMemoReturn:
		return MemoReturn(x.MustRetHash()), nil
	default:
		return nil, fmt.Errorf("unknown memo type: %v", x.Type)
	}
}
