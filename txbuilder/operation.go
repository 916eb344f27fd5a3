package txbuilder

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// Operation is one entry of a transaction's operation list. The transaction
// core treats operations as opaque: it only ever asks for the wire form and
// never branches on the concrete kind.
type Operation interface {
	BuildXDR() (xdr.Operation, error)
}

// Asset identifies the asset moved by a payment. The zero value is the
// native asset; otherwise Code and Issuer name a credit asset.
type Asset struct {
	Code   string
	Issuer string
}

// NativeAsset is the network's native asset (lumens).
var NativeAsset = Asset{}

func (a Asset) IsNative() bool {
	return a.Code == "" && a.Issuer == ""
}

func (a Asset) toXDR() (xdr.Asset, error) {
	if a.IsNative() {
		return xdr.NewAsset(xdr.AssetTypeAssetTypeNative, nil)
	}
	issuer, err := xdr.AddressToAccountId(a.Issuer)
	if err != nil {
		return xdr.Asset{}, fmt.Errorf("invalid asset issuer %q: %w", a.Issuer, err)
	}
	var asset xdr.Asset
	if err := asset.SetCredit(a.Code, issuer); err != nil {
		return xdr.Asset{}, err
	}
	return asset, nil
}

func assetFromXDR(x xdr.Asset) Asset {
	if x.Type == xdr.AssetTypeAssetTypeNative {
		return NativeAsset
	}
	var typ, code, issuer string
	x.MustExtract(&typ, &code, &issuer)
	return Asset{Code: code, Issuer: issuer}
}

// Payment sends Amount stroops of Asset to Destination. SourceAccount, when
// set, overrides the transaction source for this operation only.
type Payment struct {
	SourceAccount *Account
	Destination   Account
	Asset         Asset
	Amount        int64
}

func (p *Payment) BuildXDR() (xdr.Operation, error) {
	destination, err := p.Destination.toXDR()
	if err != nil {
		return xdr.Operation{}, err
	}
	asset, err := p.Asset.toXDR()
	if err != nil {
		return xdr.Operation{}, err
	}
	body, err := xdr.NewOperationBody(xdr.OperationTypePayment, xdr.PaymentOp{
		Destination: destination,
		Asset:       asset,
		Amount:      xdr.Int64(p.Amount),
	})
	if err != nil {
		return xdr.Operation{}, err
	}
	source, err := opSourceToXDR(p.SourceAccount)
	if err != nil {
		return xdr.Operation{}, err
	}
	return xdr.Operation{SourceAccount: source, Body: body}, nil
}

// CreateAccount funds a new account with StartingBalance stroops. The
// destination must be a plain account id, never a muxed address.
type CreateAccount struct {
	SourceAccount   *Account
	Destination     string
	StartingBalance int64
}

func (c *CreateAccount) BuildXDR() (xdr.Operation, error) {
	destination, err := xdr.AddressToAccountId(c.Destination)
	if err != nil {
		return xdr.Operation{}, fmt.Errorf("invalid destination %q: %w", c.Destination, err)
	}
	body, err := xdr.NewOperationBody(xdr.OperationTypeCreateAccount, xdr.CreateAccountOp{
		Destination:     destination,
		StartingBalance: xdr.Int64(c.StartingBalance),
	})
	if err != nil {
		return xdr.Operation{}, err
	}
	source, err := opSourceToXDR(c.SourceAccount)
	if err != nil {
		return xdr.Operation{}, err
	}
	return xdr.Operation{SourceAccount: source, Body: body}, nil
}

// ManageData attaches, updates or (with a nil Value) removes a named data
// entry on the source account.
type ManageData struct {
	SourceAccount *Account
	Name          string
	Value         []byte
}

func (m *ManageData) BuildXDR() (xdr.Operation, error) {
	op := xdr.ManageDataOp{DataName: xdr.String64(m.Name)}
	if m.Value != nil {
		value := xdr.DataValue(m.Value)
		op.DataValue = &value
	}
	body, err := xdr.NewOperationBody(xdr.OperationTypeManageData, op)
	if err != nil {
		return xdr.Operation{}, err
	}
	source, err := opSourceToXDR(m.SourceAccount)
	if err != nil {
		return xdr.Operation{}, err
	}
	return xdr.Operation{SourceAccount: source, Body: body}, nil
}

// RawOperation wraps an already-encoded operation verbatim. Decoded envelopes
// carry kinds this package has no dedicated type for as RawOperation, so
// every structurally valid envelope survives a decode/encode round trip.
type RawOperation struct {
	Op xdr.Operation
}

func (r *RawOperation) BuildXDR() (xdr.Operation, error) {
	return r.Op, nil
}

func opSourceToXDR(source *Account) (*xdr.MuxedAccount, error) {
	if source == nil {
		return nil, nil
	}
	muxed, err := source.toXDR()
	if err != nil {
		return nil, err
	}
	return &muxed, nil
}

func opSourceFromXDR(muxed *xdr.MuxedAccount) (*Account, error) {
	if muxed == nil {
		return nil, nil
	}
	account, err := accountFromXDR(*muxed)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func operationFromXDR(x xdr.Operation) (Operation, error) {
	source, err := opSourceFromXDR(x.SourceAccount)
	if err != nil {
		return nil, err
	}
	switch x.Body.Type {
	case xdr.OperationTypePayment:
		op := x.Body.MustPaymentOp()
		destination, err := accountFromXDR(op.Destination)
		if err != nil {
			return nil, err
		}
		return &Payment{
			SourceAccount: source,
			Destination:   destination,
			Asset:         assetFromXDR(op.Asset),
			Amount:        int64(op.Amount),
		}, nil
	case xdr.OperationTypeCreateAccount:
		op := x.Body.MustCreateAccountOp()
		return &CreateAccount{
			SourceAccount:   source,
			Destination:     op.Destination.Address(),
			StartingBalance: int64(op.StartingBalance),
		}, nil
	case xdr.OperationTypeManageData:
		op := x.Body.MustManageDataOp()
		decoded := &ManageData{SourceAccount: source, Name: string(op.DataName)}
		if op.DataValue != nil {
			decoded.Value = []byte(*op.DataValue)
		}
		return decoded, nil
	default:
		return &RawOperation{Op: x}, nil
	}
}
