package txbuilder

import (
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Account is a multiplexed source account reference: either a plain ed25519
// account (G... address) or an account paired with a caller-chosen sub-id
// (M... address). Immutable once constructed.
type Account struct {
	address string
}

// NewAccount validates and wraps a G... or M... address.
func NewAccount(address string) (Account, error) {
	if _, err := xdr.AddressToMuxedAccount(address); err != nil {
		return Account{}, fmt.Errorf("invalid account address %q: %w", address, err)
	}
	return Account{address: address}, nil
}

// NewMuxedAccount pairs a plain G... account with a sub-id, producing the
// M... representation.
func NewMuxedAccount(accountID string, id uint64) (Account, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, accountID)
	if err != nil {
		return Account{}, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	var key xdr.Uint256
	copy(key[:], raw)
	muxed := xdr.MuxedAccount{
		Type: xdr.CryptoKeyTypeKeyTypeMuxedEd25519,
		Med25519: &xdr.MuxedAccountMed25519{
			Id:      xdr.Uint64(id),
			Ed25519: key,
		},
	}
	address, err := muxed.GetAddress()
	if err != nil {
		return Account{}, err
	}
	return Account{address: address}, nil
}

// MustAccount is a NewAccount that panics on malformed input. For variables
// and tests.
func MustAccount(address string) Account {
	account, err := NewAccount(address)
	if err != nil {
		panic(err)
	}
	return account
}

// Address returns the address as constructed (G... or M...).
func (a Account) Address() string {
	return a.address
}

// AccountID returns the underlying plain account id (G...), stripping any
// sub-id.
func (a Account) AccountID() (string, error) {
	muxed, err := a.toXDR()
	if err != nil {
		return "", err
	}
	return muxed.ToAccountId().Address(), nil
}

// MuxedID reports the sub-id and whether one is present.
func (a Account) MuxedID() (uint64, bool) {
	muxed, err := a.toXDR()
	if err != nil || muxed.Type != xdr.CryptoKeyTypeKeyTypeMuxedEd25519 {
		return 0, false
	}
	return uint64(muxed.Med25519.Id), true
}

func (a Account) toXDR() (xdr.MuxedAccount, error) {
	if a.address == "" {
		return xdr.MuxedAccount{}, fmt.Errorf("empty account address")
	}
	return xdr.AddressToMuxedAccount(a.address)
}

func accountFromXDR(muxed xdr.MuxedAccount) (Account, error) {
	address, err := muxed.GetAddress()
	if err != nil {
		return Account{}, err
	}
	return Account{address: address}, nil
}

// accountFromEd25519 promotes a raw ed25519 key to the multiplexed
// representation with no sub-id. Used by the legacy envelope decode path.
func accountFromEd25519(key xdr.Uint256) (Account, error) {
	address, err := strkey.Encode(strkey.VersionByteAccountID, key[:])
	if err != nil {
		return Account{}, err
	}
	return Account{address: address}, nil
}
