package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the content of a wallet, all coins held by a single address.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Set) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

// Validate requires that all coins are in alphabetical order and that the
// wallet is not empty. Empty wallets are deleted instead of being stored.
func (s *Set) Validate() error {
	if s.Coins.IsEmpty() {
		return errors.Wrap(errors.ErrEmpty, "coins")
	}
	return s.Coins.Validate()
}

// WalletBucket stores wallets by their owner address.
type WalletBucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash bucket with default name
func NewBucket() *WalletBucket {
	return &WalletBucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Set{}),
	}
}

// Coins returns the content of the wallet of given address. An address that
// never received coins has an empty wallet.
func (b *WalletBucket) Coins(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error) {
	var set Set
	switch err := b.One(db, addr, &set); {
	case err == nil:
		return set.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Save stores the coins as the wallet of given address. Saving an empty set
// removes the wallet.
func (b *WalletBucket) Save(db custody.KVStore, addr custody.Address, coins coin.Coins) error {
	if coins.IsEmpty() {
		if err := b.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	_, err := b.Put(db, addr, &Set{Coins: coins})
	return err
}
