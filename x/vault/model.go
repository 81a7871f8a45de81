package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Vault binds a custody address to an authorization registry.
type Vault struct {
	RegistryID []byte          `json:"registry_id"`
	Ticker     string          `json:"ticker"`
	Address    custody.Address `json:"address"`
}

var _ orm.Model = (*Vault)(nil)

func (v *Vault) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(v)
}

func (v *Vault) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, v)
}

func (v *Vault) Validate() error {
	err := errors.Wrap(orm.ValidateSequence(v.RegistryID), "registry id")
	if !coin.IsCC(v.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", v.Ticker))
	}
	return errors.Append(err, errors.Wrap(v.Address.Validate(), "address"))
}

// Condition returns the condition owned by the vault with given ID. Funds
// held by its address can only be moved by this extension.
func Condition(vaultID []byte) custody.Condition {
	return custody.NewCondition("vault", "seq", vaultID)
}

// NewSequence returns the sequence vault IDs are allocated from.
func NewSequence() orm.Sequence {
	return orm.NewSequence("vault", "id")
}

// NewBucket returns the bucket vaults are stored in.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("vault", &Vault{}, orm.WithIDSequence(NewSequence()))
}
