package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/replay"
	amino "github.com/tendermint/go-amino"
)

var _ custody.Msg = (*CreateVaultMsg)(nil)
var _ custody.Msg = (*DepositMsg)(nil)
var _ custody.Msg = (*WithdrawMsg)(nil)

const (
	pathCreateVaultMsg = "vault/create"
	pathDepositMsg     = "vault/deposit"
	pathWithdrawMsg    = "vault/withdraw"

	createVaultCost int64 = 300
	depositCost     int64 = 100
	withdrawCost    int64 = 500
)

// CreateVaultMsg creates a vault holding given currency, guarded by an
// existing registry. It must be signed by an authorized signer of that
// registry.
type CreateVaultMsg struct {
	RegistryID []byte `json:"registry_id"`
	Ticker     string `json:"ticker"`
}

func (CreateVaultMsg) Path() string {
	return pathCreateVaultMsg
}

func (m *CreateVaultMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateVaultMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateVaultMsg) Validate() error {
	err := errors.Wrap(orm.ValidateSequence(m.RegistryID), "registry id")
	if !coin.IsCC(m.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	return err
}

// DepositMsg moves funds from the source wallet into a vault. It must be
// signed by the source.
type DepositMsg struct {
	VaultID []byte          `json:"vault_id"`
	Source  custody.Address `json:"source"`
	Amount  *coin.Coin      `json:"amount"`
}

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *DepositMsg) Validate() error {
	err := errors.Wrap(orm.ValidateSequence(m.VaultID), "vault id")
	err = errors.Append(err, errors.Wrap(m.Source.Validate(), "source"))
	return errors.Append(err, validateAmount(m.Amount))
}

// WithdrawMsg releases funds from a vault to the recipient. The signature
// over WithdrawDigest authorizes it, so anybody can submit the message.
type WithdrawMsg struct {
	VaultID   []byte          `json:"vault_id"`
	Recipient custody.Address `json:"recipient"`
	Amount    *coin.Coin      `json:"amount"`
	AuthID    []byte          `json:"auth_id"`
	Signature []byte          `json:"signature"`
}

func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// Validate checks the form of the message. The signature is verified by the
// handler, after the authorization ID was found unused.
func (m *WithdrawMsg) Validate() error {
	err := errors.Wrap(orm.ValidateSequence(m.VaultID), "vault id")
	err = errors.Append(err, errors.Wrap(m.Recipient.Validate(), "recipient"))
	err = errors.Append(err, validateAmount(m.Amount))
	return errors.Append(err, replay.ValidateAuthID(m.AuthID))
}

// Withdrawal returns the withdrawal requested by this message.
func (m *WithdrawMsg) Withdrawal() Withdrawal {
	w := Withdrawal{
		VaultID:   m.VaultID,
		Recipient: m.Recipient,
		AuthID:    m.AuthID,
		Signature: m.Signature,
	}
	if m.Amount != nil {
		w.Amount = *m.Amount
	}
	return w
}

func validateAmount(amount *coin.Coin) error {
	if coin.IsEmpty(amount) || !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %v", amount)
	}
	return errors.Wrap(amount.Validate(), "amount")
}

// RegisterCodec registers the messages of this package in the application
// codec, so that they can be carried by a transaction.
func RegisterCodec(c *amino.Codec) {
	c.RegisterConcrete(&CreateVaultMsg{}, pathCreateVaultMsg, nil)
	c.RegisterConcrete(&DepositMsg{}, pathDepositMsg, nil)
	c.RegisterConcrete(&WithdrawMsg{}, pathWithdrawMsg, nil)
}
