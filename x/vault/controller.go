package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
)

// Authorizer tells whether an address may approve withdrawals.
type Authorizer interface {
	IsAuthorized(db custody.ReadOnlyKVStore, registryID []byte, signer custody.Address) (bool, error)
}

// Bank holds the funds of vaults and their users.
type Bank interface {
	cash.Balancer
	cash.CoinMover
}

// Controller manages vaults and the funds they hold.
type Controller struct {
	ids    orm.Sequence
	vaults orm.ModelBucket
	authz  Authorizer
	guard  replay.Guard
	bank   Bank
}

// NewController returns a controller working on the default bucket.
func NewController(authz Authorizer, guard replay.Guard, bank Bank) Controller {
	return Controller{
		ids:    NewSequence(),
		vaults: NewBucket(),
		authz:  authz,
		guard:  guard,
		bank:   bank,
	}
}

// Vault loads the vault with given ID.
func (c Controller) Vault(db custody.ReadOnlyKVStore, vaultID []byte) (*Vault, error) {
	var v Vault
	if err := c.vaults.One(db, vaultID, &v); err != nil {
		return nil, errors.Wrapf(err, "vault %X", vaultID)
	}
	return &v, nil
}

// CreateVault stores a new vault for given registry and currency. The
// registry must exist.
func (c Controller) CreateVault(db custody.KVStore, registryID []byte, ticker string) ([]byte, *Vault, error) {
	// An unknown address is never authorized, this only checks that the
	// registry exists.
	if _, err := c.authz.IsAuthorized(db, registryID, nil); err != nil {
		return nil, nil, err
	}
	id, err := c.ids.NextVal(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault ID")
	}
	v := &Vault{
		RegistryID: registryID,
		Ticker:     ticker,
		Address:    Condition(id).Address(),
	}
	if _, err := c.vaults.Put(db, id, v); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store vault")
	}
	return id, v, nil
}

// Balance returns the funds held by the vault.
func (c Controller) Balance(db custody.ReadOnlyKVStore, vaultID []byte) (coin.Coin, error) {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return coin.Coin{}, err
	}
	return c.balance(db, v)
}

func (c Controller) balance(db custody.ReadOnlyKVStore, v *Vault) (coin.Coin, error) {
	coins, err := c.bank.Balance(db, v.Address)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "vault balance")
	}
	return coins.Balance(v.Ticker), nil
}

// Deposit moves funds from the source into the vault.
func (c Controller) Deposit(db custody.KVStore, vaultID []byte, src custody.Address, amount coin.Coin) (*Vault, error) {
	v, err := c.Vault(db, vaultID)
	if err != nil {
		return nil, err
	}
	if amount.Ticker != v.Ticker {
		return nil, errors.Wrapf(errors.ErrCurrency, "vault holds %s only", v.Ticker)
	}
	if err := c.bank.MoveCoins(db, src, v.Address, amount); err != nil {
		return nil, err
	}
	return v, nil
}

// Withdrawal is a request to release funds from a vault.
type Withdrawal struct {
	VaultID   []byte
	Recipient custody.Address
	Amount    coin.Coin
	AuthID    []byte
	Signature []byte
}

// Verify runs every withdrawal check without changing the state. It returns
// the vault and the address that approved the withdrawal.
func (c Controller) Verify(db custody.ReadOnlyKVStore, w Withdrawal) (*Vault, custody.Address, error) {
	v, err := c.Vault(db, w.VaultID)
	if err != nil {
		return nil, nil, err
	}
	if w.Amount.Ticker != v.Ticker {
		return nil, nil, errors.Wrapf(errors.ErrCurrency, "vault holds %s only", v.Ticker)
	}

	switch consumed, err := c.guard.IsConsumed(db, w.VaultID, w.AuthID); {
	case err != nil:
		return nil, nil, err
	case consumed:
		return nil, nil, errors.Wrapf(replay.ErrAuthIDConsumed, "%X", w.AuthID)
	}

	if len(w.Signature) != crypto.SignatureLength {
		return nil, nil, errors.Wrapf(crypto.ErrInvalidSignature,
			"signature must be %d bytes, got %d", crypto.SignatureLength, len(w.Signature))
	}
	digest, err := WithdrawDigest(v.Address, w.Recipient, w.Amount, w.AuthID)
	if err != nil {
		return nil, nil, err
	}
	signer, err := crypto.RecoverSigner(digest, w.Signature)
	if err != nil {
		return nil, nil, err
	}

	switch ok, err := c.authz.IsAuthorized(db, v.RegistryID, signer); {
	case err != nil:
		return nil, nil, err
	case !ok:
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "signer %s", signer)
	}

	balance, err := c.balance(db, v)
	if err != nil {
		return nil, nil, err
	}
	if !balance.IsGTE(w.Amount) {
		return nil, nil, errors.Wrapf(ErrInsufficientBalance, "vault holds %s", balance)
	}
	return v, signer, nil
}

// Withdraw verifies the withdrawal and releases the funds. The
// authorization ID is consumed together with the transfer, if the transfer
// fails the ID remains unused.
func (c Controller) Withdraw(ctx custody.Context, db custody.KVStore, w Withdrawal) (*Vault, custody.Address, error) {
	v, signer, err := c.Verify(db, w)
	if err != nil {
		return nil, nil, err
	}

	height, _ := custody.GetHeight(ctx)
	savepoint := cacheWrap(db)
	if err := c.guard.Consume(savepoint, w.VaultID, w.AuthID, replay.Consumption{Signer: signer, Height: height}); err != nil {
		savepoint.Discard()
		return nil, nil, err
	}
	if err := c.bank.MoveCoins(savepoint, v.Address, w.Recipient, w.Amount); err != nil {
		savepoint.Discard()
		return nil, nil, errors.Wrap(ErrTransferFailed, err.Error())
	}
	if err := savepoint.Write(); err != nil {
		return nil, nil, errors.Wrap(ErrTransferFailed, err.Error())
	}
	return v, signer, nil
}

func cacheWrap(db custody.KVStore) custody.KVCacheWrap {
	if c, ok := db.(custody.CacheableKVStore); ok {
		return c.CacheWrap()
	}
	return store.BTreeCacheable{KVStore: db}.CacheWrap()
}
