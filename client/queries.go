package client

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/vault"
)

// one loads the single model stored under key into dest. ErrNotFound is
// returned when there is none.
func (c *Client) one(ctx context.Context, path string, key []byte, dest orm.Model) error {
	models, err := c.Query(ctx, path, key)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", path, key)
	}
	if err := dest.Unmarshal(models[0].Value); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

// Nonce returns the sequence the next signature of given address must use.
// An address that never signed starts at zero.
func (c *Client) Nonce(ctx context.Context, addr custody.Address) (int64, error) {
	var user sigs.UserData
	switch err := c.one(ctx, "/auth", addr, &user); {
	case err == nil:
		return user.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Wallet returns all coins owned by given address.
func (c *Client) Wallet(ctx context.Context, addr custody.Address) (coin.Coins, error) {
	var set cash.Set
	switch err := c.one(ctx, "/wallets", addr, &set); {
	case err == nil:
		return set.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Balance returns the amount of given currency owned by an address.
func (c *Client) Balance(ctx context.Context, addr custody.Address, ticker string) (coin.Coin, error) {
	coins, err := c.Wallet(ctx, addr)
	if err != nil {
		return coin.Coin{}, err
	}
	return coins.Balance(ticker), nil
}

// Registry returns the authorization registry with given ID.
func (c *Client) Registry(ctx context.Context, registryID []byte) (*authz.Registry, error) {
	var r authz.Registry
	if err := c.one(ctx, "/registries", registryID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// IsAuthorized returns true if signer may approve withdrawals of vaults
// bound to given registry. A signer that was never added is not
// authorized.
func (c *Client) IsAuthorized(ctx context.Context, registryID []byte, signer custody.Address) (bool, error) {
	var a authz.Authorization
	switch err := c.one(ctx, "/authorizations", authz.AuthorizationKey(registryID, signer), &a); {
	case err == nil:
		return a.Authorized, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Vault returns the vault with given ID.
func (c *Client) Vault(ctx context.Context, vaultID []byte) (*vault.Vault, error) {
	var v vault.Vault
	if err := c.one(ctx, "/vaults", vaultID, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// VaultBalance returns the funds held by the vault with given ID, in the
// vault currency.
func (c *Client) VaultBalance(ctx context.Context, vaultID []byte) (coin.Coin, error) {
	v, err := c.Vault(ctx, vaultID)
	if err != nil {
		return coin.Coin{}, err
	}
	return c.Balance(ctx, v.Address, v.Ticker)
}

// IsConsumed returns true if the authorization ID was already used to
// withdraw from given vault.
func (c *Client) IsConsumed(ctx context.Context, vaultID, authID []byte) (bool, error) {
	var cons replay.Consumption
	switch err := c.one(ctx, "/"+replay.BucketName, replay.ConsumptionKey(vaultID, authID), &cons); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}
