package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

// Balancer is implemented by any ledger that can report the holdings of an
// address.
type Balancer interface {
	Balance(custody.ReadOnlyKVStore, custody.Address) (coin.Coins, error)
}

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. This operation is atomic.
	MoveCoins(db custody.KVStore, src, dest custody.Address, amount coin.Coin) error
}

// Controller is the functionality needed by cash.Handler and cash.Decorator.
// BaseController should work plenty fine, but you can add other logic if so
// desired
type Controller interface {
	Balancer
	CoinMover
	IssueCoins(custody.KVStore, custody.Address, coin.Coin) error
}

// BaseController is a simple implementation of controller wallet must
// return something that supports AsSet
type BaseController struct {
	bucket *WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket *WalletBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of coins stored at a given address.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error) {
	return c.bucket.Coins(db, addr)
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db custody.KVStore, src, dest custody.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := c.bucket.Coins(db, src)
	if err != nil {
		return errors.Wrap(err, "cannot load sender")
	}
	if sender.IsEmpty() {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !sender.Contains(amount) {
		return errors.Wrap(errors.ErrInsufficientAmount, "funds")
	}

	sender, err = sender.Subtract(amount)
	if err != nil {
		return errors.Wrap(err, "cannot subtract")
	}
	if err := c.bucket.Save(db, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}

	// Load the recipient after the sender is saved, so that moving coins
	// to self keeps the balance.
	recipient, err := c.bucket.Coins(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot load recipient")
	}
	recipient, err = recipient.Add(amount)
	if err != nil {
		return errors.Wrap(err, "cannot add")
	}
	if err := c.bucket.Save(db, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// IssueCoins adds the given amount of coins to the destination address.
// Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db custody.KVStore, dest custody.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.bucket.Coins(db, dest)
	if err != nil {
		return err
	}
	if recipient, err = recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}
