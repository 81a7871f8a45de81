package vault

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
)

// fixture is a vault holding 10 ETH, guarded by a registry with an admin
// and one more authorized signer.
type fixture struct {
	db      store.CacheableKVStore
	authz   authz.BaseController
	bank    cash.BaseController
	ctrl    Controller
	admin   *crypto.PrivateKey
	signer  *crypto.PrivateKey
	vaultID []byte
	vault   *Vault
}

func newFixture(t testing.TB, bank Bank) *fixture {
	t.Helper()

	f := &fixture{
		db:     store.MemStore(),
		authz:  authz.NewController(),
		bank:   cash.NewController(cash.NewBucket()),
		admin:  custodytest.NewKey(),
		signer: custodytest.NewKey(),
	}
	if bank == nil {
		bank = f.bank
	}
	f.ctrl = NewController(f.authz, replay.NewGuard(), bank)

	registryID, _, err := f.authz.CreateRegistry(f.db, f.admin.Address())
	assert.Nil(t, err)
	assert.Nil(t, f.authz.Authorize(f.db, registryID, f.signer.Address()))

	f.vaultID, f.vault, err = f.ctrl.CreateVault(f.db, registryID, "ETH")
	assert.Nil(t, err)
	assert.Nil(t, f.bank.IssueCoins(f.db, f.vault.Address, coin.NewCoin(10, 0, "ETH")))
	return f
}

// withdrawal returns a withdrawal of amount to recipient, signed by key.
func (f *fixture) withdrawal(t testing.TB, key *crypto.PrivateKey, recipient custody.Address, amount coin.Coin, authID []byte) Withdrawal {
	t.Helper()
	sig, err := SignWithdrawal(key, f.vault.Address, recipient, amount, authID)
	assert.Nil(t, err)
	return Withdrawal{
		VaultID:   f.vaultID,
		Recipient: recipient,
		Amount:    amount,
		AuthID:    authID,
		Signature: sig,
	}
}

func (f *fixture) balance(t testing.TB, addr custody.Address) coin.Coin {
	t.Helper()
	coins, err := f.bank.Balance(f.db, addr)
	assert.Nil(t, err)
	return coins.Balance("ETH")
}

func authID(b byte) []byte {
	return bytes.Repeat([]byte{b}, replay.AuthIDLength)
}

func TestCreateVault(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, custodytest.SequenceID(1), f.vaultID)
	assert.Equal(t, Condition(f.vaultID).Address(), f.vault.Address)

	v, err := f.ctrl.Vault(f.db, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, "ETH", v.Ticker)

	_, _, err = f.ctrl.CreateVault(f.db, custodytest.SequenceID(42), "ETH")
	assert.IsErr(t, errors.ErrNotFound, err)

	_, _, err = f.ctrl.CreateVault(f.db, v.RegistryID, "eth")
	assert.IsErr(t, errors.ErrCurrency, err)

	id, other, err := f.ctrl.CreateVault(f.db, v.RegistryID, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, false, bytes.Equal(id, f.vaultID))
	assert.Equal(t, false, other.Address.Equals(f.vault.Address))
}

func TestDeposit(t *testing.T) {
	f := newFixture(t, nil)
	alice := custodytest.NewAddress()
	assert.Nil(t, f.bank.IssueCoins(f.db, alice, coin.NewCoin(5, 0, "ETH")))
	assert.Nil(t, f.bank.IssueCoins(f.db, alice, coin.NewCoin(5, 0, "IOV")))

	_, err := f.ctrl.Deposit(f.db, f.vaultID, alice, coin.NewCoin(2, 0, "ETH"))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(12, 0, "ETH"), f.balance(t, f.vault.Address))
	assert.Equal(t, coin.NewCoin(3, 0, "ETH"), f.balance(t, alice))

	_, err = f.ctrl.Deposit(f.db, f.vaultID, alice, coin.NewCoin(1, 0, "IOV"))
	assert.IsErr(t, errors.ErrCurrency, err)

	_, err = f.ctrl.Deposit(f.db, f.vaultID, alice, coin.NewCoin(4, 0, "ETH"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	_, err = f.ctrl.Deposit(f.db, custodytest.SequenceID(9), alice, coin.NewCoin(1, 0, "ETH"))
	assert.IsErr(t, errors.ErrNotFound, err)

	// a plain transfer to the vault address is a deposit as well
	assert.Nil(t, f.bank.MoveCoins(f.db, alice, f.vault.Address, coin.NewCoin(1, 0, "ETH")))
	got, err := f.ctrl.Balance(f.db, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(13, 0, "ETH"), got)
}

func TestWithdraw(t *testing.T) {
	recipient := custodytest.NewAddress()
	stranger := custodytest.NewKey()
	three := coin.NewCoin(3, 0, "ETH")

	cases := map[string]struct {
		// prepare may change the state before the withdrawal, and returns
		// the withdrawal to execute.
		prepare       func(t testing.TB, f *fixture) Withdrawal
		wantErr       *errors.Error
		wantRecipient coin.Coin
		wantVault     coin.Coin
	}{
		"authorized signer": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, f.signer, recipient, three, authID(1))
			},
			wantRecipient: three,
			wantVault:     coin.NewCoin(7, 0, "ETH"),
		},
		"admin": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, f.admin, recipient, three, authID(1))
			},
			wantRecipient: three,
			wantVault:     coin.NewCoin(7, 0, "ETH"),
		},
		"whole balance": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, f.signer, recipient, coin.NewCoin(10, 0, "ETH"), authID(1))
			},
			wantRecipient: coin.NewCoin(10, 0, "ETH"),
			wantVault:     coin.Coin{Ticker: "ETH"},
		},
		"consumed auth id": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				first := f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "ETH"), authID(1))
				_, _, err := f.ctrl.Withdraw(context.Background(), f.db, first)
				assert.Nil(t, err)
				return f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "ETH"), authID(1))
			},
			wantErr:       replay.ErrAuthIDConsumed,
			wantRecipient: coin.NewCoin(1, 0, "ETH"),
			wantVault:     coin.NewCoin(9, 0, "ETH"),
		},
		"consumed auth id is checked before the signature": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				first := f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "ETH"), authID(1))
				_, _, err := f.ctrl.Withdraw(context.Background(), f.db, first)
				assert.Nil(t, err)
				w := f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "ETH"), authID(1))
				w.Signature = nil
				return w
			},
			wantErr:       replay.ErrAuthIDConsumed,
			wantRecipient: coin.NewCoin(1, 0, "ETH"),
			wantVault:     coin.NewCoin(9, 0, "ETH"),
		},
		"empty signature": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, recipient, three, authID(1))
				w.Signature = nil
				return w
			},
			wantErr:   crypto.ErrInvalidSignature,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"short signature": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, recipient, three, authID(1))
				w.Signature = w.Signature[:64]
				return w
			},
			wantErr:   crypto.ErrInvalidSignature,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"garbage signature": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, recipient, three, authID(1))
				w.Signature = make([]byte, crypto.SignatureLength)
				return w
			},
			wantErr:   crypto.ErrInvalidSignature,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"unknown signer": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, stranger, recipient, three, authID(1))
			},
			wantErr:   errors.ErrUnauthorized,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"revoked signer": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				assert.Nil(t, f.authz.Revoke(f.db, f.vault.RegistryID, f.signer.Address()))
				return f.withdrawal(t, f.signer, recipient, three, authID(1))
			},
			wantErr:   errors.ErrUnauthorized,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"signature for another amount": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "ETH"), authID(1))
				w.Amount = three
				return w
			},
			wantErr:   errors.ErrUnauthorized,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"signature for another recipient": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, custodytest.NewAddress(), three, authID(1))
				w.Recipient = recipient
				return w
			},
			wantErr:   errors.ErrUnauthorized,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"insufficient balance": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, f.signer, recipient, coin.NewCoin(10, 1, "ETH"), authID(1))
			},
			wantErr:   ErrInsufficientBalance,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"other currency": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				return f.withdrawal(t, f.signer, recipient, coin.NewCoin(1, 0, "IOV"), authID(1))
			},
			wantErr:   errors.ErrCurrency,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
		"missing vault": {
			prepare: func(t testing.TB, f *fixture) Withdrawal {
				w := f.withdrawal(t, f.signer, recipient, three, authID(1))
				w.VaultID = custodytest.SequenceID(99)
				return w
			},
			wantErr:   errors.ErrNotFound,
			wantVault: coin.NewCoin(10, 0, "ETH"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			w := tc.prepare(t, f)

			_, _, err := f.ctrl.Verify(f.db, w)
			if !tc.wantErr.Is(err) {
				t.Fatalf("verify: want %q error, got %+v", tc.wantErr, err)
			}
			_, signer, err := f.ctrl.Withdraw(context.Background(), f.db, w)
			if !tc.wantErr.Is(err) {
				t.Fatalf("withdraw: want %q error, got %+v", tc.wantErr, err)
			}

			assert.CoinEqual(t, tc.wantVault, f.balance(t, f.vault.Address))
			assert.CoinEqual(t, tc.wantRecipient, f.balance(t, recipient))

			if tc.wantErr == nil {
				consumed, err := replay.NewGuard().IsConsumed(f.db, f.vaultID, w.AuthID)
				assert.Nil(t, err)
				assert.Equal(t, true, consumed)
				if !signer.Equals(f.signer.Address()) && !signer.Equals(f.admin.Address()) {
					t.Fatalf("unexpected signer %s", signer)
				}
			}
		})
	}
}

func TestWithdrawIsScopedToVault(t *testing.T) {
	f := newFixture(t, nil)
	otherID, other, err := f.ctrl.CreateVault(f.db, f.vault.RegistryID, "ETH")
	assert.Nil(t, err)
	assert.Nil(t, f.bank.IssueCoins(f.db, other.Address, coin.NewCoin(10, 0, "ETH")))

	recipient := custodytest.NewAddress()
	amount := coin.NewCoin(1, 0, "ETH")

	w := f.withdrawal(t, f.signer, recipient, amount, authID(5))
	_, _, err = f.ctrl.Withdraw(context.Background(), f.db, w)
	assert.Nil(t, err)

	// a signature for one vault cannot be replayed against another one
	replayed := w
	replayed.VaultID = otherID
	_, _, err = f.ctrl.Withdraw(context.Background(), f.db, replayed)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// the same ID signed for the other vault is still available there
	sig, err := SignWithdrawal(f.signer, other.Address, recipient, amount, authID(5))
	assert.Nil(t, err)
	replayed.Signature = sig
	_, _, err = f.ctrl.Withdraw(context.Background(), f.db, replayed)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(2, 0, "ETH"), f.balance(t, recipient))
}

// failingBank moves the coins and then reports a failure.
type failingBank struct {
	cash.BaseController
}

func (b failingBank) MoveCoins(db custody.KVStore, src, dest custody.Address, amount coin.Coin) error {
	if err := b.BaseController.MoveCoins(db, src, dest, amount); err != nil {
		return err
	}
	return errors.Wrap(errors.ErrDatabase, "disk full")
}

func TestWithdrawRollsBackFailedTransfer(t *testing.T) {
	f := newFixture(t, failingBank{BaseController: cash.NewController(cash.NewBucket())})
	recipient := custodytest.NewAddress()
	w := f.withdrawal(t, f.signer, recipient, coin.NewCoin(4, 0, "ETH"), authID(3))

	_, _, err := f.ctrl.Withdraw(context.Background(), f.db, w)
	assert.IsErr(t, ErrTransferFailed, err)

	assert.Equal(t, coin.NewCoin(10, 0, "ETH"), f.balance(t, f.vault.Address))
	assert.Equal(t, coin.Coin{Ticker: "ETH"}, f.balance(t, recipient))

	consumed, err := replay.NewGuard().IsConsumed(f.db, f.vaultID, w.AuthID)
	assert.Nil(t, err)
	assert.Equal(t, false, consumed)

	// the same authorization can be used once the bank works again
	ctrl := NewController(f.authz, replay.NewGuard(), f.bank)
	_, _, err = ctrl.Withdraw(context.Background(), f.db, w)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(4, 0, "ETH"), f.balance(t, recipient))
}
