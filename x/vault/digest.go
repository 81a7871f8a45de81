package vault

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/replay"
)

// WithdrawDigest returns the 32 byte digest that an authorized signer signs
// to approve a withdrawal:
//
//   keccak256(vault[20] || recipient[20] || uint256(amount)[32] || authID[32])
//
// The amount is encoded in base units, see coin.Coin.BaseUnits. This is the
// same value Solidity computes for
// keccak256(abi.encodePacked(vault, recipient, amount, authId)).
func WithdrawDigest(vault, recipient custody.Address, amount coin.Coin, authID []byte) ([32]byte, error) {
	var digest [32]byte
	if err := vault.Validate(); err != nil {
		return digest, errors.Wrap(err, "vault")
	}
	if err := recipient.Validate(); err != nil {
		return digest, errors.Wrap(err, "recipient")
	}
	if err := replay.ValidateAuthID(authID); err != nil {
		return digest, err
	}
	units, err := amount.BaseUnits()
	if err != nil {
		return digest, err
	}
	return crypto.Keccak256(vault, recipient, math.PaddedBigBytes(units, 32), authID), nil
}

// SignWithdrawal returns the signature approving a withdrawal, as produced by
// an Ethereum wallet holding given key.
func SignWithdrawal(key *crypto.PrivateKey, vault, recipient custody.Address, amount coin.Coin, authID []byte) ([]byte, error) {
	digest, err := WithdrawDigest(vault, recipient, amount, authID)
	if err != nil {
		return nil, err
	}
	return key.SignDigest(digest)
}
