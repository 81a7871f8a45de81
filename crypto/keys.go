/*
Package crypto holds the secp256k1 keys used by custody accounts and the
signature verifier guarding vault withdrawals.

Addresses are derived the same way Ethereum does it: the last 20 bytes of
the keccak256 hash of the uncompressed public key. This lets withdrawals be
signed with any Ethereum wallet.
*/
package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	// PrivateKeyLength is the length of a raw secp256k1 private key.
	PrivateKeyLength = 32
	// PublicKeyLength is the length of a compressed public key.
	PublicKeyLength = 33
)

// PrivateKey is a secp256k1 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenPrivKey returns a random new private key.
func GenPrivKey() (*PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromHex loads a private key from its hex representation, with or
// without the 0x prefix.
func PrivKeyFromHex(s string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "private key must be hex encoded")
	}
	return PrivKeyFromBytes(raw)
}

// PrivKeyFromBytes loads a raw 32 byte private key.
func PrivKeyFromBytes(raw []byte) (*PrivateKey, error) {
	if len(raw) != PrivateKeyLength {
		return nil, errors.Wrapf(errors.ErrInput, "private key must be %d bytes", PrivateKeyLength)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &PrivateKey{key: key}, nil
}

// Bytes returns the raw private key.
func (p *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(p.key)
}

// Hex returns the private key hex encoded, without 0x prefix.
func (p *PrivateKey) Hex() string {
	return hex.EncodeToString(p.Bytes())
}

// PublicKey returns the corresponding compressed public key.
func (p *PrivateKey) PublicKey() PublicKey {
	return PublicKey(crypto.CompressPubkey(&p.key.PublicKey))
}

// Address returns the account address controlled by this key.
func (p *PrivateKey) Address() custody.Address {
	return pubkeyAddress(&p.key.PublicKey)
}

// Sign signs the keccak256 hash of the message. The returned signature is
// 65 bytes long, r || s || v with v being 0 or 1.
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	hash := Keccak256(message)
	return p.sign(hash[:])
}

// SignDigest signs a 32 byte digest following EIP-191, the same way an
// Ethereum wallet signs a message (eth_sign). Signatures produced this way
// are accepted by RecoverSigner.
func (p *PrivateKey) SignDigest(digest [32]byte) ([]byte, error) {
	hash := EthSignedMessageHash(digest)
	sig, err := p.sign(hash[:])
	if err != nil {
		return nil, err
	}
	// wallets return v as 27 or 28
	sig[64] += 27
	return sig, nil
}

func (p *PrivateKey) sign(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, p.key)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return sig, nil
}

// PublicKey is a compressed secp256k1 public key.
type PublicKey []byte

// Validate returns an error if this is not a valid public key.
func (p PublicKey) Validate() error {
	if len(p) != PublicKeyLength {
		return errors.Wrapf(errors.ErrInput, "public key must be %d bytes", PublicKeyLength)
	}
	if _, err := crypto.DecompressPubkey(p); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// Address returns the account address of this public key, or nil if the key
// is not valid.
func (p PublicKey) Address() custody.Address {
	pub, err := crypto.DecompressPubkey(p)
	if err != nil {
		return nil
	}
	return pubkeyAddress(pub)
}

// Verify checks that the signature was created by this key over the
// keccak256 hash of the message. Both 64 and 65 byte signatures are
// accepted, the recovery id is ignored.
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(sig) != SignatureLength && len(sig) != SignatureLength-1 {
		return false
	}
	if len(p) != PublicKeyLength {
		return false
	}
	hash := Keccak256(message)
	return crypto.VerifySignature(p, hash[:], sig[:64])
}

// String returns the hex encoded key.
func (p PublicKey) String() string {
	return hex.EncodeToString(p)
}

func pubkeyAddress(pub *ecdsa.PublicKey) custody.Address {
	addr := crypto.PubkeyToAddress(*pub)
	return custody.Address(addr.Bytes())
}
