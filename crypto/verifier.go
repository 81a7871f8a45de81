package crypto

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"golang.org/x/crypto/sha3"
)

// SignatureLength is the length of a recoverable signature, r || s || v.
const SignatureLength = 65

// ErrInvalidSignature is returned when a signature is malformed or no signer
// can be recovered from it.
var ErrInvalidSignature = errors.Register(30, "invalid signature")

// ethMessagePrefix is prepended to a 32 byte digest before signing. It is
// the EIP-191 personal message prefix.
var ethMessagePrefix = []byte("\x19Ethereum Signed Message:\n32")

// Keccak256 returns the legacy keccak256 hash of all given data, as used by
// Ethereum. This is not the standardized SHA3-256.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// EthSignedMessageHash returns the hash that an Ethereum wallet signs for
// given digest.
func EthSignedMessageHash(digest [32]byte) [32]byte {
	return Keccak256(ethMessagePrefix, digest[:])
}

// RecoverSigner returns the address of the key that signed given digest.
// The signature must be 65 bytes, r || s || v, with v being one of 0, 1, 27
// or 28, and must cover the EIP-191 hash of the digest. Signatures with a
// high s value are rejected, so that a valid signature cannot be turned into
// a second one.
func RecoverSigner(digest [32]byte, signature []byte) (custody.Address, error) {
	if len(signature) != SignatureLength {
		return nil, errors.Wrapf(ErrInvalidSignature, "signature must be %d bytes, got %d", SignatureLength, len(signature))
	}

	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	switch v := sig[64]; v {
	case 0, 1:
	case 27, 28:
		sig[64] = v - 27
	default:
		return nil, errors.Wrapf(ErrInvalidSignature, "invalid recovery id %d", v)
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return nil, errors.Wrap(ErrInvalidSignature, "signature values out of range")
	}

	hash := EthSignedMessageHash(digest)
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return pubkeyAddress(pub), nil
}

// Verify returns true if the signature over the digest was created by the
// claimed address. Malformed signatures are never valid.
func Verify(digest [32]byte, signature []byte, claimed custody.Address) bool {
	signer, err := RecoverSigner(digest, signature)
	if err != nil {
		return false
	}
	return signer.Equals(claimed)
}
