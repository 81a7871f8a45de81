package custodytest

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a new random secp256k1 key. It panics if the system has no
// randomness available.
func NewKey() *crypto.PrivateKey {
	key, err := crypto.GenPrivKey()
	if err != nil {
		panic(err)
	}
	return key
}

// NewAddress returns a random address.
func NewAddress() custody.Address {
	raw := make([]byte, custody.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	return raw
}

// SequenceID returns an 8 byte big endian encoded sequence value.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) custody.Address {
	t.Helper()

	addr, err := custody.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
