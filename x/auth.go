/*
Package x contains the helpers shared by all custody extensions.

Extensions never read signatures themselves. They receive an Authenticator
and ask it which addresses approved the current transaction.
*/
package x

import (
	"github.com/iov-one/custody"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetAddresses returns all addresses that authorized the current
	// transaction, in the order they signed it.
	GetAddresses(custody.Context) []custody.Address
	// HasAddress checks if any of the signers matches this address.
	HasAddress(custody.Context, custody.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetAddresses combines all addresses from all Authenticators. Each address
// is returned only once.
func (m MultiAuth) GetAddresses(ctx custody.Context) []custody.Address {
	var res []custody.Address
	for _, impl := range m.impls {
		for _, addr := range impl.GetAddresses(ctx) {
			if !containsAddress(res, addr) {
				res = append(res, addr)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise nil
func MainSigner(ctx custody.Context, auth Authenticator) custody.Address {
	signers := auth.GetAddresses(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

func containsAddress(set []custody.Address, addr custody.Address) bool {
	for _, a := range set {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}
