package authz

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestControllerLifecycle(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	admin := custodytest.NewAddress()
	alice := custodytest.NewAddress()
	bob := custodytest.NewAddress()

	id, registry, err := ctrl.CreateRegistry(db, admin)
	assert.Nil(t, err)
	assert.Equal(t, custodytest.SequenceID(1), id)
	assert.Equal(t, admin, registry.Admin)
	assert.Equal(t, Condition(id).Address(), registry.Address)

	isAuthorized := func(addr custody.Address) bool {
		t.Helper()
		ok, err := ctrl.IsAuthorized(db, id, addr)
		assert.Nil(t, err)
		return ok
	}

	assert.Equal(t, true, isAuthorized(admin))
	assert.Equal(t, false, isAuthorized(alice))
	assert.Equal(t, false, isAuthorized(nil))

	assert.Nil(t, ctrl.Authorize(db, id, alice))
	assert.Equal(t, true, isAuthorized(alice))
	// authorizing twice is a no-op
	assert.Nil(t, ctrl.Authorize(db, id, alice))
	assert.Equal(t, true, isAuthorized(alice))

	assert.Nil(t, ctrl.Authorize(db, id, bob))
	signers, err := ctrl.Signers(db, id)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(signers))

	assert.Nil(t, ctrl.Revoke(db, id, alice))
	assert.Equal(t, false, isAuthorized(alice))
	assert.Equal(t, true, isAuthorized(bob))
	// revoking an unknown signer only records it as not authorized
	assert.Nil(t, ctrl.Revoke(db, id, custodytest.NewAddress()))

	err = ctrl.Revoke(db, id, admin)
	if !ErrCannotRevokeAdmin.Is(err) {
		t.Fatalf("want %q error, got %+v", ErrCannotRevokeAdmin, err)
	}
	assert.Equal(t, true, isAuthorized(admin))

	signers, err = ctrl.Signers(db, id)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(signers))
}

func TestControllerRegistriesAreIndependent(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	first, _, err := ctrl.CreateRegistry(db, custodytest.NewAddress())
	assert.Nil(t, err)
	second, _, err := ctrl.CreateRegistry(db, custodytest.NewAddress())
	assert.Nil(t, err)
	assert.Equal(t, custodytest.SequenceID(2), second)

	alice := custodytest.NewAddress()
	assert.Nil(t, ctrl.Authorize(db, first, alice))

	ok, err := ctrl.IsAuthorized(db, second, alice)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestControllerMissingRegistry(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	missing := custodytest.SequenceID(7)

	_, err := ctrl.IsAuthorized(db, missing, custodytest.NewAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
	err = ctrl.Authorize(db, missing, custodytest.NewAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
	err = ctrl.Revoke(db, missing, custodytest.NewAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = ctrl.Signers(db, missing)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestCreateRegistryInvalidAdmin(t *testing.T) {
	_, _, err := NewController().CreateRegistry(store.MemStore(), custody.Address{0x01})
	assert.IsErr(t, errors.ErrInput, err)
}
