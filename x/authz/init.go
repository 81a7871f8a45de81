package authz

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const optKey = "authz"

// GenesisRegistry declares a registry in the genesis file. Registries are
// created in the order they are listed, so the first one gets ID 1.
type GenesisRegistry struct {
	Admin      custody.Address   `json:"admin"`
	Authorized []custody.Address `json:"authorized"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis creates all registries declared under "authz".
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var registries []GenesisRegistry
	if err := opts.ReadOptions(optKey, &registries); err != nil {
		return err
	}
	ctrl := NewController()
	for i, r := range registries {
		id, _, err := ctrl.CreateRegistry(kv, r.Admin)
		if err != nil {
			return errors.Wrapf(err, "registry %d", i)
		}
		for j, signer := range r.Authorized {
			if err := ctrl.Authorize(kv, id, signer); err != nil {
				return errors.Wrapf(err, "registry %d, signer %d", i, j)
			}
		}
	}
	return nil
}
