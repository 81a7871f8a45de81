package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
)

const optKey = "vault"

// GenesisVault declares a vault in the genesis file. Vaults are created in
// the order they are listed, after all registries.
type GenesisVault struct {
	RegistryID uint64 `json:"registry_id"`
	Ticker     string `json:"ticker"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis creates all vaults declared under "vault".
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var vaults []GenesisVault
	if err := opts.ReadOptions(optKey, &vaults); err != nil {
		return err
	}
	ctrl := NewController(authz.NewController(), replay.NewGuard(), cash.NewController(cash.NewBucket()))
	for i, v := range vaults {
		registryID := orm.EncodeSequence(int64(v.RegistryID))
		if _, _, err := ctrl.CreateVault(kv, registryID, v.Ticker); err != nil {
			return errors.Wrapf(err, "vault %d", i)
		}
	}
	return nil
}
