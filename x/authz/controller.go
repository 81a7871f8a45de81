package authz

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Controller answers authorization questions for other extensions.
type Controller interface {
	// IsAuthorized returns true if the signer is currently authorized in
	// given registry. Addresses that were never authorized are not.
	IsAuthorized(db custody.ReadOnlyKVStore, registryID []byte, signer custody.Address) (bool, error)
}

// BaseController manages registries and their authorizations.
type BaseController struct {
	ids            orm.Sequence
	registries     orm.ModelBucket
	authorizations orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller working on the default buckets.
func NewController() BaseController {
	return BaseController{
		ids:            NewRegistrySequence(),
		registries:     NewRegistryBucket(),
		authorizations: NewAuthorizationBucket(),
	}
}

// Registry loads the registry with given ID.
func (c BaseController) Registry(db custody.ReadOnlyKVStore, registryID []byte) (*Registry, error) {
	var r Registry
	if err := c.registries.One(db, registryID, &r); err != nil {
		return nil, errors.Wrap(err, "cannot load registry")
	}
	return &r, nil
}

// CreateRegistry stores a new registry and authorizes its admin. The ID of
// the new registry is returned.
func (c BaseController) CreateRegistry(db custody.KVStore, admin custody.Address) ([]byte, *Registry, error) {
	if err := admin.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "admin")
	}
	id, err := c.ids.NextVal(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "registry ID")
	}
	r := &Registry{Admin: admin, Address: Condition(id).Address()}
	if _, err := c.registries.Put(db, id, r); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store registry")
	}
	if err := c.setAuthorized(db, id, admin, true); err != nil {
		return nil, nil, err
	}
	return id, r, nil
}

// Authorize marks the signer as authorized. Authorizing an already
// authorized signer is a no-op.
func (c BaseController) Authorize(db custody.KVStore, registryID []byte, signer custody.Address) error {
	if _, err := c.Registry(db, registryID); err != nil {
		return err
	}
	return c.setAuthorized(db, registryID, signer, true)
}

// Revoke marks the signer as not authorized. The admin of the registry
// cannot be revoked.
func (c BaseController) Revoke(db custody.KVStore, registryID []byte, signer custody.Address) error {
	r, err := c.Registry(db, registryID)
	if err != nil {
		return err
	}
	if r.Admin.Equals(signer) {
		return errors.Wrapf(ErrCannotRevokeAdmin, "registry %X", registryID)
	}
	return c.setAuthorized(db, registryID, signer, false)
}

func (c BaseController) setAuthorized(db custody.KVStore, registryID []byte, signer custody.Address, authorized bool) error {
	a := Authorization{Signer: signer, Authorized: authorized}
	if _, err := c.authorizations.Put(db, AuthorizationKey(registryID, signer), &a); err != nil {
		return errors.Wrap(err, "cannot store authorization")
	}
	return nil
}

// IsAuthorized returns true if the signer is currently authorized in given
// registry. It fails only if the registry does not exist or the state cannot
// be read.
func (c BaseController) IsAuthorized(db custody.ReadOnlyKVStore, registryID []byte, signer custody.Address) (bool, error) {
	if err := c.registries.Has(db, registryID); err != nil {
		return false, errors.Wrapf(err, "registry %X", registryID)
	}
	if len(signer) == 0 {
		return false, nil
	}
	var a Authorization
	switch err := c.authorizations.One(db, AuthorizationKey(registryID, signer), &a); {
	case err == nil:
		return a.Authorized, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Signers returns all currently authorized addresses of a registry, in
// ascending order.
func (c BaseController) Signers(db custody.ReadOnlyKVStore, registryID []byte) ([]custody.Address, error) {
	if err := c.registries.Has(db, registryID); err != nil {
		return nil, errors.Wrapf(err, "registry %X", registryID)
	}
	it, err := c.authorizations.PrefixScan(db, registryID)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var signers []custody.Address
	for {
		var a Authorization
		_, err := it.LoadNext(&a)
		if errors.ErrIteratorDone.Is(err) {
			return signers, nil
		}
		if err != nil {
			return nil, err
		}
		if a.Authorized {
			signers = append(signers, a.Signer)
		}
	}
}
