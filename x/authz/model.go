package authz

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Registry is an authorization registry. Its admin is fixed at creation.
type Registry struct {
	Admin custody.Address `json:"admin"`
	// Address is the identity of the registry itself.
	Address custody.Address `json:"address"`
}

var _ orm.Model = (*Registry)(nil)

func (r *Registry) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

func (r *Registry) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, r)
}

func (r *Registry) Validate() error {
	if err := r.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if err := r.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	return nil
}

// Authorization records whether a signer is allowed to approve withdrawals
// for a registry. A revoked signer keeps its record with Authorized set to
// false.
type Authorization struct {
	Signer     custody.Address `json:"signer"`
	Authorized bool            `json:"authorized"`
}

var _ orm.Model = (*Authorization)(nil)

func (a *Authorization) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Authorization) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, a)
}

func (a *Authorization) Validate() error {
	return errors.Wrap(a.Signer.Validate(), "signer")
}

// Condition returns the condition owned by the registry with given ID.
func Condition(registryID []byte) custody.Condition {
	return custody.NewCondition("authz", "registry", registryID)
}

// NewRegistrySequence returns the sequence registry IDs are allocated from.
func NewRegistrySequence() orm.Sequence {
	return orm.NewSequence("authz", "id")
}

// NewRegistryBucket returns a bucket for registries, keyed by a sequence.
func NewRegistryBucket() orm.ModelBucket {
	return orm.NewModelBucket("authz", &Registry{},
		orm.WithIDSequence(NewRegistrySequence()))
}

// NewAuthorizationBucket returns a bucket for authorizations, keyed by
// AuthorizationKey.
func NewAuthorizationBucket() orm.ModelBucket {
	return orm.NewModelBucket("authsig", &Authorization{})
}

// AuthorizationKey returns the key of the authorization of signer in given
// registry. Registry IDs have a fixed length, so that all authorizations of
// a registry share a prefix.
func AuthorizationKey(registryID []byte, signer custody.Address) []byte {
	key := make([]byte, 0, len(registryID)+len(signer))
	key = append(key, registryID...)
	return append(key, signer...)
}
