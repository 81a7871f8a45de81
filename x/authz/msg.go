package authz

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

var _ custody.Msg = (*CreateRegistryMsg)(nil)
var _ custody.Msg = (*AuthorizeMsg)(nil)
var _ custody.Msg = (*RevokeMsg)(nil)

const (
	pathCreateRegistryMsg = "authz/create_registry"
	pathAuthorizeMsg      = "authz/authorize"
	pathRevokeMsg         = "authz/revoke"

	createRegistryCost int64 = 300
	authorizeCost      int64 = 100
	revokeCost         int64 = 100
)

// CreateRegistryMsg creates a new registry. When no admin is given, the main
// signer of the transaction becomes the admin.
type CreateRegistryMsg struct {
	Admin custody.Address `json:"admin,omitempty"`
}

func (CreateRegistryMsg) Path() string {
	return pathCreateRegistryMsg
}

func (m *CreateRegistryMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateRegistryMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *CreateRegistryMsg) Validate() error {
	if len(m.Admin) == 0 {
		return nil
	}
	return errors.Wrap(m.Admin.Validate(), "admin")
}

// AuthorizeMsg allows a signer to approve withdrawals. It must be signed by
// the registry admin.
type AuthorizeMsg struct {
	RegistryID []byte          `json:"registry_id"`
	Signer     custody.Address `json:"signer"`
}

func (AuthorizeMsg) Path() string {
	return pathAuthorizeMsg
}

func (m *AuthorizeMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *AuthorizeMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *AuthorizeMsg) Validate() error {
	return validateTarget(m.RegistryID, m.Signer)
}

// RevokeMsg takes away the right of a signer to approve withdrawals. It must
// be signed by the registry admin.
type RevokeMsg struct {
	RegistryID []byte          `json:"registry_id"`
	Signer     custody.Address `json:"signer"`
}

func (RevokeMsg) Path() string {
	return pathRevokeMsg
}

func (m *RevokeMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *RevokeMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

func (m *RevokeMsg) Validate() error {
	return validateTarget(m.RegistryID, m.Signer)
}

func validateTarget(registryID []byte, signer custody.Address) error {
	err := errors.Wrap(orm.ValidateSequence(registryID), "registry id")
	return errors.Append(err, errors.Wrap(signer.Validate(), "signer"))
}

// RegisterCodec registers the messages of this package in the application
// codec, so that they can be carried by a transaction.
func RegisterCodec(c *amino.Codec) {
	c.RegisterConcrete(&CreateRegistryMsg{}, pathCreateRegistryMsg, nil)
	c.RegisterConcrete(&AuthorizeMsg{}, pathAuthorizeMsg, nil)
	c.RegisterConcrete(&RevokeMsg{}, pathRevokeMsg, nil)
}
