package authz

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// RegisterRoutes registers handlers for all messages of this package.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, ctrl BaseController) {
	r.Handle(pathCreateRegistryMsg, &createRegistryHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathAuthorizeMsg, &authorizeHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathRevokeMsg, &revokeHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery exposes registries under "/registries" and authorizations
// under "/authorizations". An authorization is found by the registry ID
// followed by the signer address.
func RegisterQuery(qr custody.QueryRouter) {
	NewRegistryBucket().Register("registries", qr)
	NewAuthorizationBucket().Register("authorizations", qr)
}

type createRegistryHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ custody.Handler = (*createRegistryHandler)(nil)

func (h *createRegistryHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createRegistryCost}, nil
}

func (h *createRegistryHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	admin, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id, registry, err := h.ctrl.CreateRegistry(db, admin)
	if err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{Data: id}
	res.Emit(custody.NewEvent("authz.registry_created").
		With("registry", registry.Address).
		With("admin", registry.Admin))
	return res, nil
}

// validate returns the admin of the registry to be created.
func (h *createRegistryHandler) validate(ctx custody.Context, tx custody.Tx) (custody.Address, error) {
	var msg CreateRegistryMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	if len(msg.Admin) != 0 {
		return msg.Admin, nil
	}
	return signer, nil
}

type authorizeHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ custody.Handler = (*authorizeHandler)(nil)

func (h *authorizeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: authorizeCost}, nil
}

func (h *authorizeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, registry, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Authorize(db, msg.RegistryID, msg.Signer); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Emit(custody.NewEvent("authz.authorized").
		With("registry", registry.Address).
		With("signer", msg.Signer))
	return res, nil
}

func (h *authorizeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*AuthorizeMsg, *Registry, error) {
	var msg AuthorizeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	registry, err := adminOnly(ctx, db, h.auth, h.ctrl, msg.RegistryID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, registry, nil
}

type revokeHandler struct {
	auth x.Authenticator
	ctrl BaseController
}

var _ custody.Handler = (*revokeHandler)(nil)

func (h *revokeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: revokeCost}, nil
}

func (h *revokeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, registry, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Revoke(db, msg.RegistryID, msg.Signer); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Emit(custody.NewEvent("authz.revoked").
		With("registry", registry.Address).
		With("signer", msg.Signer))
	return res, nil
}

func (h *revokeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*RevokeMsg, *Registry, error) {
	var msg RevokeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	registry, err := adminOnly(ctx, db, h.auth, h.ctrl, msg.RegistryID)
	if err != nil {
		return nil, nil, err
	}
	if registry.Admin.Equals(msg.Signer) {
		return nil, nil, errors.Wrap(ErrCannotRevokeAdmin, "target is the registry admin")
	}
	return &msg, registry, nil
}

// adminOnly loads the registry and ensures its admin signed the transaction.
func adminOnly(ctx custody.Context, db custody.ReadOnlyKVStore, auth x.Authenticator, ctrl BaseController, registryID []byte) (*Registry, error) {
	registry, err := ctrl.Registry(db, registryID)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, registry.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature missing")
	}
	return registry, nil
}
