package vault

import (
	"encoding/hex"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// RegisterRoutes registers handlers for all messages of this package.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(pathCreateVaultMsg, &createVaultHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathDepositMsg, &depositHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathWithdrawMsg, &withdrawHandler{ctrl: ctrl})
}

// RegisterQuery exposes vaults under "/vaults".
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("vaults", qr)
}

type createVaultHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ custody.Handler = (*createVaultHandler)(nil)

func (h *createVaultHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createVaultCost}, nil
}

func (h *createVaultHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, v, err := h.ctrl.CreateVault(db, msg.RegistryID, msg.Ticker)
	if err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{Data: id}
	res.Emit(custody.NewEvent("vault.created").
		With("vault", v.Address).
		With("ticker", v.Ticker))
	return res, nil
}

func (h *createVaultHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateVaultMsg, error) {
	var msg CreateVaultMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	for _, signer := range h.auth.GetAddresses(ctx) {
		ok, err := h.ctrl.authz.IsAuthorized(db, msg.RegistryID, signer)
		if err != nil {
			return nil, err
		}
		if ok {
			return &msg, nil
		}
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "registry signer signature missing")
}

type depositHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ custody.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.Vault(db, msg.VaultID)
	if err != nil {
		return nil, err
	}
	if msg.Amount.Ticker != v.Ticker {
		return nil, errors.Wrapf(errors.ErrCurrency, "vault holds %s only", v.Ticker)
	}
	return &custody.CheckResult{GasAllocated: depositCost}, nil
}

func (h *depositHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.Deposit(db, msg.VaultID, msg.Source, *msg.Amount)
	if err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Emit(custody.NewEvent("vault.deposit").
		With("vault", v.Address).
		With("source", msg.Source).
		With("amount", msg.Amount))
	return res, nil
}

func (h *depositHandler) validate(ctx custody.Context, tx custody.Tx) (*DepositMsg, error) {
	var msg DepositMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, nil
}

type withdrawHandler struct {
	ctrl Controller
}

var _ custody.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg WithdrawMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, _, err := h.ctrl.Verify(db, msg.Withdrawal()); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h *withdrawHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg WithdrawMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	v, signer, err := h.ctrl.Withdraw(ctx, db, msg.Withdrawal())
	if err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Emit(custody.NewEvent("vault.withdraw").
		With("vault", v.Address).
		With("recipient", msg.Recipient).
		With("amount", msg.Amount).
		With("auth_id", hex.EncodeToString(msg.AuthID)).
		With("signer", signer))
	return res, nil
}
