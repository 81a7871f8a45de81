package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery is a decorator that turns a panic of the wrapped handler into an
// ErrPanic error. The panic value is logged with the path of the message that
// caused it. A panicking message fails alone and the node keeps running.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (Recovery) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (_ *custody.CheckResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (Recovery) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (_ *custody.DeliverResult, err error) {
	defer recoverTx(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverTx must be deferred directly, recover has no effect otherwise.
func recoverTx(ctx custody.Context, tx custody.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	path := custody.GetPath(tx)
	*err = errors.Wrapf(errors.ErrPanic, "%s: %v", path, r)
	custody.GetLogger(ctx).Error("handler panic", "path", path, "panic", r)
}
