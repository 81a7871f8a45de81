package vault

import "github.com/iov-one/custody/errors"

// x/vault reserves 400 ~ 409.
var (
	ErrInsufficientBalance = errors.Register(400, "insufficient vault balance")
	ErrTransferFailed      = errors.Register(401, "transfer failed")
)
