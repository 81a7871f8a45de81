package authz

import "github.com/iov-one/custody/errors"

// x/authz reserves 200 ~ 299.
var (
	ErrCannotRevokeAdmin = errors.Register(200, "admin cannot be revoked")
)
