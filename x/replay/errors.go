package replay

import "github.com/iov-one/custody/errors"

// x/replay reserves 300 ~ 309.
var (
	ErrAuthIDConsumed = errors.Register(300, "authorization already used")
)
