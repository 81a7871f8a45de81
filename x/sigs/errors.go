package sigs

import "github.com/iov-one/custody/errors"

// x/sigs reserves 100 ~ 109.
var (
	ErrInvalidSequence = errors.Register(100, "invalid sequence number")
)
