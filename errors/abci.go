package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a successful ABCI response.
	SuccessABCICode = 0

	// Errors that were not registered share code 1 and, outside of debug
	// mode, a generic log message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response carrying err.
//
// Only registered errors expose their message. Any other error gets code 1
// and the log "internal error", unless debug is set. In debug mode the log
// holds the full error, including the stack trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// ABCIError turns the code and log of an ABCI response back into an error.
// A registered code maps to its error, so that for example
// ErrNotFound.Is(err) works on the client side.
//
// Only clients should use it. The application returns registered errors.
func ABCIError(code uint32, log string) error {
	if e, ok := usedCodes[code]; ok && e != nil {
		return &wrappedError{msg: log, parent: e}
	}
	// never matches with Is
	return Wrap(&Error{code: code, desc: "unknown error code"}, log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the cause chain that has
// one, or the internal code.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}

// errIsNil returns true for a nil error, including a nil pointer stored in
// the error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Redact replaces errors that are not registered, and panics, with a
// generic internal error. It hides implementation details from the
// outside. In debug mode err is returned as is.
func Redact(err error, debug bool) error {
	if debug || errIsNil(err) {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
