/*
Package errors implements coded errors for the custody chain.

Every error returned by a handler should wrap one of the root errors declared
with Register. The root error carries an ABCI code, which is what clients
receive and use to tell a replayed authorization apart from a bad signature or
an empty vault.

Common root errors are declared in this package. Extensions declare their
own (for example x/vault declares ErrInsufficientBalance) using Register with
a code from their reserved range:

	  2 -  99  common errors (this package)
	 30 -  39  crypto
	200 - 299  x/authz
	300 - 399  x/replay
	400 - 499  x/vault

Create errors at the point of failure with ErrXyz.New("...") or
errors.Wrap(ErrXyz, "...") so that a stacktrace is attached. Use %+v to print
it.
*/
package errors
