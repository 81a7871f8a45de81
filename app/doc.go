/*
Package app contains the generic ABCI application: it routes messages to
their handlers through a chain of decorators, keeps the check and deliver
state of the current block and serves queries from the committed state.

The state machine is single writer. Tendermint already serializes ABCI
calls, StoreApp additionally guards every state access with a mutex so that
in-process callers get the same guarantee.
*/
package app
