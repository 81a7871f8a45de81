/*
Package client talks to a running custody node over the tendermint RPC.

It wraps queries of the custody state (wallets, registries, vaults and
consumed authorization IDs) and the submission of signed transactions.
All calls block until the node responds, the context is only checked
before a request is sent.
*/
package client
