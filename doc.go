/*
Package custody defines the common interfaces that tie together the
extensions of the custody chain, as well as implementations of some of the
simpler components (when interfaces would be too much overhead).

A transaction flows from the ABCI application through a chain of Decorators
into the Handler registered for the message path. Every step receives a
Context, a KVStore and the decoded Tx.

We pass context through context.Context between app, decorators and
handlers. Common keys to store info, such as block height and chain id, are
defined here. Each extension, such as sigs, may add its own keys to enrich
the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, header).
*/
package custody
