/*
Package vault implements the custody ledger: a wallet owned by no key, that
releases funds only against a signature of an authorized signer.

Each vault holds a single currency and is bound to one authorization
registry. Anybody can deposit. A withdrawal carries a recipient, an amount,
a unique authorization ID and a signature over WithdrawDigest. It succeeds
only if the ID was never used in this vault, the signature recovers to an
address authorized in the registry and the vault holds enough funds. The ID
is consumed and the funds are moved in one step, so a failed transfer leaves
both the ID and the balance untouched.

The vault address is derived from its ID, see Condition. Funds sent to that
address with a plain cash transfer are deposits as well.
*/
package vault
