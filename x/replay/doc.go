/*
Package replay remembers which withdrawal authorizations were already used.

Every withdrawal carries a 32 byte authorization ID chosen by the signer.
Once a withdrawal succeeds its ID is consumed and can never be used again
within the same vault. The guard only marks IDs, it does not know what they
authorize.
*/
package replay
