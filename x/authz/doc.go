/*
Package authz implements the authorization registry: the set of addresses
allowed to sign vault withdrawals.

A registry has a single admin, chosen when it is created and never changed.
The admin is authorized at creation and cannot be revoked. Only the admin
can authorize or revoke other signers. Any extension can ask the registry
whether an address is authorized, unknown addresses are not.
*/
package authz
