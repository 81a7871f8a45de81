package main

import (
	"flag"
	"fmt"
	"io"

	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/x/authz"
)

func cmdCreateRegistry(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for a new authorization registry.

The admin of the registry is the only one allowed to authorize and revoke
signers. The admin is always authorized and cannot be revoked. When no admin
is given, the first signer of the transaction becomes the admin.
`)
		fl.PrintDefaults()
	}
	var (
		adminFl = flAddress(fl, "admin", "", "Optional address of the registry admin.")
	)
	fl.Parse(args)

	msg := authz.CreateRegistryMsg{Admin: *adminFl}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}

func cmdAuthorize(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that allows a signer to approve withdrawals from all
vaults guarded by given registry. It must be signed by the registry admin.
`)
		fl.PrintDefaults()
	}
	var (
		registryFl = flSeq(fl, "registry", "", "ID of the registry.")
		signerFl   = flAddress(fl, "signer", "", "Address of the signer to authorize.")
	)
	fl.Parse(args)

	msg := authz.AuthorizeMsg{
		RegistryID: *registryFl,
		Signer:     *signerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}

func cmdRevoke(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that takes away the right of a signer to approve
withdrawals. It must be signed by the registry admin. Withdrawals approved by
the signer before, but not submitted yet, are rejected once this is executed.
`)
		fl.PrintDefaults()
	}
	var (
		registryFl = flSeq(fl, "registry", "", "ID of the registry.")
		signerFl   = flAddress(fl, "signer", "", "Address of the signer to revoke.")
	)
	fl.Parse(args)

	msg := authz.RevokeMsg{
		RegistryID: *registryFl,
		Signer:     *signerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}
