package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"

	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/vault"
)

func cmdCreateVault(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for a new vault holding a single currency. Withdrawals
from the vault must be approved by a signer authorized in given registry.
The transaction must be signed by such an authorized signer.
`)
		fl.PrintDefaults()
	}
	var (
		registryFl = flSeq(fl, "registry", "", "ID of the registry guarding the vault.")
		tickerFl   = fl.String("ticker", custodyd.DefaultTicker, "Currency held by the vault.")
	)
	fl.Parse(args)

	msg := vault.CreateVaultMsg{
		RegistryID: *registryFl,
		Ticker:     *tickerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that moves funds from the source wallet into a vault. It
must be signed by the source.
`)
		fl.PrintDefaults()
	}
	var (
		vaultFl  = flSeq(fl, "vault", "", "ID of the vault.")
		srcFl    = flAddress(fl, "src", "", "Address of the wallet the funds are taken from.")
		amountFl = flCoin(fl, "amount", "", "Amount to deposit, for example \"1.5 ETH\".")
	)
	fl.Parse(args)

	msg := vault.DepositMsg{
		VaultID: *vaultFl,
		Source:  *srcFl,
		Amount:  amountFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Approve a withdrawal from a vault and create a transaction executing it.

The withdrawal is signed with given key, which must belong to a signer
authorized by the registry guarding the vault. The transaction itself does
not need further signatures and can be submitted by anyone. Each
authorization ID can be used only once per vault, a random one is used when
none is given.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl   = fl.String("key", defaultKeyPath(), "Path to the private key of the authorized signer. You can use CUSTODYCLI_PRIV_KEY environment variable to set it.")
		vaultFl     = flSeq(fl, "vault", "", "ID of the vault.")
		recipientFl = flAddress(fl, "recipient", "", "Address receiving the funds.")
		amountFl    = flCoin(fl, "amount", "", "Amount to withdraw, for example \"0.1 ETH\".")
		authIDFl    = flHex(fl, "authid", "", "Optional hex encoded 32 bytes authorization ID.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}

	authID := []byte(*authIDFl)
	if len(authID) == 0 {
		authID = make([]byte, replay.AuthIDLength)
		if _, err := rand.Read(authID); err != nil {
			return fmt.Errorf("cannot generate authorization ID: %s", err)
		}
		fmt.Fprintf(os.Stderr, "authorization ID: %x\n", authID)
	}

	vaultAddr := vault.Condition(*vaultFl).Address()
	sig, err := vault.SignWithdrawal(key, vaultAddr, *recipientFl, *amountFl, authID)
	if err != nil {
		return fmt.Errorf("cannot sign withdrawal: %s", err)
	}

	msg := vault.WithdrawMsg{
		VaultID:   *vaultFl,
		Recipient: *recipientFl,
		Amount:    amountFl,
		AuthID:    authID,
		Signature: sig,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err = writeTx(output, custodyd.NewTx(&msg))
	return err
}
