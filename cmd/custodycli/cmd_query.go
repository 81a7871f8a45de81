package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody/coin"
)

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print all coins owned by given address, one per line. A vault address can be
used as well.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		addrFl = flAddress(fl, "addr", "", "Address of the wallet.")
	)
	fl.Parse(args)

	if len(*addrFl) == 0 {
		return fmt.Errorf("address is required")
	}
	coins, err := newClient(*tmAddrFl).Wallet(context.Background(), *addrFl)
	if err != nil {
		return fmt.Errorf("cannot fetch wallet: %s", err)
	}
	for _, c := range coins {
		fmt.Fprintln(output, c)
	}
	return nil
}

func cmdVault(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the vault with given ID together with its current balance.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		vaultFl = flSeq(fl, "vault", "", "ID of the vault.")
	)
	fl.Parse(args)

	ctx := context.Background()
	c := newClient(*tmAddrFl)
	v, err := c.Vault(ctx, *vaultFl)
	if err != nil {
		return fmt.Errorf("cannot fetch vault: %s", err)
	}
	balance, err := c.Balance(ctx, v.Address, v.Ticker)
	if err != nil {
		return fmt.Errorf("cannot fetch vault balance: %s", err)
	}
	registry, err := fromSequence(v.RegistryID)
	if err != nil {
		return fmt.Errorf("invalid registry ID: %s", err)
	}

	view := struct {
		ID       string    `json:"id"`
		Registry uint64    `json:"registry"`
		Address  string    `json:"address"`
		Balance  coin.Coin `json:"balance"`
	}{
		ID:       vaultFl.String(),
		Registry: registry,
		Address:  v.Address.Hex(),
		Balance:  balance,
	}
	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

func cmdIsAuthorized(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print true if the signer is currently authorized by given registry, false
otherwise.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		registryFl = flSeq(fl, "registry", "", "ID of the registry.")
		signerFl   = flAddress(fl, "signer", "", "Address of the signer.")
	)
	fl.Parse(args)

	ok, err := newClient(*tmAddrFl).IsAuthorized(context.Background(), *registryFl, *signerFl)
	if err != nil {
		return fmt.Errorf("cannot fetch authorization: %s", err)
	}
	_, err = fmt.Fprintln(output, ok)
	return err
}

func cmdIsConsumed(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print true if the authorization ID was already used to withdraw from given
vault, false otherwise.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		vaultFl  = flSeq(fl, "vault", "", "ID of the vault.")
		authIDFl = flHex(fl, "authid", "", "Hex encoded authorization ID.")
	)
	fl.Parse(args)

	used, err := newClient(*tmAddrFl).IsConsumed(context.Background(), *vaultFl, *authIDFl)
	if err != nil {
		return fmt.Errorf("cannot fetch authorization ID: %s", err)
	}
	_, err = fmt.Fprintln(output, used)
	return err
}
