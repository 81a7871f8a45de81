package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody/x/sigs"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain ID and the nonce of the signer are fetched from the node.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use CUSTODYCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	if *keyPathFl == "" {
		return errors.New("private key is required")
	}
	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	ctx := context.Background()
	c := newClient(*tmAddrFl)
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("cannot fetch chain ID: %s", err)
	}
	nonce, err := c.Nonce(ctx, key.Address())
	if err != nil {
		return fmt.Errorf("cannot get the next sequence number: %s", err)
	}
	sig, err := sigs.SignTx(key, tx, chainID, nonce)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)

	_, err = writeTx(output, tx)
	return err
}
