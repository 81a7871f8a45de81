package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/vault"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input, submit it and wait
until it is included in a block.

For transactions creating a registry or a vault the ID of the new entity is
written out. The events emitted by the transaction are written out as well.

Make sure to collect enough signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return fmt.Errorf("cannot extract message from transaction: %s", err)
	}

	res, err := newClient(*tmAddrFl).BroadcastTxCommit(context.Background(), tx)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}
	if res.Err != nil {
		return fmt.Errorf("transaction %X failed in block %d: %s", []byte(res.ID), res.Height, res.Err)
	}

	if format, ok := formatters[msg.Path()]; ok {
		pretty, err := format(res.Result.Data)
		if err != nil {
			return fmt.Errorf("cannot format result data %x: %s", res.Result.Data, err)
		}
		fmt.Fprintln(output, pretty)
	}
	printEvents(output, res.Result.Events)
	return nil
}

func printEvents(output io.Writer, events []custody.Event) {
	for _, e := range events {
		fmt.Fprintf(output, "%s", e.Type)
		for _, a := range e.Attributes {
			fmt.Fprintf(output, " %s=%s", a.Key, a.Value)
		}
		fmt.Fprintln(output)
	}
}

// formatters contains a mapping of a message path to response parser. Response
// parse function accepts a raw bytes of serialized response and must return a
// human representation of that data.
//
// Do not register a message if you want response returned after its submission
// to be ignored (not printed to the user).
var formatters = map[string]func([]byte) (string, error){
	authz.CreateRegistryMsg{}.Path(): fmtSequence,
	vault.CreateVaultMsg{}.Path():    fmtSequence,
}

func fmtSequence(raw []byte) (string, error) {
	n, err := fromSequence(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(n), nil
}
