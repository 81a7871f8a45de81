package main

import (
	"flag"
	"fmt"
	"io"

	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/x/cash"
)

func cmdSendTokens(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a token transfer transaction. Sending tokens to the address of a vault
deposits them into that vault.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl    = flAddress(fl, "src", "", "A source account address that tokens are send from.")
		dstFl    = flAddress(fl, "dst", "", "A destination account address that tokens are send to.")
		amountFl = flCoin(fl, "amount", "", "An amount that is to be transferred, for example \"1 ETH\".")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer.")
	)
	fl.Parse(args)

	msg := cash.SendMsg{
		Source:      *srcFl,
		Destination: *dstFl,
		Amount:      amountFl,
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	_, err := writeTx(output, custodyd.NewTx(&msg))
	return err
}
