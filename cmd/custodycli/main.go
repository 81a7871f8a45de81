/*
Command custodycli is a command line client for the custody node.

Each command does a single thing. Commands creating a transaction write it to
standard output, so that they can be combined into a pipeline:

  $ custodycli authorize -registry 1 -signer 0x8f3a... \
      | custodycli sign \
      | custodycli submit
*/
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/custody"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function reads only from given input and writes only to given
// output. Given args are the command line arguments, without the program
// name and the command name, and must be parsed using the flag package.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"authorize":       cmdAuthorize,
	"balance":         cmdBalance,
	"create-registry": cmdCreateRegistry,
	"create-vault":    cmdCreateVault,
	"deploy":          cmdDeploy,
	"deposit":         cmdDeposit,
	"is-authorized":   cmdIsAuthorized,
	"is-consumed":     cmdIsConsumed,
	"keyaddr":         cmdKeyaddr,
	"keygen":          cmdKeygen,
	"revoke":          cmdRevoke,
	"send-tokens":     cmdSendTokens,
	"sign":            cmdSignTransaction,
	"submit":          cmdSubmitTransaction,
	"vault":           cmdVault,
	"version":         cmdVersion,
	"view":            cmdTransactionView,
	"withdraw":        cmdWithdraw,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the custody node.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, custody.Version())
	return err
}
