package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/client"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/crypto"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "custodycli-test"

// withLocalNode points all commands to an in process node, where the given
// address owns 10 ETH. Returned function restores the previous setup.
func withLocalNode(t testing.TB, funded custody.Address) func() {
	t.Helper()
	application, err := custodyd.GenerateApp("", log.NewNopLogger(), true, nil)
	if err != nil {
		t.Fatalf("cannot create application: %s", err)
	}
	appState := fmt.Sprintf(`{"cash": [{"address": %q, "coins": ["10 ETH"]}]}`, funded.Hex())
	application.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: []byte(appState)})

	conn := client.NewLocalConnection(application, testChainID)
	prev := newClient
	newClient = func(string) *client.Client {
		return client.NewClient(conn)
	}
	return func() { newClient = prev }
}

// tempDir returns a new directory and a function that removes it.
func tempDir(t testing.TB) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "custodycli")
	if err != nil {
		t.Fatalf("cannot create directory: %s", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// writeKey stores the key in a file the way keygen does and returns its
// path.
func writeKey(t testing.TB, dir, name string, key *crypto.PrivateKey) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(key.Hex()), 0600); err != nil {
		t.Fatalf("cannot write key: %s", err)
	}
	return path
}

// run executes the command with given input and returns its output.
func run(t testing.TB, cmd func(io.Reader, io.Writer, []string) error, input []byte, args ...string) []byte {
	t.Helper()
	var output bytes.Buffer
	if err := cmd(bytes.NewReader(input), &output, args); err != nil {
		t.Fatalf("command failed: %s", err)
	}
	return output.Bytes()
}
