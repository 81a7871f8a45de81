package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/vault"
)

// TestCustodyPipeline runs a full custody flow by chaining commands the
// way a shell pipeline does.
func TestCustodyPipeline(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	admin := custodytest.NewKey()
	signer := custodytest.NewKey()
	recipient := custodytest.NewAddress()
	adminKey := writeKey(t, dir, "admin", admin)
	signerKey := writeKey(t, dir, "signer", signer)

	defer withLocalNode(t, admin.Address())()

	submit := func(unsigned []byte, keys ...string) string {
		t.Helper()
		tx := unsigned
		for _, k := range keys {
			tx = run(t, cmdSignTransaction, tx, "-key", k)
		}
		return string(run(t, cmdSubmitTransaction, tx))
	}
	firstLine := func(s string) string {
		return strings.SplitN(s, "\n", 2)[0]
	}

	out := submit(run(t, cmdCreateRegistry, nil), adminKey)
	assert.Equal(t, "1", firstLine(out))

	submit(run(t, cmdAuthorize, nil, "-registry", "1", "-signer", signer.Address().Hex()), adminKey)
	assert.Equal(t, "true\n", string(run(t, cmdIsAuthorized, nil, "-registry", "1", "-signer", signer.Address().Hex())))

	out = submit(run(t, cmdCreateVault, nil, "-registry", "1", "-ticker", "ETH"), signerKey)
	assert.Equal(t, "1", firstLine(out))

	out = submit(run(t, cmdDeposit, nil, "-vault", "1", "-src", admin.Address().Hex(), "-amount", "3 ETH"), adminKey)
	if !strings.Contains(out, "vault.deposit") {
		t.Fatalf("deposit event not printed: %q", out)
	}

	authID := make([]byte, replay.AuthIDLength)
	authID[0] = 0xAA
	withdraw := run(t, cmdWithdraw, nil,
		"-key", signerKey,
		"-vault", "1",
		"-recipient", recipient.Hex(),
		"-amount", "1.5 ETH",
		"-authid", hex.EncodeToString(authID),
	)
	out = submit(withdraw)
	if !strings.Contains(out, "vault.withdraw") {
		t.Fatalf("withdraw event not printed: %q", out)
	}

	assert.Equal(t, "1.5 ETH\n", string(run(t, cmdBalance, nil, "-addr", recipient.Hex())))
	assert.Equal(t, "true\n", string(run(t, cmdIsConsumed, nil, "-vault", "1", "-authid", hex.EncodeToString(authID))))

	view := string(run(t, cmdVault, nil, "-vault", "1"))
	if !strings.Contains(view, `"id": "1"`) || !strings.Contains(view, `"registry": 1`) {
		t.Fatalf("unexpected vault view: %s", view)
	}

	// the same authorization cannot be submitted twice
	var output bytes.Buffer
	err := cmdSubmitTransaction(bytes.NewReader(withdraw), &output, nil)
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("replayed withdrawal must fail, got %v", err)
	}
}

func TestCmdTransactionView(t *testing.T) {
	tx := run(t, cmdCreateVault, nil, "-registry", "4", "-ticker", "ETH")
	out := string(run(t, cmdTransactionView, tx))
	if !strings.Contains(out, `"path": "vault/create"`) {
		t.Fatalf("unexpected view: %s", out)
	}
}

func TestCmdDeploy(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	deployer := custodytest.NewKey()
	keyPath := writeKey(t, dir, "deployer", deployer)
	outPath := filepath.Join(dir, "deployment.json")

	defer withLocalNode(t, deployer.Address())()

	run(t, cmdDeploy, nil, "-key", keyPath, "-out", outPath)
	raw, err := ioutil.ReadFile(outPath)
	if err != nil {
		t.Fatalf("cannot read deployment record: %s", err)
	}
	var d deployment
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("cannot decode deployment record: %s", err)
	}
	assert.Equal(t, testChainID, d.ChainID)
	assert.Equal(t, deployer.Address(), d.Admin)
	assert.Equal(t, uint64(1), d.RegistryID)
	assert.Equal(t, uint64(1), d.VaultID)
	assert.Equal(t, vault.Condition(custodytest.SequenceID(1)).Address(), d.VaultAddress)

	// a second deployment gets its own registry and vault
	out := run(t, cmdDeploy, nil, "-key", keyPath)
	if err := json.Unmarshal(out, &d); err != nil {
		t.Fatalf("cannot decode deployment record: %s", err)
	}
	assert.Equal(t, uint64(2), d.RegistryID)
	assert.Equal(t, uint64(2), d.VaultID)

	// the deployer is the admin, so it is allowed to approve withdrawals
	assert.Equal(t, "true\n", string(run(t, cmdIsAuthorized, nil, "-registry", "2", "-signer", deployer.Address().Hex())))
}
