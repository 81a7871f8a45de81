package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/client"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/vault"
)

// deployment is the record of a registry and the vault it guards.
type deployment struct {
	ChainID         string          `json:"chain_id"`
	Admin           custody.Address `json:"admin"`
	RegistryID      uint64          `json:"registry_id"`
	RegistryAddress custody.Address `json:"registry_address"`
	VaultID         uint64          `json:"vault_id"`
	VaultAddress    custody.Address `json:"vault_address"`
	Ticker          string          `json:"ticker"`
}

func cmdDeploy(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Deploy a new vault. An authorization registry is created first, with the
owner of given key as its admin, followed by a vault guarded by that
registry. Both transactions are signed with given key and submitted.

The IDs and addresses of both are written out as JSON, and to the file given
by -out if set.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use CUSTODYCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key of the deployer. You can use CUSTODYCLI_PRIV_KEY environment variable to set it.")
		tickerFl = fl.String("ticker", custodyd.DefaultTicker, "Currency held by the vault.")
		outFl    = fl.String("out", "", "Optional path of a file the deployment record is written to.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}

	ctx := context.Background()
	c := newClient(*tmAddrFl)
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("cannot fetch chain ID: %s", err)
	}

	res, err := signAndSubmit(ctx, c, chainID, key, &authz.CreateRegistryMsg{Admin: key.Address()})
	if err != nil {
		return fmt.Errorf("cannot create registry: %s", err)
	}
	registryID := res.Result.Data

	res, err = signAndSubmit(ctx, c, chainID, key, &vault.CreateVaultMsg{RegistryID: registryID, Ticker: *tickerFl})
	if err != nil {
		return fmt.Errorf("cannot create vault: %s", err)
	}
	vaultID := res.Result.Data

	d := deployment{
		ChainID:         chainID,
		Admin:           key.Address(),
		RegistryAddress: authz.Condition(registryID).Address(),
		VaultAddress:    vault.Condition(vaultID).Address(),
		Ticker:          *tickerFl,
	}
	if d.RegistryID, err = fromSequence(registryID); err != nil {
		return fmt.Errorf("invalid registry ID: %s", err)
	}
	if d.VaultID, err = fromSequence(vaultID); err != nil {
		return fmt.Errorf("invalid vault ID: %s", err)
	}

	pretty, err := json.MarshalIndent(d, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	if *outFl != "" {
		if err := ioutil.WriteFile(*outFl, pretty, 0644); err != nil {
			return fmt.Errorf("cannot write deployment record: %s", err)
		}
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

// signAndSubmit submits a transaction carrying given message, signed with
// the next nonce of the key. A transaction failing in the block is returned
// as an error.
func signAndSubmit(ctx context.Context, c *client.Client, chainID string, key *crypto.PrivateKey, msg custody.Msg) (*client.CommitResult, error) {
	nonce, err := c.Nonce(ctx, key.Address())
	if err != nil {
		return nil, fmt.Errorf("cannot get the next sequence number: %s", err)
	}
	tx := custodyd.NewTx(msg)
	sig, err := sigs.SignTx(key, tx, chainID, nonce)
	if err != nil {
		return nil, fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)

	res, err := c.BroadcastTxCommit(ctx, tx)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res, nil
}
