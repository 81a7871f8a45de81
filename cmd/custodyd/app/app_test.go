package custodyd

import (
	"fmt"
	"sync"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "custody-test"

type testApp struct {
	t      *testing.T
	app    app.BaseApp
	height int64
	seqs   map[string]int64
}

// newTestApp starts a chain at height 1 with the deployer owning 10 ETH.
func newTestApp(t *testing.T, deployer custody.Address) *testApp {
	t.Helper()
	application, err := GenerateApp("", log.NewNopLogger(), true, nil)
	require.NoError(t, err)

	base := application.(app.BaseApp)
	appState := fmt.Sprintf(`{"cash": [{"address": %q, "coins": ["10 ETH"]}]}`, deployer.Hex())
	base.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: []byte(appState)})

	ta := &testApp{t: t, app: base, seqs: make(map[string]int64)}
	ta.beginBlock()
	return ta
}

func (ta *testApp) beginBlock() {
	ta.height++
	ta.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: ta.height, ChainID: testChainID}})
}

// commit ends the current block and starts the next one.
func (ta *testApp) commit() {
	ta.app.EndBlock(abci.RequestEndBlock{Height: ta.height})
	ta.app.Commit()
	ta.beginBlock()
}

// signedTx serializes msg, signed by all given keys.
func (ta *testApp) signedTx(msg custody.Msg, keys ...*crypto.PrivateKey) []byte {
	ta.t.Helper()
	tx := NewTx(msg)
	for _, key := range keys {
		addr := key.Address().String()
		sig, err := sigs.SignTx(key, tx, testChainID, ta.seqs[addr])
		require.NoError(ta.t, err)
		ta.seqs[addr]++
		tx.Signatures = append(tx.Signatures, sig)
	}
	raw, err := tx.Marshal()
	require.NoError(ta.t, err)
	return raw
}

func (ta *testApp) deliver(msg custody.Msg, keys ...*crypto.PrivateKey) abci.ResponseDeliverTx {
	return ta.app.DeliverTx(ta.signedTx(msg, keys...))
}

func (ta *testApp) mustDeliver(msg custody.Msg, keys ...*crypto.PrivateKey) abci.ResponseDeliverTx {
	ta.t.Helper()
	res := ta.deliver(msg, keys...)
	require.Equal(ta.t, uint32(0), res.Code, res.Log)
	return res
}

// balance returns the committed wallet content of addr for ETH.
func (ta *testApp) balance(addr custody.Address) coin.Coin {
	ta.t.Helper()
	res := ta.app.Query(abci.RequestQuery{Path: "/wallets", Data: addr})
	require.Equal(ta.t, uint32(0), res.Code, res.Log)

	var values app.ResultSet
	require.NoError(ta.t, values.Unmarshal(res.Value))
	if len(values.Results) == 0 {
		return coin.Coin{Ticker: "ETH"}
	}
	var set cash.Set
	require.NoError(ta.t, set.Unmarshal(values.Results[0]))
	return set.Coins.Balance("ETH")
}

func eth(whole, frac int64) *coin.Coin {
	return coin.NewCoinp(whole, frac, "ETH")
}

func TestWithdrawalScenario(t *testing.T) {
	deployer := custodytest.NewKey()
	signer := custodytest.NewKey()
	recipient := custodytest.NewAddress()

	ta := newTestApp(t, deployer.Address())

	res := ta.mustDeliver(&authz.CreateRegistryMsg{}, deployer)
	registryID := res.Data
	res = ta.mustDeliver(&vault.CreateVaultMsg{RegistryID: registryID, Ticker: "ETH"}, deployer)
	vaultID := res.Data
	vaultAddr := vault.Condition(vaultID).Address()

	// a plain transfer to the vault address is a deposit
	ta.mustDeliver(&cash.SendMsg{
		Source:      deployer.Address(),
		Destination: vaultAddr,
		Amount:      eth(1, 0),
	}, deployer)
	ta.commit()
	assert.True(t, eth(1, 0).Equals(ta.balance(vaultAddr)))
	assert.True(t, eth(9, 0).Equals(ta.balance(deployer.Address())))

	authID := make([]byte, replay.AuthIDLength)
	authID[0] = 7
	withdraw := &vault.WithdrawMsg{
		VaultID:   vaultID,
		Recipient: recipient,
		Amount:    eth(0, 100000000),
		AuthID:    authID,
	}

	// an empty signature is rejected and nothing changes
	res = ta.deliver(withdraw)
	assert.Equal(t, crypto.ErrInvalidSignature.ABCICode(), res.Code)

	// a valid signature of a signer that is not authorized yet
	sig, err := vault.SignWithdrawal(signer, vaultAddr, recipient, *withdraw.Amount, authID)
	require.NoError(t, err)
	withdraw.Signature = sig
	res = ta.deliver(withdraw)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code)
	ta.commit()
	assert.True(t, eth(1, 0).Equals(ta.balance(vaultAddr)))

	ta.mustDeliver(&authz.AuthorizeMsg{RegistryID: registryID, Signer: signer.Address()}, deployer)

	// checking does not consume the authorization
	check := ta.app.CheckTx(ta.signedTx(withdraw))
	assert.Equal(t, uint32(0), check.Code, check.Log)

	res = ta.mustDeliver(withdraw)
	assert.NotEmpty(t, res.Tags)
	ta.commit()
	assert.True(t, eth(0, 900000000).Equals(ta.balance(vaultAddr)))
	assert.True(t, eth(0, 100000000).Equals(ta.balance(recipient)))

	// the same authorization cannot be used twice
	res = ta.deliver(withdraw)
	assert.Equal(t, replay.ErrAuthIDConsumed.ABCICode(), res.Code)

	// revocation takes effect immediately
	ta.mustDeliver(&authz.RevokeMsg{RegistryID: registryID, Signer: signer.Address()}, deployer)
	withdraw.AuthID = make([]byte, replay.AuthIDLength)
	withdraw.Signature, err = vault.SignWithdrawal(signer, vaultAddr, recipient, *withdraw.Amount, withdraw.AuthID)
	require.NoError(t, err)
	res = ta.deliver(withdraw)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code)

	// the admin can never be revoked
	res = ta.deliver(&authz.RevokeMsg{RegistryID: registryID, Signer: deployer.Address()}, deployer)
	assert.Equal(t, authz.ErrCannotRevokeAdmin.ABCICode(), res.Code)

	ta.commit()
	assert.True(t, eth(0, 900000000).Equals(ta.balance(vaultAddr)))
}

func TestConcurrentWithdrawalsWithSameAuthID(t *testing.T) {
	deployer := custodytest.NewKey()
	recipient := custodytest.NewAddress()
	ta := newTestApp(t, deployer.Address())

	registryID := ta.mustDeliver(&authz.CreateRegistryMsg{}, deployer).Data
	vaultID := ta.mustDeliver(&vault.CreateVaultMsg{RegistryID: registryID, Ticker: "ETH"}, deployer).Data
	vaultAddr := vault.Condition(vaultID).Address()
	ta.mustDeliver(&vault.DepositMsg{VaultID: vaultID, Source: deployer.Address(), Amount: eth(5, 0)}, deployer)
	ta.commit()

	authID := make([]byte, replay.AuthIDLength)
	authID[31] = 1
	amount := eth(1, 0)
	sig, err := vault.SignWithdrawal(deployer, vaultAddr, recipient, *amount, authID)
	require.NoError(t, err)
	raw := ta.signedTx(&vault.WithdrawMsg{
		VaultID:   vaultID,
		Recipient: recipient,
		Amount:    amount,
		AuthID:    authID,
		Signature: sig,
	})

	const workers = 8
	codes := make(chan uint32, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- ta.app.DeliverTx(raw).Code
		}()
	}
	wg.Wait()
	close(codes)

	var succeeded, consumed int
	for code := range codes {
		switch code {
		case 0:
			succeeded++
		case replay.ErrAuthIDConsumed.ABCICode():
			consumed++
		default:
			t.Errorf("unexpected code %d", code)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, consumed)

	ta.commit()
	assert.True(t, eth(4, 0).Equals(ta.balance(vaultAddr)))
	assert.True(t, eth(1, 0).Equals(ta.balance(recipient)))
}

func TestQueryVault(t *testing.T) {
	deployer := custodytest.NewKey()
	ta := newTestApp(t, deployer.Address())

	registryID := ta.mustDeliver(&authz.CreateRegistryMsg{}, deployer).Data
	vaultID := ta.mustDeliver(&vault.CreateVaultMsg{RegistryID: registryID, Ticker: "ETH"}, deployer).Data
	ta.commit()

	res := ta.app.Query(abci.RequestQuery{Path: "/vaults", Data: vaultID})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var values app.ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	require.Len(t, values.Results, 1)

	var v vault.Vault
	require.NoError(t, v.Unmarshal(values.Results[0]))
	assert.Equal(t, registryID, v.RegistryID)
	assert.Equal(t, "ETH", v.Ticker)
	assert.Equal(t, vault.Condition(vaultID).Address(), v.Address)

	res = ta.app.Query(abci.RequestQuery{Path: "/authorizations?prefix", Data: registryID})
	require.Equal(t, uint32(0), res.Code, res.Log)
	require.NoError(t, values.Unmarshal(res.Value))
	assert.Len(t, values.Results, 1)
}
