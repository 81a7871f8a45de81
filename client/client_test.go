package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/custody"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

const testChainID = "client-test"

// failingConn fails every request, like a node that cannot be reached.
type failingConn struct {
	Conn
}

func (failingConn) Status() (*ctypes.ResultStatus, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingConn) ABCIQueryWithOptions(string, cmn.HexBytes, rpcclient.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	return nil, fmt.Errorf("connection refused")
}

func newAppConn(t *testing.T, funded custody.Address) *LocalConnection {
	t.Helper()
	application, err := custodyd.GenerateApp("", log.NewNopLogger(), true, nil)
	require.NoError(t, err)
	appState := fmt.Sprintf(`{"cash": [{"address": %q, "coins": ["10 ETH"]}]}`, funded.Hex())
	application.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: []byte(appState)})
	return NewLocalConnection(application, testChainID)
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	conn   *LocalConnection
	client *Client
}

func newTestEnv(t *testing.T, funded custody.Address) *testEnv {
	conn := newAppConn(t, funded)
	return &testEnv{
		t:      t,
		ctx:    context.Background(),
		conn:   conn,
		client: NewClient(conn),
	}
}

// commit signs msg with all keys, using the nonces known by the node, and
// requires the transaction to succeed.
func (e *testEnv) commit(msg custody.Msg, keys ...*crypto.PrivateKey) *CommitResult {
	e.t.Helper()
	tx := custodyd.NewTx(msg)
	for _, key := range keys {
		nonce, err := e.client.Nonce(e.ctx, key.Address())
		require.NoError(e.t, err)
		sig, err := sigs.SignTx(key, tx, testChainID, nonce)
		require.NoError(e.t, err)
		tx.Signatures = append(tx.Signatures, sig)
	}
	res, err := e.client.BroadcastTxCommit(e.ctx, tx)
	require.NoError(e.t, err)
	require.NoError(e.t, res.Err)
	return res
}

func TestClientStatus(t *testing.T) {
	env := newTestEnv(t, custodytest.NewAddress())

	chainID, err := env.client.ChainID(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, testChainID, chainID)

	offline := NewClient(failingConn{})
	_, err = offline.Status(env.ctx)
	assert.True(t, errors.ErrNetwork.Is(err))
	_, err = offline.Query(env.ctx, "/wallets", custodytest.NewAddress())
	assert.True(t, errors.ErrNetwork.Is(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = env.client.Status(ctx)
	assert.True(t, errors.ErrTimeout.Is(err))
}

func TestClientQueryErrors(t *testing.T) {
	env := newTestEnv(t, custodytest.NewAddress())

	_, err := env.client.Query(env.ctx, "/unknown", nil)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = env.client.Query(env.ctx, "/wallets?unknown", nil)
	assert.True(t, errors.ErrInput.Is(err))

	models, err := env.client.Query(env.ctx, "/wallets", custodytest.NewAddress())
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestClientCustodyFlow(t *testing.T) {
	admin := custodytest.NewKey()
	signer := custodytest.NewKey()
	recipient := custodytest.NewAddress()
	env := newTestEnv(t, admin.Address())
	c := env.client

	bal, err := c.Balance(env.ctx, admin.Address(), "ETH")
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(10, 0, "ETH").Equals(bal))

	registryID := env.commit(&authz.CreateRegistryMsg{}, admin).Result.Data
	registry, err := c.Registry(env.ctx, registryID)
	require.NoError(t, err)
	assert.Equal(t, admin.Address(), registry.Admin)

	ok, err := c.IsAuthorized(env.ctx, registryID, signer.Address())
	require.NoError(t, err)
	assert.False(t, ok)
	env.commit(&authz.AuthorizeMsg{RegistryID: registryID, Signer: signer.Address()}, admin)
	ok, err = c.IsAuthorized(env.ctx, registryID, signer.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	res := env.commit(&vault.CreateVaultMsg{RegistryID: registryID, Ticker: "ETH"}, signer)
	vaultID := res.Result.Data
	v, err := c.Vault(env.ctx, vaultID)
	require.NoError(t, err)
	assert.Equal(t, vault.Condition(vaultID).Address(), v.Address)

	env.commit(&vault.DepositMsg{VaultID: vaultID, Source: admin.Address(), Amount: coin.NewCoinp(2, 0, "ETH")}, admin)
	bal, err = c.VaultBalance(env.ctx, vaultID)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(2, 0, "ETH").Equals(bal))

	authID := make([]byte, replay.AuthIDLength)
	authID[0] = 1
	amount := coin.NewCoin(0, 500000000, "ETH")
	sig, err := vault.SignWithdrawal(signer, v.Address, recipient, amount, authID)
	require.NoError(t, err)
	withdraw := &vault.WithdrawMsg{
		VaultID:   vaultID,
		Recipient: recipient,
		Amount:    &amount,
		AuthID:    authID,
		Signature: sig,
	}

	consumed, err := c.IsConsumed(env.ctx, vaultID, authID)
	require.NoError(t, err)
	assert.False(t, consumed)

	res = env.commit(withdraw)
	if ev, ok := findEvent(res.Result.Events, "vault.withdraw"); assert.True(t, ok) {
		got, _ := ev.Attr("signer")
		assert.Equal(t, signer.Address().String(), got)
	}

	consumed, err = c.IsConsumed(env.ctx, vaultID, authID)
	require.NoError(t, err)
	assert.True(t, consumed)
	bal, err = c.Balance(env.ctx, recipient, "ETH")
	require.NoError(t, err)
	assert.True(t, amount.Equals(bal))

	// a replay is rejected before it reaches a block
	_, err = c.BroadcastTxCommit(env.ctx, custodyd.NewTx(withdraw))
	assert.True(t, replay.ErrAuthIDConsumed.Is(err))

	found, err := c.SearchTx(env.ctx, QueryTxByTag("vault.withdraw", "vault", v.Address.String()))
	require.NoError(t, err)
	if assert.Len(t, found, 1) {
		assert.Equal(t, res.ID, found[0].ID)
		assert.NoError(t, found[0].Err)
	}

	byID, err := c.GetTxByID(env.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Height, byID.Height)

	found, err = c.SearchTx(env.ctx, QueryTxByID(res.ID))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = c.GetTxByID(env.ctx, []byte{1, 2, 3})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestClientCheckTxRejection(t *testing.T) {
	admin := custodytest.NewKey()
	env := newTestEnv(t, admin.Address())

	registryID := env.commit(&authz.CreateRegistryMsg{}, admin).Result.Data

	tx := custodyd.NewTx(&authz.RevokeMsg{RegistryID: registryID, Signer: admin.Address()})
	nonce, err := env.client.Nonce(env.ctx, admin.Address())
	require.NoError(t, err)
	assert.EqualValues(t, 1, nonce)
	sig, err := sigs.SignTx(admin, tx, testChainID, nonce)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)

	_, err = env.client.BroadcastTxCommit(env.ctx, tx)
	assert.True(t, authz.ErrCannotRevokeAdmin.Is(err))

	// nothing was committed
	nonce, err = env.client.Nonce(env.ctx, admin.Address())
	require.NoError(t, err)
	assert.EqualValues(t, 1, nonce)
}

func findEvent(events []custody.Event, typ string) (custody.Event, bool) {
	for _, e := range events {
		if e.Type == typ {
			return e, true
		}
	}
	return custody.Event{}, false
}
