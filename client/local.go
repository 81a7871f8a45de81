package client

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/p2p"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// LocalConnection runs an abci application in process, without a
// tendermint node. Every broadcast transaction that passes CheckTx is
// committed in a block of its own. This is useful for tests.
//
// The application must be initialized (InitChain) before use.
type LocalConnection struct {
	mu      sync.Mutex
	app     abci.Application
	chainID string
	height  int64
	txs     []*ctypes.ResultTx
}

var _ Conn = (*LocalConnection)(nil)

// NewLocalConnection wraps an application running given chain.
func NewLocalConnection(app abci.Application, chainID string) *LocalConnection {
	return &LocalConnection{app: app, chainID: chainID}
}

func (c *LocalConnection) Status() (*ctypes.ResultStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &ctypes.ResultStatus{
		NodeInfo: p2p.DefaultNodeInfo{Network: c.chainID},
		SyncInfo: ctypes.SyncInfo{LatestBlockHeight: c.height},
	}, nil
}

func (c *LocalConnection) Genesis() (*ctypes.ResultGenesis, error) {
	return &ctypes.ResultGenesis{Genesis: &tmtypes.GenesisDoc{ChainID: c.chainID}}, nil
}

func (c *LocalConnection) ABCIQueryWithOptions(path string, data cmn.HexBytes, opts rpcclient.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.app.Query(abci.RequestQuery{Path: path, Data: data, Height: opts.Height, Prove: opts.Prove})
	return &ctypes.ResultABCIQuery{Response: res}, nil
}

func (c *LocalConnection) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	check := c.app.CheckTx(tx)
	if check.Code != 0 {
		return &ctypes.ResultBroadcastTxCommit{CheckTx: check, Hash: tx.Hash()}, nil
	}

	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: c.height, ChainID: c.chainID},
	})
	deliver := c.app.DeliverTx(tx)
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()

	c.txs = append(c.txs, &ctypes.ResultTx{
		Hash:     tx.Hash(),
		Height:   c.height,
		TxResult: deliver,
		Tx:       tx,
	})
	return &ctypes.ResultBroadcastTxCommit{
		CheckTx:   check,
		DeliverTx: deliver,
		Hash:      tx.Hash(),
		Height:    c.height,
	}, nil
}

func (c *LocalConnection) Tx(hash []byte, prove bool) (*ctypes.ResultTx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tx := range c.txs {
		if bytes.Equal(tx.Hash, hash) {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("tx (%X) not found", hash)
}

// TxSearch supports a single condition, either on the transaction hash or
// on a tag, for example "vault.withdraw.vault='0A12...'".
func (c *LocalConnection) TxSearch(query string, prove bool, page, perPage int) (*ctypes.ResultTxSearch, error) {
	chunks := strings.SplitN(query, "=", 2)
	if len(chunks) != 2 {
		return nil, fmt.Errorf("unsupported query %q", query)
	}
	key := strings.TrimSpace(chunks[0])
	value := strings.Trim(strings.TrimSpace(chunks[1]), "'")

	c.mu.Lock()
	defer c.mu.Unlock()

	var found []*ctypes.ResultTx
	for _, tx := range c.txs {
		if key == tmtypes.TxHashKey {
			if strings.EqualFold(tx.Hash.String(), value) {
				found = append(found, tx)
			}
			continue
		}
		for _, tag := range tx.TxResult.Tags {
			if string(tag.Key) == key && string(tag.Value) == value {
				found = append(found, tx)
				break
			}
		}
	}

	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start > len(found) {
		start = len(found)
	}
	end := start + perPage
	if end > len(found) {
		end = len(found)
	}
	return &ctypes.ResultTxSearch{Txs: found[start:end], TotalCount: len(found)}, nil
}
