package client

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/errors"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

const txPerPage = 50

// Client is a tendermint client wrapped to provide
// simple access to the basic data structures used in custody.
//
// Basic accessors are declared here. Typed queries of the custody state
// are defined in queries.go.
type Client struct {
	conn Conn
}

// NewClient wraps a Client around an existing tendermint client connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Status returns current height and other (subjective) status info from this node
func (c *Client) Status(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "status: %s", err.Error())
	}
	return &Status{
		ChainID:    status.NodeInfo.Network,
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// ChainID returns the chain ID the node is running, which all transactions
// must be signed for.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.ChainID, nil
}

// Query sends an abci query to the node and returns all models found. A
// path may carry a query modifier, for example "/vaults?prefix". No match
// is an empty result, not an error.
func (c *Client) Query(ctx context.Context, path string, data []byte) ([]custody.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	res, err := c.conn.ABCIQueryWithOptions(path, data, rpcclient.ABCIQueryOptions{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query %s: %s", path, err.Error())
	}
	resp := res.Response
	if resp.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(resp.Code, resp.Log)
	}

	var keys, values app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, "cannot decode keys")
	}
	if err := values.Unmarshal(resp.Value); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, "cannot decode values")
	}
	return app.JoinResults(&keys, &values)
}

// BroadcastTxCommit submits the transaction and waits until it is included
// in a block. A transaction rejected by CheckTx is returned as an error,
// a transaction that failed in the block has the Err field of the result
// set.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx custody.Tx) (*CommitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal tx")
	}
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast tx: %s", err.Error())
	}
	// a checktx error is handled like any other error, the tx did not make
	// it into the mempool
	if res.CheckTx.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log)
	}
	result, err := custody.ParseDeliverOrError(res.DeliverTx)
	return &CommitResult{
		ID:     res.Hash,
		Height: res.Height,
		Result: result,
		Err:    err,
	}, nil
}

// GetTxByID will return the result of a committed transaction. ErrNotFound
// is returned for an unknown ID.
func (c *Client) GetTxByID(ctx context.Context, id TransactionID) (*CommitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	tx, err := c.conn.Tx(id, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "tx %X: %s", []byte(id), err.Error())
	}
	return resultTxToCommitResult(tx), nil
}

// SearchTx will search for all committed transactions that match a query,
// reading all result pages.
func (c *Client) SearchTx(ctx context.Context, query TxQuery) ([]*CommitResult, error) {
	var results []*CommitResult
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrTimeout, err.Error())
		}
		search, err := c.conn.TxSearch(query, false, page, txPerPage)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrNetwork, "search tx: %s", err.Error())
		}
		for _, tx := range search.Txs {
			results = append(results, resultTxToCommitResult(tx))
		}
		if len(search.Txs) < txPerPage || len(results) >= search.TotalCount {
			return results, nil
		}
	}
}

func resultTxToCommitResult(tx *ctypes.ResultTx) *CommitResult {
	res, err := custody.ParseDeliverOrError(tx.TxResult)
	return &CommitResult{
		ID:     tx.Hash,
		Height: tx.Height,
		Result: res,
		Err:    err,
	}
}
