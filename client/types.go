package client

import (
	"fmt"

	"github.com/iov-one/custody"
	cmn "github.com/tendermint/tendermint/libs/common"
	tmtypes "github.com/tendermint/tendermint/types"
)

// TransactionID is the hash used to identify the transaction
type TransactionID = cmn.HexBytes

// TxQuery is some query to find transactions
type TxQuery = string

// CommitResult is returned from the block (DeliverTx)
// Result is only set on success codes, Err is set if it was a failure code
type CommitResult struct {
	ID     TransactionID
	Height int64
	Result *custody.DeliverResult
	Err    error
}

// Status is the current status of the node we connect to.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}

// QueryTxByID makes a search query based on the transaction id
func QueryTxByID(id TransactionID) TxQuery {
	return fmt.Sprintf("%s='%X'", tmtypes.TxHashKey, []byte(id))
}

// QueryTxByTag makes a search query matching all transactions that emitted
// an event attribute with given value, for example
// QueryTxByTag("vault.withdraw", "vault", "1").
func QueryTxByTag(eventType, key, value string) TxQuery {
	return fmt.Sprintf("%s.%s='%s'", eventType, key, value)
}
