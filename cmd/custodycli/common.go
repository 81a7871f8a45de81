package main

import (
	"encoding/binary"
	"io"

	"github.com/iov-one/custody/client"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// newClient returns a client connected to the node at given address.
// Tests replace it with an in process connection.
var newClient = func(nodeAddr string) *client.Client {
	return client.NewClient(client.NewHTTPConnection(nodeAddr))
}

// sequenceID returns a sequence value encoded as implemented in the orm
// package.
func sequenceID(n uint64) []byte {
	return orm.EncodeSequence(int64(n))
}

// fromSequence transforms given binary representation of a sequence value into
// a decimal form. fromSequence is the opposite of the sequenceID function.
func fromSequence(b []byte) (uint64, error) {
	if err := orm.ValidateSequence(b); err != nil {
		return 0, err
	}
	n, err := orm.DecodeSequence(b)
	return uint64(n), err
}

// writeTx serializes the transaction. First bytes written contain the
// information how much space the transaction takes, so that transactions
// can be streamed.
func writeTx(w io.Writer, tx *custodyd.Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*custodyd.Tx, int, error) {
	// When serialized using writeTx function, first bytes contain
	// information about the actual size of the transaction message.
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		if err == io.EOF {
			return nil, n, errors.Wrap(errors.ErrEmpty, "no input data")
		}
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	if msgSize > maxTxSize {
		return nil, txHeaderSize, errors.Wrapf(errors.ErrInput, "transaction of %d bytes is too big", msgSize)
	}
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx custodyd.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const (
	txHeaderSize = 4
	maxTxSize    = 1 << 20
)
