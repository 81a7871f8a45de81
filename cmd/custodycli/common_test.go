package main

import (
	"bytes"
	"testing"

	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
)

func TestSequenceID(t *testing.T) {
	for _, n := range []uint64{0, 1, 42, 1 << 40} {
		got, err := fromSequence(sequenceID(n))
		assert.Nil(t, err)
		assert.Equal(t, n, got)
	}

	_, err := fromSequence([]byte{1, 2})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestTxStream(t *testing.T) {
	src := custodytest.NewAddress()
	dst := custodytest.NewAddress()

	var stream bytes.Buffer
	for i := int64(1); i <= 3; i++ {
		tx := custodyd.NewTx(&cash.SendMsg{Source: src, Destination: dst, Amount: coin.NewCoinp(i, 0, "ETH")})
		if _, err := writeTx(&stream, tx); err != nil {
			t.Fatalf("cannot write transaction: %s", err)
		}
	}

	for i := int64(1); i <= 3; i++ {
		tx, _, err := readTx(&stream)
		if err != nil {
			t.Fatalf("cannot read transaction %d: %s", i, err)
		}
		msg, err := tx.GetMsg()
		assert.Nil(t, err)
		assert.Equal(t, coin.NewCoinp(i, 0, "ETH"), msg.(*cash.SendMsg).Amount)
	}

	_, _, err := readTx(&stream)
	assert.IsErr(t, errors.ErrEmpty, err)
}
