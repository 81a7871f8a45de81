package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(SigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	ctx := custody.WithChainID(context.Background(), chainID)

	priv := custodytest.NewKey()
	addrs := []custody.Address{priv.Address()}

	tx := NewStdTx([]byte("art"))
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec custody.Decorator, my custody.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}
	check := func(dec custody.Decorator, my custody.Tx) error {
		_, err := dec.Check(ctx, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(custody.Decorator, custody.Tx) error{check, deliver} {
		// test with no sigs
		tx.Signatures = nil
		err := fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test with one
		tx.Signatures = []*StdSignature{sig}
		err = fn(d, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, addrs, signers.Signers)

		// test with replay
		err = fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test allowing none
		ad := d.AllowMissingSigs()
		tx.Signatures = nil
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, []custody.Address{}, signers.Signers)

		// test allowing, with next sequence
		tx.Signatures = []*StdSignature{sig1}
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, addrs, signers.Signers)
	}
}

func TestDecoratorUnsignedTx(t *testing.T) {
	ctx := custody.WithChainID(context.Background(), "deco-rate")
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "test/msg"}}
	var h custodytest.Handler

	_, err := NewDecorator().Deliver(ctx, store.MemStore(), tx, &h)
	assert.Error(t, err)
	assert.Equal(t, 0, h.CallCount())

	_, err = NewDecorator().AllowMissingSigs().Deliver(ctx, store.MemStore(), tx, &h)
	assert.NoError(t, err)
	assert.Equal(t, 1, h.CallCount())
}
