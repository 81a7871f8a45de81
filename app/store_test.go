package app

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// kvQuery returns the value stored under the requested key.
type kvQuery struct{}

func (kvQuery) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	val, err := db.Get(data)
	if err != nil || val == nil {
		return nil, err
	}
	return []custody.Model{custody.Pair(data, val)}, nil
}

// kvInit writes the "kv" genesis value under the "genesis" key.
type kvInit struct{}

func (kvInit) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var val string
	if err := opts.ReadOptions("kv", &val); err != nil {
		return err
	}
	return kv.Set([]byte("genesis"), []byte(val))
}

func newTestStoreApp(db dbm.DB) *StoreApp {
	qr := custody.NewQueryRouter()
	qr.Register("/kv", kvQuery{})
	return NewStoreApp("test", iavl.NewCommitStoreWithDB(db), qr, context.Background()).
		WithInit(kvInit{})
}

func queryKV(t testing.TB, s *StoreApp, key string) []custody.Model {
	t.Helper()
	res := s.Query(abci.RequestQuery{Path: "/kv", Data: []byte(key)})
	assert.Equal(t, uint32(0), res.Code)

	var keys, values ResultSet
	assert.Nil(t, keys.Unmarshal(res.Key))
	assert.Nil(t, values.Unmarshal(res.Value))
	models, err := JoinResults(&keys, &values)
	assert.Nil(t, err)
	return models
}

func TestStoreAppLifecycle(t *testing.T) {
	db := dbm.NewMemDB()
	s := newTestStoreApp(db)

	info := s.Info(abci.RequestInfo{})
	assert.Equal(t, "test", info.Data)
	assert.Equal(t, int64(0), info.LastBlockHeight)

	s.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"kv": "hello"}`),
	})
	assert.Equal(t, "test-chain", s.GetChainID())

	// genesis is not visible until committed
	assert.Equal(t, 0, len(queryKV(t, s, "genesis")))

	s.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	height, ok := custody.GetHeight(s.BlockContext())
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(1), height)
	s.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := s.Commit()
	assert.Equal(t, true, len(commit.Data) > 0)

	info = s.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)

	models := queryKV(t, s, "genesis")
	assert.Equal(t, 1, len(models))
	assert.Equal(t, []byte("hello"), models[0].Value)

	assert.Equal(t, custody.Version(), info.Version)

	res := s.Query(abci.RequestQuery{Path: "/unknown"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	// only the latest height is served
	res = s.Query(abci.RequestQuery{Path: "/kv", Data: []byte("genesis"), Height: 1})
	assert.Equal(t, uint32(0), res.Code)
	res = s.Query(abci.RequestQuery{Path: "/kv", Data: []byte("genesis"), Height: 5})
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	// genesis can be loaded only once
	assert.Panics(t, func() {
		s.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	})

	// state and chain id survive a restart
	restarted := newTestStoreApp(db)
	assert.Equal(t, "test-chain", restarted.GetChainID())
	assert.Equal(t, int64(1), restarted.Info(abci.RequestInfo{}).LastBlockHeight)
	assert.Equal(t, 1, len(queryKV(t, restarted, "genesis")))
}

func TestStoreAppInvalidGenesis(t *testing.T) {
	cases := map[string]abci.RequestInitChain{
		"missing app state": {ChainId: "test-chain"},
		"invalid json":      {ChainId: "test-chain", AppStateBytes: []byte(`{"kv`)},
		"invalid chain id":  {ChainId: "x", AppStateBytes: []byte(`{}`)},
		"invalid option":    {ChainId: "test-chain", AppStateBytes: []byte(`{"kv": 4}`)},
	}
	for testName, req := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newTestStoreApp(dbm.NewMemDB())
			assert.Panics(t, func() { s.InitChain(req) })
		})
	}
}

func TestSplitPath(t *testing.T) {
	path, mod := splitPath("/vaults?prefix")
	assert.Equal(t, "/vaults", path)
	assert.Equal(t, custody.PrefixQueryMod, mod)

	path, mod = splitPath("/vaults")
	assert.Equal(t, "/vaults", path)
	assert.Equal(t, custody.KeyQueryMod, mod)
}

func TestBaseApp(t *testing.T) {
	r := NewRouter()
	r.Handle("test/write", &custodytest.WriteHandler{Key: []byte("written"), Value: []byte("yes")})
	r.Handle("test/fail", &custodytest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	})

	decoder := func(raw []byte) (custody.Tx, error) {
		if string(raw) == "panic" {
			panic("cannot decode")
		}
		return &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: string(raw)}}, nil
	}

	s := newTestStoreApp(dbm.NewMemDB())
	s.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	app := NewBaseApp(s, decoder, r, false)

	s.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})

	assert.Equal(t, uint32(0), app.CheckTx([]byte("test/write")).Code)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), app.CheckTx([]byte("test/fail")).Code)
	assert.Equal(t, errors.ErrNotFound.ABCICode(), app.CheckTx([]byte("test/missing")).Code)
	assert.Equal(t, errors.ErrPanic.ABCICode(), app.CheckTx([]byte("panic")).Code)

	assert.Equal(t, uint32(0), app.DeliverTx([]byte("test/write")).Code)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), app.DeliverTx([]byte("test/fail")).Code)
	assert.Equal(t, errors.ErrPanic.ABCICode(), app.DeliverTx([]byte("panic")).Code)

	assert.Equal(t, 0, len(queryKV(t, s, "written")))
	s.Commit()
	assert.Equal(t, 1, len(queryKV(t, s, "written")))
}
