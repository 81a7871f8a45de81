package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp holds the application state and serves the ABCI calls that do
// not process transactions: info, queries, genesis, block boundaries and
// commits. BaseApp embeds it and adds CheckTx and DeliverTx.
//
// ABCI steps that do not carry user input (Info, InitChain, BeginBlock,
// EndBlock, Commit) have no way to report an error. A failure there means
// the state is broken and it panics.
type StoreApp struct {
	// mu serializes all ABCI calls, see package documentation.
	mu sync.Mutex

	logger log.Logger
	debug  bool

	// name is returned by Info.
	name string

	store       *CommitStore
	initializer custody.Initializer
	queryRouter custody.QueryRouter

	// chainID is set once by InitChain and loaded from the store on
	// restart.
	chainID string

	// baseContext is valid for the lifetime of the app, blockContext is
	// replaced on every BeginBlock.
	baseContext  custody.Context
	blockContext custody.Context
}

// NewStoreApp loads the latest committed state of store. It panics if the
// state cannot be read.
func NewStoreApp(name string, store custody.CommitKVStore, queryRouter custody.QueryRouter, baseContext custody.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	if s.chainID = mustLoadChainID(s.DeliverStore()); s.chainID != "" {
		s.baseContext = custody.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = custody.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the initializer loading the genesis app state.
func (s *StoreApp) WithInit(init custody.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithDebug makes responses carry the full error information.
func (s *StoreApp) WithDebug(debug bool) *StoreApp {
	s.debug = debug
	return s
}

// WithLogger sets the logger of the app and of all contexts it creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = custody.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the context of the current block.
func (s *StoreApp) BlockContext() custody.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() custody.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() custody.CacheableKVStore {
	return s.store.CheckStore()
}

// loadGenesis stores the chain ID and passes the app state to the
// initializer. It runs once, when the chain starts for the first time.
func (s *StoreApp) loadGenesis(appState []byte, chainID string) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrImmutable, "app state already loaded for chain %q", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}
	var opts custody.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = custody.WithChainID(s.baseContext, chainID)

	if s.initializer == nil {
		return nil
	}
	return s.initializer.FromGenesis(opts, s.DeliverStore())
}

// Info returns the name and version of the app together with the last
// committed height and app hash.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          custody.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption is not supported.
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query reads the last committed state.

Path is "/<bucket>", for example "/vaults" or "/consumed", optionally
followed by "?prefix" for a prefix query. Data is the key, or key prefix.

Key and Value of the response are serialized ResultSet objects of the same
length, holding 0 to N models. Only the latest state is kept, a query for
any other height fails.
*/
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, mod := splitPath(req.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return custody.QueryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path %q", req.Path), s.debug)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return custody.QueryError(err, s.debug)
	}
	if req.Height != 0 && req.Height != info.Version {
		return custody.QueryError(errors.Wrapf(errors.ErrInput, "height %d not available, latest is %d", req.Height, info.Version), s.debug)
	}

	models, err := qh.Query(s.store.QueryStore(), mod, req.Data)
	if err != nil {
		return custody.QueryError(err, s.debug)
	}

	res := abci.ResponseQuery{Height: info.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return custody.QueryError(err, s.debug)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return custody.QueryError(err, s.debug)
	}
	return res
}

// splitPath separates the query modifier, everything after "?", from the
// path.
func splitPath(path string) (string, string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, custody.KeyQueryMod
}

// Commit persists the state of the block.
func (s *StoreApp) Commit() abci.ResponseCommit {
	s.mu.Lock()
	defer s.mu.Unlock()

	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash))
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain loads the application state from the genesis file.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadGenesis(req.AppStateBytes, req.ChainId); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock sets up the context of the new block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := custody.WithHeader(s.baseContext, req.Header)
	ctx = custody.WithHeight(ctx, req.Header.GetHeight())
	s.blockContext = custody.WithBlockTime(ctx, req.Header.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock has nothing to do, the validator set never changes.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
