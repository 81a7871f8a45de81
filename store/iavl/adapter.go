/*
Package iavl persists the chain state in a versioned merkle tree.

Each committed block is a new tree version, and the root hash of the tree is
the app hash reported to tendermint.
*/
package iavl

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ custody.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing in a goleveldb
// database called name inside of the path directory.
func NewCommitStore(path, name string) CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, path)
	return NewCommitStoreWithDB(db)
}

// NewMemCommitStore creates a store that keeps all versions in memory.
func NewMemCommitStore() CommitStore {
	return NewCommitStoreWithDB(dbm.NewMemDB())
}

// NewCommitStoreWithDB creates a store on top of any tendermint database.
func NewCommitStoreWithDB(db dbm.DB) CommitStore {
	return CommitStore{tree: iavl.NewMutableTree(db, DefaultCacheSize)}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (custody.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return custody.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return custody.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (custody.CommitID, error) {
	return custody.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions
// Writing the cache wrap modifies the working tree, which is persisted by
// the next Commit.
func (s CommitStore) CacheWrap() custody.KVCacheWrap {
	adapter := treeAdapter{tree: s.tree}
	return store.NewBTreeCacheWrap(adapter, adapter.NewBatch(), nil)
}

// treeAdapter exposes the working tree as a KVStore.
type treeAdapter struct {
	tree *iavl.MutableTree
}

var _ custody.KVStore = treeAdapter{}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (a treeAdapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (a treeAdapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a treeAdapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a treeAdapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that writes to the working tree.
func (a treeAdapter) NewBatch() custody.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a treeAdapter) Iterator(start, end []byte) (custody.Iterator, error) {
	return a.collect(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a treeAdapter) ReverseIterator(start, end []byte) (custody.Iterator, error) {
	return a.collect(start, end, false), nil
}

// collect loads the whole range into memory. Ranges queried by the
// extensions are small (prefix scans of a single registry or vault).
func (a treeAdapter) collect(start, end []byte, ascending bool) custody.Iterator {
	var res []custody.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, custody.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
