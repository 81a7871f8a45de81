/*
Package store provides the in-memory layers of the state: btree cache wraps
that act as savepoints, batches and iterators merging a cache with its
parent.

Every transaction is executed inside a cache wrap. Writing the wrap
publishes all its changes to the parent store, discarding it drops them. The
vault withdrawal relies on this to consume an authorization and move funds as
one unit.
*/
package store

import (
	"github.com/iov-one/custody"
)

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = custody.ReadOnlyKVStore
	SetDeleter       = custody.SetDeleter
	KVStore          = custody.KVStore
	Batch            = custody.Batch
	Iterator         = custody.Iterator
	CacheableKVStore = custody.CacheableKVStore
	KVCacheWrap      = custody.KVCacheWrap
	CommitKVStore    = custody.CommitKVStore
	CommitID         = custody.CommitID
	Model            = custody.Model
	Op               = custody.Op
)
