package orm

import (
	"bytes"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ModelIterator loads models one by one, in ascending key order.
// CONTRACT: No writes may happen within a domain while an iterator exists over it.
type ModelIterator interface {
	// LoadNext moves the iterator to the next key in the database and loads
	// the value into dest. It returns the model key, without the bucket
	// prefix. ErrIteratorDone is returned once all models were read.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the Iterator.
	Release()
}

type modelIterator struct {
	// this is the raw KVStoreIterator
	iterator custody.Iterator
	// this is the bucketPrefix to strip from each key
	bucketPrefix []byte
}

var _ ModelIterator = (*modelIterator)(nil)

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := i.iterator.Next()
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(key, i.bucketPrefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key %X outside of bucket", key)
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return key[len(i.bucketPrefix):], nil
}

func (i *modelIterator) Release() {
	i.iterator.Release()
}
