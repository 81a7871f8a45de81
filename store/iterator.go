package store

import (
	"bytes"

	"github.com/iov-one/custody/errors"
)

// cacheIterator merges the items of a cache wrap with the iterator of its
// parent store. On equal keys the cached item wins, and deleted items hide
// the parent value.
type cacheIterator struct {
	items   []entry
	idx     int
	reverse bool

	parent     Iterator
	parentDone bool

	// one element lookahead of the parent iterator
	peeked    bool
	peekKey   []byte
	peekValue []byte
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(items []entry, parent Iterator, reverse bool) *cacheIterator {
	return &cacheIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// Next returns the next visible element or ErrIteratorDone.
func (c *cacheIterator) Next() (key, value []byte, err error) {
	for {
		if err := c.peek(); err != nil {
			return nil, nil, err
		}

		hasOwn := c.idx < len(c.items)
		switch {
		case !hasOwn && !c.peeked:
			return nil, nil, errors.ErrIteratorDone
		case !hasOwn:
			return c.popParent()
		case !c.peeked:
			if k, v, ok := c.popOwn(); ok {
				return k, v, nil
			}
			continue
		}

		cmp := bytes.Compare(c.items[c.idx].key, c.peekKey)
		if c.reverse {
			cmp = -cmp
		}
		switch {
		case cmp > 0:
			return c.popParent()
		case cmp == 0:
			// Cached version overwrites the parent one.
			c.peeked = false
		}
		if k, v, ok := c.popOwn(); ok {
			return k, v, nil
		}
	}
}

// peek loads the next parent element, if not yet loaded.
func (c *cacheIterator) peek() error {
	if c.peeked || c.parentDone {
		return nil
	}
	k, v, err := c.parent.Next()
	if errors.ErrIteratorDone.Is(err) {
		c.parentDone = true
		return nil
	}
	if err != nil {
		return err
	}
	c.peeked, c.peekKey, c.peekValue = true, k, v
	return nil
}

func (c *cacheIterator) popParent() ([]byte, []byte, error) {
	c.peeked = false
	return c.peekKey, c.peekValue, nil
}

// popOwn advances over the next cached item. It returns false if the item is
// a deletion.
func (c *cacheIterator) popOwn() ([]byte, []byte, bool) {
	e := c.items[c.idx]
	c.idx++
	if e.deleted {
		return nil, nil, false
	}
	return e.key, e.value, true
}

// Release releases the Iterator.
func (c *cacheIterator) Release() {
	c.parent.Release()
	c.items = nil
}
