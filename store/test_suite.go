package store

import (
	"bytes"
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

// TestSuite provides many methods that can be called in package-specific test
// code. We just customize the store being tested (pass in constructor), the
// rest of the logic is generic to the KVStore interface.
//
// It is shared between btree_test.go and iavl/adapter_test.go.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a cleanup function.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite creates a suite for stores built by the constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// make sure the store is empty at start but returns results
	// that are written to it
	k, v := []byte("vault"), []byte("one")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("registry"), []byte("two")
	s.AssertGetHas(t, cache, k2, nil, false)
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("consumed"), []byte("three")
	c2 := base.CacheWrap()
	s.AssertGetHas(t, c2, k, v, true)
	assert.Nil(t, c2.Set(k3, v3))
	assert.Nil(t, c2.Delete(k))
	s.AssertGetHas(t, c2, k, nil, false)
	c2.Discard()
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	assert.Nil(t, c3.Delete(k))
	assert.Nil(t, c3.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
}

// NestedSavepoints ensures that a discarded inner cache leaves the outer cache
// untouched, while a written inner cache is only visible in the base once the
// outer one is written as well.
func (s *TestSuite) NestedSavepoints(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	assert.Nil(t, base.Set([]byte("balance"), []byte("10")))

	outer := base.CacheWrap()
	assert.Nil(t, outer.Set([]byte("balance"), []byte("9")))

	failed := outer.CacheWrap()
	assert.Nil(t, failed.Set([]byte("consumed"), []byte{1}))
	assert.Nil(t, failed.Set([]byte("balance"), []byte("8")))
	failed.Discard()
	s.AssertGetHas(t, outer, []byte("consumed"), nil, false)
	s.AssertGetHas(t, outer, []byte("balance"), []byte("9"), true)

	ok := outer.CacheWrap()
	assert.Nil(t, ok.Set([]byte("consumed"), []byte{1}))
	assert.Nil(t, ok.Write())
	s.AssertGetHas(t, outer, []byte("consumed"), []byte{1}, true)
	s.AssertGetHas(t, base, []byte("consumed"), nil, false)

	assert.Nil(t, outer.Write())
	s.AssertGetHas(t, base, []byte("consumed"), []byte{1}, true)
	s.AssertGetHas(t, base, []byte("balance"), []byte("9"), true)
}

// IteratorWithConflicts checks that iterating over a cache combines the
// cached writes and deletes with the parent content, in both directions.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	for _, k := range []string{"a", "c", "e", "g"} {
		assert.Nil(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("cache-b")))
	assert.Nil(t, cache.Set([]byte("c"), []byte("cache-c")))
	assert.Nil(t, cache.Delete([]byte("e")))
	assert.Nil(t, cache.Delete([]byte("x")))
	assert.Nil(t, cache.Set([]byte("h"), []byte("cache-h")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"all ascending": {
			want: []Model{
				{Key: []byte("a"), Value: []byte("base-a")},
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("c"), Value: []byte("cache-c")},
				{Key: []byte("g"), Value: []byte("base-g")},
				{Key: []byte("h"), Value: []byte("cache-h")},
			},
		},
		"all descending": {
			reverse: true,
			want: []Model{
				{Key: []byte("h"), Value: []byte("cache-h")},
				{Key: []byte("g"), Value: []byte("base-g")},
				{Key: []byte("c"), Value: []byte("cache-c")},
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("a"), Value: []byte("base-a")},
			},
		},
		"bounded ascending": {
			start: []byte("b"),
			end:   []byte("g"),
			want: []Model{
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("c"), Value: []byte("cache-c")},
			},
		},
		"bounded descending": {
			start:   []byte("b"),
			end:     []byte("h"),
			reverse: true,
			want: []Model{
				{Key: []byte("g"), Value: []byte("base-g")},
				{Key: []byte("c"), Value: []byte("cache-c")},
				{Key: []byte("b"), Value: []byte("cache-b")},
			},
		},
		"open end": {
			start: []byte("d"),
			want: []Model{
				{Key: []byte("g"), Value: []byte("base-g")},
				{Key: []byte("h"), Value: []byte("cache-h")},
			},
		},
		"open start": {
			end: []byte("c"),
			want: []Model{
				{Key: []byte("a"), Value: []byte("base-a")},
				{Key: []byte("b"), Value: []byte("cache-b")},
			},
		},
		"empty range": {
			start: []byte("d"),
			end:   []byte("e"),
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			defer it.Release()

			got := ReadAll(t, it)
			if len(got) != len(tc.want) {
				t.Fatalf("want %d models, got %d: %s", len(tc.want), len(got), got)
			}
			for i := range got {
				if !bytes.Equal(got[i].Key, tc.want[i].Key) || !bytes.Equal(got[i].Value, tc.want[i].Value) {
					t.Fatalf("model %d: want %s=%s, got %s=%s", i,
						tc.want[i].Key, tc.want[i].Value, got[i].Key, got[i].Value)
				}
			}
		})
	}
}

// AssertGetHas makes sure that this key returns
// the given value or nil, and has is appropriate
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(val, got) {
		t.Fatalf("%s: want %q, got %q", key, val, got)
	}
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

// ReadAll consumes the iterator and returns all models.
func ReadAll(t testing.TB, it Iterator) []Model {
	t.Helper()
	var res []Model
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		assert.Nil(t, err)
		res = append(res, Model{Key: k, Value: v})
	}
}
