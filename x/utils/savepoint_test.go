package utils

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	// always written before calling the decorator
	ok, ov := []byte("demo"), []byte("data")
	// written by the handler
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}
	failure := errors.Wrap(errors.ErrState, "something went wrong")

	cases := map[string]struct {
		save    custody.Decorator
		handler custody.Handler
		check   bool
		wantErr *errors.Error
		written [][]byte
		missing [][]byte
	}{
		"disabled savepoint keeps writes of a failed check": {
			save:    NewSavepoint(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv, Err: failure},
			check:   true,
			wantErr: errors.ErrState,
			written: [][]byte{ok, nk},
		},
		"failed check is rolled back": {
			save:    NewSavepoint().OnCheck(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv, Err: failure},
			check:   true,
			wantErr: errors.ErrState,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"failed deliver is rolled back": {
			save:    NewSavepoint().OnDeliver(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv, Err: failure},
			wantErr: errors.ErrState,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"both enabled": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv, Err: failure},
			wantErr: errors.ErrState,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"check savepoint does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv, Err: failure},
			wantErr: errors.ErrState,
			written: [][]byte{ok, nk},
		},
		"success is written": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &custodytest.WriteHandler{Key: nk, Value: nv},
			written: [][]byte{ok, nk},
		},
		"panic is rolled back by the savepoint below recovery": {
			save:    NewSavepoint().OnDeliver(),
			handler: &panicAfterWrite{key: nk, value: nv},
			wantErr: errors.ErrPanic,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			require.NoError(t, kv.Set(ok, ov))

			stack := custodytest.Decorate(custodytest.Decorate(tc.handler, NewRecovery()), tc.save)

			var err error
			if tc.check {
				_, err = stack.Check(context.Background(), kv, nil)
			} else {
				_, err = stack.Deliver(context.Background(), kv, nil)
			}
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}

			for _, k := range tc.written {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.True(t, has, "missing key %X", k)
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.False(t, has, "unexpected key %X", k)
			}
		})
	}
}

// panicAfterWrite writes to the store and then panics.
type panicAfterWrite struct {
	key, value []byte
}

func (p *panicAfterWrite) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	_ = db.Set(p.key, p.value)
	panic("check")
}

func (p *panicAfterWrite) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	_ = db.Set(p.key, p.value)
	panic("deliver")
}

func TestSavepointOverPlainStore(t *testing.T) {
	kv := store.MemStore()
	plain := struct{ custody.KVStore }{kv}

	h := &custodytest.WriteHandler{Key: []byte("key"), Value: []byte("value"), Err: errors.ErrState}
	_, err := NewSavepoint().OnDeliver().Deliver(context.Background(), plain, nil, h)
	assert.True(t, errors.ErrState.Is(err))

	has, err := kv.Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, has)
}
