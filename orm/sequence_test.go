package orm

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	s := NewSequence("vault", "id")
	other := NewSequence("authz", "id")

	latest, err := s.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), latest)

	for want := int64(1); want < 4; want++ {
		got, err := s.NextInt(db)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}

	val, err := other.NextVal(db)
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(1), val)

	latest, err = s.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(3), latest)
}

func TestSequenceCorrupted(t *testing.T) {
	db := store.MemStore()
	assert.Nil(t, db.Set([]byte("_s.vault:id"), []byte{1, 2}))

	s := NewSequence("vault", "id")
	_, err := s.NextInt(db)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestValidateSequence(t *testing.T) {
	assert.Nil(t, ValidateSequence(EncodeSequence(12)))
	assert.IsErr(t, errors.ErrEmpty, ValidateSequence(nil))
	assert.IsErr(t, errors.ErrInput, ValidateSequence([]byte{1}))
}
