package orm

import (
	"reflect"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models rather than
// raw bytes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db custody.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db custody.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. Before inserting into
	// database, model is validated.
	// Key can be nil, in which case a new key is allocated from the bucket
	// sequence. The key used is returned.
	Put(db custody.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db custody.KVStore, key []byte) error

	// PrefixScan returns an iterator over all models stored under a key
	// starting with given prefix.
	PrefixScan(db custody.ReadOnlyKVStore, prefix []byte) (ModelIterator, error)

	// Register registers this buckets content to be accessible via query
	// requests under the given name.
	Register(name string, r custody.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIDSequence configure the bucket to use the given sequence instance for
// generating ID.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = s
	}
}

// NewModelBucket returns a ModelBucket instance that stores models of the
// same type as m.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name)
	mb := &modelBucket{
		b:     b,
		idSeq: b.Sequence("id"),
		model: reflect.TypeOf(m),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	b     Bucket
	idSeq Sequence

	// model is referencing the structure type. Event if the pointer is
	// being provided on declaration, this is never a pointer type.
	model reflect.Type
}

func (mb *modelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	raw, err := mb.b.Get(db, key)
	if err != nil {
		return errors.Wrap(err, "cannot get from the store")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

func (mb *modelBucket) Has(db custody.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		// nil key is a special case that would panic in the store
		// implementation.
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db custody.KVStore, key []byte, m Model) ([]byte, error) {
	if err := mb.checkType(m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		next, err := mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
		key = next
	}
	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	if err := mb.b.Set(db, key, raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db custody.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) PrefixScan(db custody.ReadOnlyKVStore, prefix []byte) (ModelIterator, error) {
	start, end := PrefixRange(mb.b.DBKey(prefix))
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	return &modelIterator{
		iterator:     itr,
		bucketPrefix: mb.b.DBKey(nil),
	}, nil
}

func (mb *modelBucket) Register(name string, r custody.QueryRouter) {
	mb.b.Register(name, r)
}

func (mb *modelBucket) checkType(m Model) error {
	t := reflect.TypeOf(m)
	if t == nil {
		return errors.Wrap(errors.ErrType, "nil model")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	want := mb.model
	if want.Kind() == reflect.Ptr {
		want = want.Elem()
	}
	if t != want {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s bucket", m, mb.b.Name())
	}
	return nil
}

var _ ModelBucket = (*modelBucket)(nil)
