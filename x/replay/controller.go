package replay

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Guard tracks authorization IDs. A scope separates ID spaces, so that two
// vaults can each use the same ID once.
type Guard interface {
	// IsConsumed returns true if authID was already used within scope.
	IsConsumed(db custody.ReadOnlyKVStore, scope, authID []byte) (bool, error)
	// Consume marks authID used within scope. It fails with
	// ErrAuthIDConsumed if the ID was used before.
	Consume(db custody.KVStore, scope, authID []byte, c Consumption) error
}

// BaseGuard stores consumed IDs in a bucket.
type BaseGuard struct {
	bucket orm.ModelBucket
}

var _ Guard = BaseGuard{}

// NewGuard returns a guard working on the default bucket.
func NewGuard() BaseGuard {
	return BaseGuard{bucket: NewBucket()}
}

func (g BaseGuard) IsConsumed(db custody.ReadOnlyKVStore, scope, authID []byte) (bool, error) {
	if err := ValidateAuthID(authID); err != nil {
		return false, err
	}
	switch err := g.bucket.Has(db, ConsumptionKey(scope, authID)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (g BaseGuard) Consume(db custody.KVStore, scope, authID []byte, c Consumption) error {
	consumed, err := g.IsConsumed(db, scope, authID)
	if err != nil {
		return err
	}
	if consumed {
		return errors.Wrapf(ErrAuthIDConsumed, "%X", authID)
	}
	if _, err := g.bucket.Put(db, ConsumptionKey(scope, authID), &c); err != nil {
		return errors.Wrap(err, "cannot store consumption")
	}
	return nil
}

// Consumption returns the record of a consumed ID. It fails with
// ErrNotFound if the ID was never used.
func (g BaseGuard) Consumption(db custody.ReadOnlyKVStore, scope, authID []byte) (*Consumption, error) {
	var c Consumption
	if err := g.bucket.One(db, ConsumptionKey(scope, authID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// RegisterQuery exposes consumed IDs under "/consumed". A record is found by
// the scope followed by the authorization ID.
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register(BucketName, qr)
}
