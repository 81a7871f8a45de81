package replay

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	amino "github.com/tendermint/go-amino"
)

// AuthIDLength is the length of an authorization ID.
const AuthIDLength = 32

// BucketName is where consumed authorization IDs are stored.
const BucketName = "consumed"

var cdc = amino.NewCodec()

// Consumption records who approved the use of an authorization ID and
// when.
type Consumption struct {
	Signer custody.Address `json:"signer"`
	Height int64           `json:"height"`
}

var _ orm.Model = (*Consumption)(nil)

func (c *Consumption) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Consumption) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func (c *Consumption) Validate() error {
	if err := c.Signer.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	if c.Height < 0 {
		return errors.Wrap(errors.ErrInput, "negative height")
	}
	return nil
}

// ValidateAuthID returns an error if given value cannot be an authorization
// ID.
func ValidateAuthID(authID []byte) error {
	if len(authID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "authorization id")
	}
	if len(authID) != AuthIDLength {
		return errors.Wrapf(errors.ErrInput, "authorization id must be %d bytes", AuthIDLength)
	}
	return nil
}

// ConsumptionKey returns the key under which the use of authID within given
// scope is stored. Scopes have a fixed length, so that all IDs of a scope
// share a prefix.
func ConsumptionKey(scope, authID []byte) []byte {
	key := make([]byte, 0, len(scope)+len(authID))
	key = append(key, scope...)
	return append(key, authID...)
}

// NewBucket returns the bucket of consumed authorization IDs.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Consumption{})
}
