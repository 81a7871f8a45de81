package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// ResultSet is the serialized form of query results. Keys and values of a
// query are returned as two result sets of equal length.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []custody.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []custody.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

func (r *ResultSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

// Unmarshal loads a result set. An empty input is an empty set.
func (r *ResultSet) Unmarshal(raw []byte) error {
	if len(raw) == 0 {
		r.Results = nil
		return nil
	}
	return cdc.UnmarshalBinaryBare(raw, r)
}

// JoinResults combines the keys and values of a query response into models.
func JoinResults(keys, values *ResultSet) ([]custody.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrState, "%d keys and %d values", len(keys.Results), len(values.Results))
	}
	models := make([]custody.Model, len(keys.Results))
	for i := range keys.Results {
		models[i] = custody.Pair(keys.Results[i], values.Results[i])
	}
	return models, nil
}
