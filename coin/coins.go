package coin

import (
	"strings"

	"github.com/iov-one/custody/errors"
)

// Coins is a set of coins of distinct tickers, kept sorted by ticker. A
// wallet holds its balance as Coins.
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins.
// It will sort them and combine duplicates to produce
// a normalized form regardless of input.
func CombineCoins(cs ...Coin) (Coins, error) {
	var err error
	coins := make(Coins, 0, len(cs))
	for _, c := range cs {
		coins, err = coins.Add(c)
		if err != nil {
			return nil, err
		}
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}

// Clone returns a deep copy of the set.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add modifies the set, to increase the holdings by c. The receiver must not
// be used after the call, use the returned value instead. Zero amounts are
// ignored.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}

	has, i := cs.findCoin(c.ID())
	if has == nil {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		res := append(cs, nil)
		copy(res[i+1:], res[i:])
		res[i] = &c
		return res, nil
	}
	sum, err := has.Add(c)
	if err != nil {
		return nil, err
	}
	cs[i] = &sum
	return cs, nil
}

// Subtract modifies the set, to decrease the holdings by c. An entry that
// reaches zero is removed. ErrInsufficientAmount is returned when the set
// holds less than c.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}

	has, i := cs.findCoin(c.ID())
	if has == nil {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "no %s held", c.Ticker)
	}
	diff, err := has.Subtract(c)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return append(cs[:i], cs[i+1:]...), nil
	}
	cs[i] = &diff
	return cs, nil
}

// Combine will create a new Coins adding all coins from both sets.
func (cs Coins) Combine(o Coins) (Coins, error) {
	var err error
	res := cs.Clone()
	for _, c := range o {
		res, err = res.Add(*c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if there is at least that
// much coin in the set.
func (cs Coins) Contains(c Coin) bool {
	has, _ := cs.findCoin(c.ID())
	if has == nil {
		return c.IsZero()
	}
	return has.IsGTE(c)
}

// Balance returns the holdings of given ticker. A ticker that is not present
// has a zero balance.
func (cs Coins) Balance(ticker string) Coin {
	has, _ := cs.findCoin(ticker)
	if has == nil {
		return Coin{Ticker: ticker}
	}
	return *has
}

// findCoin returns the coin with given ticker and its position. If no such
// coin exists, the index where it should be inserted is returned.
func (cs Coins) findCoin(ticker string) (*Coin, int) {
	for i, c := range cs {
		switch strings.Compare(ticker, c.ID()) {
		case -1:
			return nil, i
		case 0:
			return c, i
		}
	}
	return nil, len(cs)
}

// IsEmpty returns if nothing is in the set
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Equals returns true if all coins are equal.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are in alphabetical
// order, each coin is valid in its own right, and
// no coin has a zero value.
func (cs Coins) Validate() error {
	var err error
	last := ""
	for _, c := range cs {
		if c == nil {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "nil coin"))
			continue
		}
		err = errors.Append(err, errors.Wrap(c.Validate(), "coin"))
		if c.IsZero() {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "zero coins"))
		}
		if c.Ticker <= last {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "not sorted"))
		}
		last = c.Ticker
	}
	return err
}
