/*
Package coin implements the amount type held by wallets and vaults.

A Coin is a whole part, a fractional part counted in 10^-9 units and a
ticker. Amounts are never negative: a balance that would go below zero is an
ErrInsufficientAmount, not a negative coin. The same value can be expressed
as an unsigned integer number of base units (whole*10^9 + fractional), which
is how amounts are encoded in the withdrawal digest.
*/
package coin

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/custody/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt is the largest whole value accepted.
	MaxInt int64 = 999999999999999 // 10^15-1

	// FracUnit is the number of base units in one whole coin.
	FracUnit int64 = 1000000000 // 10^9
	// MaxFrac is the highest fractional value.
	MaxFrac = FracUnit - 1

	fracDigits = 9
)

// Coin is a fixed point amount of a single currency. Both parts use
// integers, so no rounding ever happens.
type Coin struct {
	// Whole coins, 0 <= whole <= MaxInt
	Whole int64 `json:"whole,omitempty"`
	// Billionth of coins, 0 <= fractional <= MaxFrac
	Fractional int64 `json:"fractional,omitempty"`
	// Ticker is 3-4 upper-case letters. Only coins of the same ticker can
	// be combined.
	Ticker string `json:"ticker,omitempty"`
}

// NewCoin creates a new coin object
func NewCoin(whole int64, fractional int64, ticker string) Coin {
	return Coin{
		Whole:      whole,
		Fractional: fractional,
		Ticker:     ticker,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add returns the sum of both coins. A zero coin without a ticker is
// neutral. Coins of different tickers cannot be added and the sum must not
// exceed MaxInt whole coins.
func (c Coin) Add(o Coin) (Coin, error) {
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	if c.isNegative() || o.isNegative() {
		return Coin{}, errors.Wrap(errors.ErrAmount, "negative value")
	}

	sum := NewCoin(c.Whole+o.Whole, c.Fractional+o.Fractional, c.Ticker)
	if sum.Fractional > MaxFrac {
		sum.Whole++
		sum.Fractional -= FracUnit
	}
	if sum.Whole > MaxInt {
		return Coin{}, errors.ErrOverflow
	}
	return sum, nil
}

// Subtract returns c reduced by given amount. ErrInsufficientAmount is
// returned when the amount is larger than c.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	if amount.IsZero() {
		return c, nil
	}
	if !c.SameType(amount) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", amount.Ticker, c.Ticker)
	}
	if amount.isNegative() {
		return Coin{}, errors.Wrap(errors.ErrAmount, "negative value")
	}
	if !c.IsGTE(amount) {
		return Coin{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s is less than %s", c, amount)
	}

	diff := NewCoin(c.Whole-amount.Whole, c.Fractional-amount.Fractional, c.Ticker)
	if diff.Fractional < 0 {
		diff.Whole--
		diff.Fractional += FracUnit
	}
	return diff, nil
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker &&
		c.Whole == o.Whole &&
		c.Fractional == o.Fractional
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return !c.isNegative() && !c.IsZero()
}

func (c Coin) isNegative() bool {
	return c.Whole < 0 || c.Fractional < 0
}

// IsGTE returns true if c is same type and at least as large as o.
func (c Coin) IsGTE(o Coin) bool {
	if !c.SameType(o) {
		return false
	}
	if c.Whole != o.Whole {
		return c.Whole > o.Whole
	}
	return c.Fractional >= o.Fractional
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate ensures that the coin has a valid currency code and a value in
// range. Zero is a valid value.
func (c Coin) Validate() error {
	var err error
	if !IsCC(c.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker))
	}
	if c.isNegative() {
		err = errors.Append(err, errors.Wrap(errors.ErrAmount, "negative value"))
	}
	if c.Whole > MaxInt {
		err = errors.Append(err, errors.Wrap(errors.ErrOverflow, "whole"))
	}
	if c.Fractional > MaxFrac {
		err = errors.Append(err, errors.Wrap(errors.ErrOverflow, "fractional"))
	}
	return err
}

// BaseUnits returns the value as an integer number of the smallest units,
// whole*10^9 + fractional.
func (c Coin) BaseUnits() (*big.Int, error) {
	if c.isNegative() {
		return nil, errors.Wrapf(errors.ErrAmount, "negative value %d.%d", c.Whole, c.Fractional)
	}
	n := new(big.Int).Mul(big.NewInt(c.Whole), big.NewInt(FracUnit))
	return n.Add(n, big.NewInt(c.Fractional)), nil
}

// FromBaseUnits is the inverse of BaseUnits.
func FromBaseUnits(units *big.Int, ticker string) (Coin, error) {
	if units == nil || units.Sign() < 0 {
		return Coin{}, errors.Wrap(errors.ErrAmount, "base units must not be negative")
	}
	whole, frac := new(big.Int).QuoRem(units, big.NewInt(FracUnit), new(big.Int))
	if !whole.IsInt64() || whole.Int64() > MaxInt {
		return Coin{}, errors.Wrap(errors.ErrOverflow, "whole")
	}
	return NewCoin(whole.Int64(), frac.Int64(), ticker), nil
}

// UnmarshalJSON accepts the human readable string format as well as the
// object form.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Coin has its own UnmarshalJSON, so the object form is decoded into
	// an anonymous struct.
	var obj struct {
		Whole      int64
		Fractional int64
		Ticker     string
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*c = NewCoin(obj.Whole, obj.Fractional, obj.Ticker)
	return nil
}

// String returns the shortest decimal form followed by the ticker, for
// example "0.1 ETH". For a valid coin the result can be parsed back with
// ParseHumanFormat. An out of range fractional part is shown as is.
func (c Coin) String() string {
	s := strconv.FormatInt(c.Whole, 10)
	switch f := c.Fractional; {
	case f > 0 && f <= MaxFrac:
		digits := strconv.FormatInt(f, 10)
		digits = strings.Repeat("0", fracDigits-len(digits)) + digits
		s += "." + strings.TrimRight(digits, "0")
	case f != 0:
		s += fmt.Sprintf(" (fractional %d)", f)
	}
	if c.Ticker != "" {
		s += " " + c.Ticker
	}
	return s
}

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//   "<whole>[.<fractional>] <ticker>"
// At most 9 decimal places are accepted.
func ParseHumanFormat(h string) (Coin, error) {
	results := humanCoinFormatRx.FindStringSubmatch(strings.TrimSpace(h))
	if len(results) == 0 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	rawWhole, rawFrac, ticker := results[1], results[2], results[3]

	whole, err := strconv.ParseInt(rawWhole, 10, 64)
	if err != nil || whole > MaxInt {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "whole value %q", rawWhole)
	}

	var frac int64
	if rawFrac != "" {
		// Right pad to nine digits so that "0.1" is read as 100000000.
		digits := rawFrac + strings.Repeat("0", fracDigits-len(rawFrac))
		if frac, err = strconv.ParseInt(digits, 10, 64); err != nil {
			return Coin{}, errors.Wrapf(errors.ErrInput, "fractional value %q", rawFrac)
		}
	}
	return NewCoin(whole, frac, ticker), nil
}

var humanCoinFormatRx = regexp.MustCompile(`^(\d+)(?:\.(\d{1,9}))?\s*([A-Z]{3,4})$`)

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}
