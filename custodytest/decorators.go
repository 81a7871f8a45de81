package custodytest

import "github.com/iov-one/custody"

// calls counts Check and Deliver invocations of a mock.
type calls struct {
	check   int
	deliver int
}

// CheckCallCount returns how many times Check was called.
func (c *calls) CheckCallCount() int { return c.check }

// DeliverCallCount returns how many times Deliver was called.
func (c *calls) DeliverCallCount() int { return c.deliver }

// CallCount returns how many times Check or Deliver was called.
func (c *calls) CallCount() int { return c.check + c.deliver }

// Decorator is a mock implementation of the custody.Decorator interface.
//
// When CheckErr or DeliverErr is set, it is returned without calling the
// next handler. Every call is counted, failed ones included.
type Decorator struct {
	calls
	CheckErr   error
	DeliverErr error
}

var _ custody.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	d.check++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	d.deliver++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// Decorate returns a handler that calls d with h as next.
func Decorate(h custody.Handler, d custody.Decorator) custody.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next custody.Handler
	dec  custody.Decorator
}

func (d decorated) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
