package app

import (
	"reflect"

	"github.com/iov-one/custody"
)

// Decorators is an ordered stack of decorators that still misses the
// handler at its bottom.
type Decorators struct {
	chain []custody.Decorator
}

/*
ChainDecorators builds a stack from the given decorators. The first one is
executed first. Nil decorators are skipped, so optional ones can be passed
unconditionally.

  app.ChainDecorators(
    utils.NewLogging(),
    utils.NewRecovery(),
    sigs.NewDecorator(),
    utils.NewSavepoint().OnDeliver(),
  ).WithHandler(router)
*/
func ChainDecorators(chain ...custody.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new stack with the given decorators appended.
func (d Decorators) Chain(chain ...custody.Decorator) Decorators {
	res := make([]custody.Decorator, 0, len(d.chain)+len(chain))
	res = append(res, d.chain...)
	for _, dec := range chain {
		if !isNilDecorator(dec) {
			res = append(res, dec)
		}
	}
	return Decorators{chain: res}
}

func isNilDecorator(d custody.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack with h. A transaction passes all decorators,
// in order, before it reaches h.
func (d Decorators) WithHandler(h custody.Handler) custody.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = decorated{dec: d.chain[i], next: h}
	}
	return h
}

// decorated is a handler that runs dec around next.
type decorated struct {
	dec  custody.Decorator
	next custody.Handler
}

var _ custody.Handler = decorated{}

func (d decorated) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return d.dec.Check(ctx, store, tx, d.next)
}

func (d decorated) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return d.dec.Deliver(ctx, store, tx, d.next)
}
