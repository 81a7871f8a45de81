package utils

import (
	"github.com/iov-one/custody"
)

// ActionTagger emits a "message" event with the path of every successfully
// delivered message as its action, so that clients have a single way to
// search for or subscribe to transactions of a kind, for example all
// withdrawals with message.action='vault/withdraw'.
type ActionTagger struct{}

var _ custody.Decorator = ActionTagger{}

// ActionKey is the attribute key of the action in the "message" event.
const ActionKey = "action"

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver emits the event on success.
func (ActionTagger) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	// if we error in reporting, let's do so early before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Emit(custody.NewEvent("message").With(ActionKey, msg.Path()))
	return res, nil
}
