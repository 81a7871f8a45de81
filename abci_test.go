package custody

import (
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
)

func TestDeliverOrError(t *testing.T) {
	res := DeliverResult{Data: []byte{1}, Log: "ok"}
	res.Emit(
		NewEvent("vault.withdraw").With("vault", 1).With("amount", "0.1 ETH"),
		NewEvent("replay.consumed").With("auth_id", "AB"),
	)

	got := DeliverOrError(&res, nil, false)
	assert.EqualValues(t, errors.SuccessABCICode, got.Code)
	assert.Equal(t, []byte{1}, got.Data)
	if assert.Len(t, got.Tags, 3) {
		assert.Equal(t, "vault.withdraw.vault", string(got.Tags[0].Key))
		assert.Equal(t, "1", string(got.Tags[0].Value))
		assert.Equal(t, "vault.withdraw.amount", string(got.Tags[1].Key))
		assert.Equal(t, "replay.consumed.auth_id", string(got.Tags[2].Key))
	}

	fail := DeliverOrError(nil, errors.Wrap(errors.ErrUnauthorized, "signer"), false)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), fail.Code)
	assert.Equal(t, "cannot deliver tx: signer: unauthorized", fail.Log)
}

func TestCheckOrError(t *testing.T) {
	got := CheckOrError(&CheckResult{Log: "fine", GasAllocated: 7}, nil, false)
	assert.EqualValues(t, 0, got.Code)
	assert.EqualValues(t, 7, got.GasWanted)

	fail := CheckOrError(nil, errors.ErrNotFound.New("vault"), false)
	assert.Equal(t, errors.ErrNotFound.ABCICode(), fail.Code)
	assert.Equal(t, "cannot check tx: vault: not found", fail.Log)
}

func TestEventWithDoesNotAlias(t *testing.T) {
	base := NewEvent("authz.authorized").With("registry", 1)
	a := base.With("signer", "A")
	b := base.With("signer", "B")

	va, _ := a.Attr("signer")
	vb, _ := b.Attr("signer")
	assert.Equal(t, "A", va)
	assert.Equal(t, "B", vb)
	_, ok := base.Attr("signer")
	assert.False(t, ok)
}

func TestParseDeliverOrError(t *testing.T) {
	res := DeliverResult{Data: []byte("id"), Log: "created"}
	res.Emit(
		NewEvent("vault.deposit").With("vault", 1).With("amount", "1 ETH"),
		NewEvent("vault.deposit").With("vault", 2).With("amount", "2 ETH"),
		NewEvent("authz.authorize").With("signer", "AB"),
	)

	got, err := ParseDeliverOrError(DeliverOrError(&res, nil, false))
	assert.NoError(t, err)
	assert.Equal(t, res.Data, got.Data)
	assert.Equal(t, res.Events, got.Events)

	_, err = ParseDeliverOrError(DeliverOrError(nil, errors.ErrNotFound.New("vault"), false))
	assert.True(t, errors.ErrNotFound.Is(err))
}
