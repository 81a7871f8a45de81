package cash

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestSendHandler(t *testing.T) {
	var helpers custodytest.CtxAuth
	helpers.Key = "auth"

	alice := custodytest.NewAddress()
	bob := custodytest.NewAddress()

	cases := map[string]struct {
		signers        []custody.Address
		msg            custody.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantBob        coin.Coins
	}{
		"unsigned": {
			msg:            &SendMsg{Source: alice, Destination: bob, Amount: coin.NewCoinp(1, 0, "ETH")},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"signed by recipient": {
			signers:        []custody.Address{bob},
			msg:            &SendMsg{Source: alice, Destination: bob, Amount: coin.NewCoinp(1, 0, "ETH")},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"invalid message": {
			signers:        []custody.Address{alice},
			msg:            &SendMsg{Source: alice, Destination: bob},
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
		},
		"wrong message type": {
			signers:        []custody.Address{alice},
			msg:            &custodytest.Msg{RoutePath: "cash/send"},
			wantCheckErr:   errors.ErrType,
			wantDeliverErr: errors.ErrType,
		},
		"too much": {
			signers:        []custody.Address{alice},
			msg:            &SendMsg{Source: alice, Destination: bob, Amount: coin.NewCoinp(3, 0, "ETH")},
			wantDeliverErr: errors.ErrInsufficientAmount,
		},
		"success": {
			signers: []custody.Address{alice},
			msg:     &SendMsg{Source: alice, Destination: bob, Amount: coin.NewCoinp(1, 0, "ETH"), Memo: "rent"},
			wantBob: coin.Coins{coin.NewCoinp(1, 0, "ETH")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(NewBucket())
			assert.Nil(t, ctrl.IssueCoins(db, alice, coin.NewCoin(2, 0, "ETH")))

			ctx := helpers.SetAddresses(context.Background(), tc.signers...)
			h := NewSendHandler(&helpers, ctrl)
			tx := &custodytest.Tx{Msg: tc.msg}

			_, err := h.Check(ctx, db, tx)
			if !tc.wantCheckErr.Is(err) {
				t.Fatalf("check: want %q error, got %+v", tc.wantCheckErr, err)
			}
			res, err := h.Deliver(ctx, db, tx)
			if !tc.wantDeliverErr.Is(err) {
				t.Fatalf("deliver: want %q error, got %+v", tc.wantDeliverErr, err)
			}
			if tc.wantDeliverErr != nil {
				return
			}

			got, err := ctrl.Balance(db, bob)
			assert.Nil(t, err)
			assert.CoinsEqual(t, tc.wantBob, got)

			assert.Equal(t, 1, len(res.Events))
			assert.Equal(t, "cash.transfer", res.Events[0].Type)
			dest, _ := res.Events[0].Attr("destination")
			assert.Equal(t, bob.String(), dest)
		})
	}
}

func TestQueryWallets(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	addr := custodytest.NewAddress()
	assert.Nil(t, ctrl.IssueCoins(db, addr, coin.NewCoin(4, 0, "ETH")))

	qr := custody.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/wallets")
	if h == nil {
		t.Fatal("wallets query not registered")
	}
	res, err := h.Query(db, custody.KeyQueryMod, addr)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))

	var set Set
	assert.Nil(t, set.Unmarshal(res[0].Value))
	assert.CoinsEqual(t, coin.Coins{coin.NewCoinp(4, 0, "ETH")}, set.Coins)
}
