package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/stores/auction/repository/memory"
)

func TestRepoSource(t *testing.T) {
	ctx := bCtx.Background()
	store := memory.New()
	now := time.Now()

	for _, a := range []*auction.Auction{
		{Id: "a1", Category: "art", Status: auction.StatusActive, EndTime: now.Add(time.Hour)},
		{Id: "a2", Category: "art", Status: auction.StatusActive, EndTime: now.Add(time.Hour)},
		{Id: "a3", Category: "cars", Status: auction.StatusActive, EndTime: now.Add(time.Hour)},
		{Id: "a4", Category: "cars", Status: auction.StatusEnded, EndTime: now.Add(-time.Hour)},
	} {
		require.NoError(t, store.Insert(ctx, a))
	}
	for i, auctionId := range []string{"a1", "a1", "a3", "a4"} {
		require.NoError(t, store.Bids().Insert(ctx, &auction.Bid{
			Id:        string(rune('p' + i)),
			AuctionId: auctionId,
			Amount:    decimal.NewFromInt(int64(100 + i)),
			BidTime:   now,
			Status:    auction.BidStatusActive,
		}))
	}

	src := NewRepoSource(store, store.Bids())

	cats, err := src.CountActiveByCategory(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"art": 2, "cars": 1}, cats)

	bids, err := src.CountBidsOfActive(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"a1": 2, "a3": 1}, bids)
}
