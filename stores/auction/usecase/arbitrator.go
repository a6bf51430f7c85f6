package usecase

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/auction"
)

func (im *impl) SubmitBid(c ctx.Ctx, auctionId, bidderId string, amount decimal.Decimal, originAddress string) (*auction.Bid, error) {
	defer im.met.BumpTime("submit.time").End()

	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": auctionId,
		"bidderId":  bidderId,
	})

	bid, err := im.submitBid(c, auctionId, bidderId, amount, originAddress)
	if err != nil {
		im.met.BumpSum("bid.rejected", 1, "reason", auction.ReasonOf(err))
		return nil, err
	}
	im.met.BumpSum("bid.accepted", 1)

	// the auction is released by now
	if im.notifier != nil {
		im.notifier.Publish(ctx.Detach(c), auction.NewBidAcceptedEvent(bid))
	}
	return bid, nil
}

func (im *impl) submitBid(ctx ctx.Ctx, auctionId, bidderId string, amount decimal.Decimal, originAddress string) (*auction.Bid, error) {
	if im.registry.IsMaintenance() {
		return nil, auction.NewSystemUnavailable()
	}
	if !amount.IsPositive() {
		return nil, auction.NewValidationError(auction.ErrInvalidAmount, "bid amount must be positive")
	}
	if bidderId == "" {
		return nil, auction.NewValidationError(nil, "bidder is required")
	}

	unlock := im.locks.Lock(auctionId)
	defer unlock()

	a, err := im.load(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	now := im.now()
	if im.inlineActivation && a.DueForActivation(now) && now.Before(a.EndTime) {
		if a, err = im.transit(ctx, a, auction.StatusActive); err != nil {
			return nil, err
		}
	}

	if !a.IsOpen(now) {
		return nil, auction.NewAuctionNotOpen(a.Id, a.Status)
	}
	if a.SellerId == bidderId {
		return nil, auction.NewSelfBidForbidden()
	}
	if minimum := a.MinimumNextBid(); amount.LessThan(minimum) {
		return nil, auction.NewBidTooLow(minimum)
	}

	candidates, err := im.candidates(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	bid := &auction.Bid{
		Id:            uuid.NewString(),
		AuctionId:     auctionId,
		BidderId:      bidderId,
		Amount:        amount,
		BidTime:       now,
		OriginAddress: originAddress,
		Status:        auction.BidStatusActive,
	}
	if err := im.commitBid(ctx, a, bid, candidates); err != nil {
		return nil, err
	}

	im.registry.IncrementBidCount(auctionId)
	ctx.WithFields(log.Fields{"bidId": bid.Id, "amount": amount}).Info("bid accepted")
	return bid, nil
}

// candidates returns the bids that may still claim to be winning, newest first
func (im *impl) candidates(ctx ctx.Ctx, auctionId string) ([]*auction.Bid, error) {
	res := []*auction.Bid{}
	for _, st := range []auction.BidStatus{auction.BidStatusWinning, auction.BidStatusActive} {
		bids, err := im.bidRepo.FindAll(ctx, auction.BidWithAuctionId(auctionId), auction.BidWithStatus(st))
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "status": st}).Error("bidRepo.FindAll failed")
			return nil, auction.NewStorageFailure("load bids", err)
		}
		res = append(res, bids...)
	}
	sortNewestFirst(res)
	return res, nil
}

func sortNewestFirst(bids []*auction.Bid) {
	// insertion sort, the candidate set is tiny
	for i := 1; i < len(bids); i++ {
		for j := i; j > 0 && newer(bids[j], bids[j-1]); j-- {
			bids[j], bids[j-1] = bids[j-1], bids[j]
		}
	}
}

func newer(a, b *auction.Bid) bool {
	if !a.BidTime.Equal(b.BidTime) {
		return a.BidTime.After(b.BidTime)
	}
	return a.Amount.GreaterThan(b.Amount)
}

// commitBid stores bid and moves the price. The auction update is the
// commit point: once it lands the bid is accepted.
func (im *impl) commitBid(c ctx.Ctx, a *auction.Auction, bid *auction.Bid, candidates []*auction.Bid) error {
	next := a.Clone()
	next.CurrentPrice = bid.Amount
	next.UpdatedAt = bid.BidTime

	if im.transactor != nil {
		err := im.transactor.RunWithTransaction(c, func(txCtx ctx.Ctx) error {
			if err := im.bidRepo.Insert(txCtx, bid); err != nil {
				return err
			}
			if err := im.auctionRepo.Update(txCtx, next, a.Version); err != nil {
				return err
			}
			return im.settle(txCtx, bid, candidates)
		})
		if err != nil {
			c.WithField("err", err).Error("bid transaction failed")
			return auction.NewStorageFailure("commit bid", err)
		}
		bid.Status = auction.BidStatusWinning
		return nil
	}

	if err := im.bidRepo.Insert(c, bid); err != nil {
		c.WithField("err", err).Error("bidRepo.Insert failed")
		return auction.NewStorageFailure("insert bid", err)
	}
	if err := im.auctionRepo.Update(c, next, a.Version); err != nil {
		c.WithField("err", err).Error("auctionRepo.Update failed")
		// the price never moved, so the bid was never part of the auction
		if cerr := im.bidRepo.Remove(c, bid.Id); cerr != nil {
			c.WithFields(log.Fields{"err": cerr, "bidId": bid.Id}).Error("bidRepo.Remove failed, stray bid left to read repair")
		}
		return auction.NewStorageFailure("update auction", err)
	}

	if err := im.settle(c, bid, candidates); err != nil {
		// accepted already, the winner rule still picks this bid
		c.WithFields(log.Fields{"err": err, "bidId": bid.Id}).Warn("settle failed, left to read repair")
		return nil
	}
	bid.Status = auction.BidStatusWinning
	return nil
}

// settle demotes every earlier candidate and promotes bid
func (im *impl) settle(ctx ctx.Ctx, bid *auction.Bid, candidates []*auction.Bid) error {
	for _, prev := range candidates {
		if err := im.bidRepo.UpdateStatus(ctx, prev.Id, auction.BidStatusOutbid); err != nil {
			ctx.WithFields(log.Fields{"err": err, "bidId": prev.Id}).Error("demote failed")
			return err
		}
	}
	if err := im.bidRepo.UpdateStatus(ctx, bid.Id, auction.BidStatusWinning); err != nil {
		ctx.WithFields(log.Fields{"err": err, "bidId": bid.Id}).Error("promote failed")
		return err
	}
	return nil
}

// authoritative picks the bid whose amount is the current price. Among
// equals the newest wins.
func authoritative(a *auction.Auction, candidates []*auction.Bid) *auction.Bid {
	for _, b := range candidates {
		if b.Amount.Equal(a.CurrentPrice) {
			return b
		}
	}
	return nil
}

// consistent reports whether winner is the only live bid and is marked so
func consistent(winner *auction.Bid, candidates []*auction.Bid) bool {
	return len(candidates) == 1 && candidates[0].Id == winner.Id && candidates[0].Status == auction.BidStatusWinning
}

// highestBid returns the winning bid of a, or nil when nobody bid. When the
// stored statuses disagree with the price they are repaired under the
// auction lock.
func (im *impl) highestBid(ctx ctx.Ctx, a *auction.Auction) (*auction.Bid, error) {
	w, err := im.bidRepo.FindWinning(ctx, a.Id)
	if err == nil && w.Amount.Equal(a.CurrentPrice) {
		return w, nil
	} else if err != nil && err != auction.ErrNotFound {
		ctx.WithFields(log.Fields{"err": err, "auctionId": a.Id}).Error("bidRepo.FindWinning failed")
		return nil, auction.NewStorageFailure("load winning bid", err)
	}

	unlock := im.locks.Lock(a.Id)
	defer unlock()

	fresh, err := im.load(ctx, a.Id)
	if err != nil {
		return nil, err
	}
	return im.repairWinner(ctx, fresh)
}

// repairWinner needs the auction lock held
func (im *impl) repairWinner(ctx ctx.Ctx, a *auction.Auction) (*auction.Bid, error) {
	candidates, err := im.candidates(ctx, a.Id)
	if err != nil {
		return nil, err
	}
	winner := authoritative(a, candidates)
	if winner == nil {
		for _, b := range candidates {
			if err := im.bidRepo.UpdateStatus(ctx, b.Id, auction.BidStatusOutbid); err != nil {
				return nil, auction.NewStorageFailure("repair bids", err)
			}
		}
		return nil, nil
	}
	if consistent(winner, candidates) {
		return winner, nil
	}

	ctx.WithFields(log.Fields{"auctionId": a.Id, "bidId": winner.Id}).Warn("repairing bid statuses")
	others := make([]*auction.Bid, 0, len(candidates))
	for _, b := range candidates {
		if b.Id != winner.Id {
			others = append(others, b)
		}
	}
	if err := im.settle(ctx, winner, others); err != nil {
		return nil, auction.NewStorageFailure("repair bids", err)
	}
	winner.Status = auction.BidStatusWinning
	return winner, nil
}
