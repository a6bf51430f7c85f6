package usecase

import (
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

// transit moves a to status and returns the stored result. The caller holds
// the auction lock.
func (im *impl) transit(ctx ctx.Ctx, a *auction.Auction, status auction.Status) (*auction.Auction, error) {
	if !a.Status.CanTransitTo(status) {
		return nil, auction.NewInvalidTransition(a.Id, a.Status, status)
	}

	if status == auction.StatusEnded {
		// settle statuses before bidding is closed for good
		if _, err := im.repairWinner(ctx, a); err != nil {
			ctx.WithFields(log.Fields{"err": err, "auctionId": a.Id}).Error("repairWinner failed")
			return nil, err
		}
	}

	next := a.Clone()
	next.Status = status
	next.UpdatedAt = im.now()
	if err := im.auctionRepo.Update(ctx, next, a.Version); err != nil {
		ctx.WithFields(log.Fields{"err": err, "auctionId": a.Id, "status": status}).Error("auctionRepo.Update failed")
		return nil, auction.NewStorageFailure("update status", err)
	}

	if status.IsTerminal() {
		im.registry.PruneAuction(a.Id)
	}
	im.invalidateListing(ctx)
	ctx.WithFields(log.Fields{"auctionId": a.Id, "from": a.Status, "to": status}).Info("auction transited")
	return next, nil
}

// transitLocked loads id under its lock and moves it to status if allowed
// accepts the loaded auction
func (im *impl) transitLocked(ctx ctx.Ctx, id string, status auction.Status, allowed func(*auction.Auction) bool) (*auction.Auction, bool, error) {
	unlock := im.locks.Lock(id)
	defer unlock()

	a, err := im.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !allowed(a) {
		return a, false, nil
	}
	next, err := im.transit(ctx, a, status)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (im *impl) adminTransit(ctx ctx.Ctx, id string, status auction.Status) (*auction.Auction, error) {
	a, ok, err := im.transitLocked(ctx, id, status, func(a *auction.Auction) bool {
		return a.Status.CanTransitTo(status)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auction.NewInvalidTransition(id, a.Status, status)
	}
	return a, nil
}

// Activate opens a PENDING auction regardless of its start time
func (im *impl) Activate(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	return im.adminTransit(ctx, id, auction.StatusActive)
}

// Close ends an ACTIVE auction regardless of its end time
func (im *impl) Close(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	return im.adminTransit(ctx, id, auction.StatusEnded)
}

func (im *impl) Cancel(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	return im.adminTransit(ctx, id, auction.StatusCancelled)
}

func (im *impl) ListDue(ctx ctx.Ctx, now time.Time) ([]string, []string, error) {
	pending, err := im.findAll(ctx, auction.WithStatus(auction.StatusPending), auction.WithStartTimeBefore(now))
	if err != nil {
		return nil, nil, err
	}
	expired, err := im.findAll(ctx, auction.WithStatus(auction.StatusActive), auction.WithEndTimeBefore(now))
	if err != nil {
		return nil, nil, err
	}

	toActivate := make([]string, 0, len(pending))
	for _, a := range pending {
		toActivate = append(toActivate, a.Id)
	}
	toClose := make([]string, 0, len(expired))
	for _, a := range expired {
		toClose = append(toClose, a.Id)
	}
	return toActivate, toClose, nil
}

// ActivateIfDue also closes the auction right away when its end time has
// passed while it was still PENDING.
func (im *impl) ActivateIfDue(ctx ctx.Ctx, id string, now time.Time) (bool, bool, error) {
	unlock := im.locks.Lock(id)
	defer unlock()

	a, err := im.load(ctx, id)
	if err != nil {
		return false, false, err
	}
	if !a.DueForActivation(now) {
		return false, false, nil
	}
	if a, err = im.transit(ctx, a, auction.StatusActive); err != nil {
		return false, false, err
	}
	if !a.DueForClosing(now) {
		return true, false, nil
	}
	if _, err := im.transit(ctx, a, auction.StatusEnded); err != nil {
		return true, false, err
	}
	return true, true, nil
}

func (im *impl) CloseIfDue(ctx ctx.Ctx, id string, now time.Time) (bool, error) {
	_, ok, err := im.transitLocked(ctx, id, auction.StatusEnded, func(a *auction.Auction) bool {
		return a.DueForClosing(now)
	})
	return ok, err
}

// PruneIfInactive checks the status under the auction lock so a bid that is
// still being counted cannot lose its entry.
func (im *impl) PruneIfInactive(ctx ctx.Ctx, id string) (bool, error) {
	unlock := im.locks.Lock(id)
	defer unlock()

	a, err := im.auctionRepo.FindOne(ctx, id)
	if err != nil && err != domain.ErrNotFound {
		ctx.WithFields(log.Fields{"err": err, "auctionId": id}).Error("auctionRepo.FindOne failed")
		return false, auction.NewStorageFailure("load auction", err)
	}
	if a != nil && a.Status == auction.StatusActive {
		return false, nil
	}
	return im.registry.PruneAuction(id), nil
}
