package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/base/ptr"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/domain/statistic"
	"github.com/x-xyz/goauction/service/cache"
)

const (
	defaultMinDuration = time.Hour
	defaultMaxDuration = 30 * 24 * time.Hour
	defaultPageSize    = 20
	maxPageSize        = 100
)

type AuctionUseCaseCfg struct {
	AuctionRepo auction.Repo
	BidRepo     auction.BidRepo
	// Transactor is optional. Without it a failed commit is compensated and
	// stale bid statuses are repaired on the next read.
	Transactor auction.Transactor
	Registry   statistic.Registry
	Notifier   auction.Notifier
	// Cache is optional and holds the active listing
	Cache cache.Service
	// Locks is shared by every usecase built from the same cfg
	Locks   *keylock.KeyLock
	Clock   domain.Clock
	Metrics metrics.Service

	MinDuration         time.Duration
	MaxDuration         time.Duration
	DefaultBidIncrement decimal.Decimal
	// InlineActivation lets a bid activate a PENDING auction whose start
	// time has passed instead of waiting for the next sweep
	InlineActivation bool
}

type impl struct {
	auctionRepo auction.Repo
	bidRepo     auction.BidRepo
	transactor  auction.Transactor
	registry    statistic.Registry
	notifier    auction.Notifier
	cache       cache.Service
	locks       *keylock.KeyLock
	now         domain.Clock
	met         metrics.Service

	minDuration         time.Duration
	maxDuration         time.Duration
	defaultBidIncrement decimal.Decimal
	inlineActivation    bool
}

func newImpl(cfg *AuctionUseCaseCfg) *impl {
	if cfg.Locks == nil {
		cfg.Locks = keylock.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New("auction")
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = defaultMinDuration
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = defaultMaxDuration
	}
	if !cfg.DefaultBidIncrement.IsPositive() {
		cfg.DefaultBidIncrement = auction.DefaultBidIncrement
	}

	return &impl{
		auctionRepo:         cfg.AuctionRepo,
		bidRepo:             cfg.BidRepo,
		transactor:          cfg.Transactor,
		registry:            cfg.Registry,
		notifier:            cfg.Notifier,
		cache:               cfg.Cache,
		locks:               cfg.Locks,
		now:                 cfg.Clock,
		met:                 cfg.Metrics,
		minDuration:         cfg.MinDuration,
		maxDuration:         cfg.MaxDuration,
		defaultBidIncrement: cfg.DefaultBidIncrement,
		inlineActivation:    cfg.InlineActivation,
	}
}

// New fills the zero fields of cfg with defaults, so a Lifecycle built
// from the same cfg afterwards shares its locks.
func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	return newImpl(cfg)
}

func NewLifecycle(cfg *AuctionUseCaseCfg) auction.Lifecycle {
	return newImpl(cfg)
}

func (im *impl) Create(ctx ctx.Ctx, p auction.CreateParams) (*auction.Auction, error) {
	if im.registry.IsMaintenance() {
		return nil, auction.NewSystemUnavailable()
	}
	if err := im.validateCreate(p); err != nil {
		ctx.WithFields(log.Fields{"err": err, "sellerId": p.SellerId}).Warn("invalid auction")
		return nil, err
	}

	now := im.now()
	a := &auction.Auction{
		Id:            uuid.NewString(),
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		StartingPrice: p.StartingPrice,
		CurrentPrice:  p.StartingPrice,
		ReservePrice:  p.ReservePrice,
		BidIncrement:  ptr.DecimalOr(p.BidIncrement, im.defaultBidIncrement),
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		Status:        auction.StatusPending,
		SellerId:      p.SellerId,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if a.DueForActivation(now) {
		a.Status = auction.StatusActive
	}

	if err := im.auctionRepo.Insert(ctx, a); err != nil {
		ctx.WithFields(log.Fields{"err": err, "auction": a}).Error("auctionRepo.Insert failed")
		return nil, auction.NewStorageFailure("create auction", err)
	}

	im.registry.IncrementCategoryCounter(a.Category)
	if a.Status == auction.StatusActive {
		im.invalidateListing(ctx)
	}
	ctx.WithFields(log.Fields{"auctionId": a.Id, "status": a.Status}).Info("auction created")
	return a, nil
}

func (im *impl) validateCreate(p auction.CreateParams) error {
	switch {
	case p.Title == "":
		return auction.NewValidationError(nil, "title is required")
	case p.Category == "":
		return auction.NewValidationError(nil, "category is required")
	case p.SellerId == "":
		return auction.NewValidationError(nil, "seller is required")
	case !p.StartingPrice.IsPositive():
		return auction.NewValidationError(auction.ErrInvalidAmount, "starting price must be positive")
	case p.BidIncrement != nil && !p.BidIncrement.IsPositive():
		return auction.NewValidationError(auction.ErrInvalidAmount, "bid increment must be positive")
	case p.ReservePrice != nil && p.ReservePrice.IsNegative():
		return auction.NewValidationError(auction.ErrInvalidAmount, "reserve price cannot be negative")
	}

	now := im.now()
	duration := p.EndTime.Sub(p.StartTime)
	switch {
	case p.StartTime.Before(now):
		return auction.NewValidationError(auction.ErrInvalidSchedule, "start time cannot be in the past")
	case !p.EndTime.After(p.StartTime):
		return auction.NewValidationError(auction.ErrInvalidSchedule, "end time must be after start time")
	case duration < im.minDuration:
		return auction.NewValidationError(auction.ErrInvalidSchedule, "auction duration must be at least %s", im.minDuration)
	case duration >= im.maxDuration:
		return auction.NewValidationError(auction.ErrInvalidSchedule, "auction duration must be less than %s", im.maxDuration)
	}
	return nil
}

// load reads an auction and classifies the failure
func (im *impl) load(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return nil, auction.NewNotFound(id)
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "auctionId": id}).Error("auctionRepo.FindOne failed")
		return nil, auction.NewStorageFailure("load auction", err)
	}
	return a, nil
}

func (im *impl) FindOne(ctx ctx.Ctx, id string) (*auction.Auction, error) {
	return im.load(ctx, id)
}

func (im *impl) findAll(ctx ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	res, err := im.auctionRepo.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auctionRepo.FindAll failed")
		return nil, auction.NewStorageFailure("list auctions", err)
	}
	return res, nil
}

func (im *impl) GetActive(ctx ctx.Ctx) ([]*auction.Auction, error) {
	if im.cache == nil {
		return im.findAll(ctx, auction.WithStatus(auction.StatusActive))
	}

	return cache.Load(ctx, im.cache, keys.ActiveListing(), func() ([]*auction.Auction, error) {
		return im.findAll(ctx, auction.WithStatus(auction.StatusActive))
	})
}

func (im *impl) invalidateListing(ctx ctx.Ctx) {
	if im.cache == nil {
		return
	}
	if err := im.cache.Del(ctx, keys.ActiveListing()); err != nil {
		ctx.WithField("err", err).Warn("cache.Del failed")
	}
}

func (im *impl) GetByCategory(ctx ctx.Ctx, category string) ([]*auction.Auction, error) {
	if category == "" {
		return nil, auction.NewValidationError(nil, "category is required")
	}
	return im.findAll(ctx, auction.WithStatus(auction.StatusActive), auction.WithCategory(category))
}

func (im *impl) GetEndingSoon(ctx ctx.Ctx, within time.Duration) ([]*auction.Auction, error) {
	if within <= 0 {
		return nil, auction.NewValidationError(nil, "window must be positive")
	}
	now := im.now()
	return im.findAll(ctx,
		auction.WithStatus(auction.StatusActive),
		auction.WithEndTimeAfter(now),
		auction.WithEndTimeBefore(now.Add(within)),
	)
}

func (im *impl) Search(ctx ctx.Ctx, keyword, category string, limit int) ([]*auction.Auction, error) {
	opts := []auction.FindAllOptionsFunc{
		auction.WithStatus(auction.StatusActive),
		auction.WithPagination(0, pageSize(limit)),
	}
	if keyword != "" {
		opts = append(opts, auction.WithKeyword(keyword))
	}
	if category != "" {
		opts = append(opts, auction.WithCategory(category))
	}
	return im.findAll(ctx, opts...)
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func (im *impl) GetSaleResult(ctx ctx.Ctx, id string) (*auction.SaleResult, error) {
	a, err := im.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != auction.StatusEnded {
		return nil, auction.NewNotEnded(id, a.Status)
	}

	winning, err := im.highestBid(ctx, a)
	if err != nil {
		return nil, err
	}
	res := &auction.SaleResult{
		AuctionId:  a.Id,
		Status:     a.Status,
		ReserveMet: a.HasReachedReserve(),
		FinalPrice: a.CurrentPrice,
		WinningBid: winning,
	}
	res.Sold = winning != nil && res.ReserveMet
	return res, nil
}

func (im *impl) GetMinimumNextBid(ctx ctx.Ctx, auctionId string) (decimal.Decimal, error) {
	a, err := im.load(ctx, auctionId)
	if err != nil {
		return decimal.Zero, err
	}
	return a.MinimumNextBid(), nil
}

func (im *impl) GetHighestBid(ctx ctx.Ctx, auctionId string) (*auction.Bid, error) {
	a, err := im.load(ctx, auctionId)
	if err != nil {
		return nil, err
	}
	return im.highestBid(ctx, a)
}

func (im *impl) GetBids(ctx ctx.Ctx, auctionId string, offset, limit int) ([]*auction.Bid, int, error) {
	if offset < 0 {
		return nil, 0, auction.NewValidationError(nil, "offset cannot be negative")
	}
	if _, err := im.load(ctx, auctionId); err != nil {
		return nil, 0, err
	}

	bids, err := im.bidRepo.FindAll(ctx, auction.BidWithAuctionId(auctionId), auction.BidWithPagination(offset, pageSize(limit)))
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("bidRepo.FindAll failed")
		return nil, 0, auction.NewStorageFailure("list bids", err)
	}
	total, err := im.bidRepo.Count(ctx, auction.BidWithAuctionId(auctionId))
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("bidRepo.Count failed")
		return nil, 0, auction.NewStorageFailure("count bids", err)
	}
	return bids, total, nil
}

func (im *impl) GetBidsByBidder(ctx ctx.Ctx, bidderId string) ([]*auction.Bid, error) {
	if bidderId == "" {
		return nil, auction.NewValidationError(nil, "bidder is required")
	}
	bids, err := im.bidRepo.FindAll(ctx, auction.BidWithBidder(bidderId))
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "bidderId": bidderId}).Error("bidRepo.FindAll failed")
		return nil, auction.NewStorageFailure("list bids", err)
	}
	return bids, nil
}

func (im *impl) GetBidCount(ctx ctx.Ctx, auctionId string) int64 {
	return im.registry.GetBidCount(auctionId)
}

func (im *impl) GetCategoryCounts(ctx ctx.Ctx) map[string]int64 {
	return im.registry.GetCategoryCounts()
}

func (im *impl) IsMaintenance(ctx ctx.Ctx) bool {
	return im.registry.IsMaintenance()
}

func (im *impl) SetMaintenance(ctx ctx.Ctx, on bool) {
	im.registry.SetMaintenance(on)
	ctx.WithField("maintenance", on).Info("maintenance toggled")
}

func (im *impl) Status(ctx ctx.Ctx) *auction.SystemStatus {
	res := &auction.SystemStatus{
		Maintenance:     im.registry.IsMaintenance(),
		TotalActiveBids: im.registry.TotalActiveBids(),
		TrackedAuctions: len(im.registry.TrackedAuctions()),
		CategoryCounts:  im.registry.GetCategoryCounts(),
		ServerTime:      im.now(),
	}
	if t, ok := im.registry.LastSweepTime(); ok {
		res.LastSweepTime = &t
	}
	return res
}
