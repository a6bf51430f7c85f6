package repository

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type auctionDoc struct {
	Id            string                `bson:"id"`
	Title         string                `bson:"title"`
	Description   string                `bson:"description"`
	Category      string                `bson:"category"`
	StartingPrice primitive.Decimal128  `bson:"startingPrice"`
	CurrentPrice  primitive.Decimal128  `bson:"currentPrice"`
	ReservePrice  *primitive.Decimal128 `bson:"reservePrice,omitempty"`
	BidIncrement  primitive.Decimal128  `bson:"bidIncrement"`
	StartTime     time.Time             `bson:"startTime"`
	EndTime       time.Time             `bson:"endTime"`
	Status        auction.Status        `bson:"status"`
	SellerId      string                `bson:"sellerId"`
	Version       int64                 `bson:"version"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

func toAuctionDoc(a *auction.Auction) (*auctionDoc, error) {
	var err error
	doc := &auctionDoc{
		Id:          a.Id,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Status:      a.Status,
		SellerId:    a.SellerId,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if doc.StartingPrice, err = toDecimal128(a.StartingPrice); err != nil {
		return nil, err
	}
	if doc.CurrentPrice, err = toDecimal128(a.CurrentPrice); err != nil {
		return nil, err
	}
	if doc.BidIncrement, err = toDecimal128(a.BidIncrement); err != nil {
		return nil, err
	}
	if a.ReservePrice != nil {
		r, err := toDecimal128(*a.ReservePrice)
		if err != nil {
			return nil, err
		}
		doc.ReservePrice = &r
	}
	return doc, nil
}

func (d *auctionDoc) toAuction() (*auction.Auction, error) {
	var err error
	a := &auction.Auction{
		Id:          d.Id,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Status:      d.Status,
		SellerId:    d.SellerId,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if a.StartingPrice, err = fromDecimal128(d.StartingPrice); err != nil {
		return nil, err
	}
	if a.CurrentPrice, err = fromDecimal128(d.CurrentPrice); err != nil {
		return nil, err
	}
	if a.BidIncrement, err = fromDecimal128(d.BidIncrement); err != nil {
		return nil, err
	}
	if d.ReservePrice != nil {
		r, err := fromDecimal128(*d.ReservePrice)
		if err != nil {
			return nil, err
		}
		a.ReservePrice = &r
	}
	return a, nil
}

type auctionRepo struct {
	q query.Mongo
}

func NewAuctionRepo(q query.Mongo) auction.Repo {
	return &auctionRepo{q}
}

// AuctionIndexes backs the lookups of the auction repo and the sweeper scans
var AuctionIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endTime", Value: 1}}},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: 1}}},
	{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	{Keys: bson.D{{Key: "sellerId", Value: 1}}},
}

func auctionSelector(opts auction.FindAllOptions) bson.M {
	res := bson.M{}
	if opts.Status != nil {
		res["status"] = *opts.Status
	}
	if opts.Category != nil {
		res["category"] = *opts.Category
	}
	if opts.Seller != nil {
		res["sellerId"] = *opts.Seller
	}
	if opts.Keyword != nil && *opts.Keyword != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(*opts.Keyword), Options: "i"}
		res["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	if opts.StartTimeBefore != nil {
		res["startTime"] = bson.M{"$lte": *opts.StartTimeBefore}
	}
	endTime := bson.M{}
	if opts.EndTimeBefore != nil {
		endTime["$lte"] = *opts.EndTimeBefore
	}
	if opts.EndTimeAfter != nil {
		endTime["$gt"] = *opts.EndTimeAfter
	}
	if len(endTime) > 0 {
		res["endTime"] = endTime
	}
	return res
}

func (r *auctionRepo) FindOne(ctx bCtx.Ctx, id string) (*auction.Auction, error) {
	doc := &auctionDoc{}
	if err := r.q.FindOne(ctx, domain.TableAuctions, bson.M{"id": id}, doc); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id}).Error("q.FindOne failed")
		return nil, err
	}

	a, err := doc.toAuction()
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id}).Error("toAuction failed")
		return nil, err
	}
	return a, nil
}

func (r *auctionRepo) FindAll(ctx bCtx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("GetFindAllOptions failed")
		return nil, err
	}

	sort := "endTime"
	if opts.SortBy != nil {
		sort = *opts.SortBy
		if opts.SortDir != nil && *opts.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}
	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	selector := auctionSelector(opts)
	docs := []auctionDoc{}
	if err := r.q.Search(ctx, domain.TableAuctions, offset, limit, []string{sort, "id"}, selector, &docs); err != nil {
		ctx.WithFields(log.Fields{"err": err, "selector": selector}).Error("q.Search failed")
		return nil, err
	}

	res := make([]*auction.Auction, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toAuction()
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "id": docs[i].Id}).Error("toAuction failed")
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

func (r *auctionRepo) Count(ctx bCtx.Ctx, optFns ...auction.FindAllOptionsFunc) (int, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("GetFindAllOptions failed")
		return 0, err
	}
	n, err := r.q.Count(ctx, domain.TableAuctions, auctionSelector(opts))
	if err != nil {
		ctx.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return n, nil
}

func (r *auctionRepo) Insert(ctx bCtx.Ctx, a *auction.Auction) error {
	doc, err := toAuctionDoc(a)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": a.Id}).Error("toAuctionDoc failed")
		return err
	}
	if err := r.q.Insert(ctx, domain.TableAuctions, doc); err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": a.Id}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *auctionRepo) Update(ctx bCtx.Ctx, a *auction.Auction, expectedVersion int64) error {
	doc, err := toAuctionDoc(a)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": a.Id}).Error("toAuctionDoc failed")
		return err
	}
	doc.Version = expectedVersion + 1

	updater, err := mongoclient.MakeSetter(doc, "id", "createdAt")
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": a.Id}).Error("MakeSetter failed")
		return err
	}

	selector := bson.M{"id": a.Id, "version": expectedVersion}
	err = r.q.CustomPatch(ctx, domain.TableAuctions, selector, bson.M{"$set": updater}, false)
	if err == query.ErrNotFound {
		// tell a stale version apart from a missing auction
		if _, ferr := r.FindOne(ctx, a.Id); ferr == domain.ErrNotFound {
			return domain.ErrNotFound
		}
		return auction.NewVersionConflict(a.Id, expectedVersion)
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": a.Id, "version": expectedVersion}).Error("q.CustomPatch failed")
		return err
	}

	a.Version = doc.Version
	return nil
}
