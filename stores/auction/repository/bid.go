package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type bidDoc struct {
	Id            string               `bson:"id"`
	AuctionId     string               `bson:"auctionId"`
	BidderId      string               `bson:"bidderId"`
	Amount        primitive.Decimal128 `bson:"amount"`
	BidTime       time.Time            `bson:"bidTime"`
	OriginAddress string               `bson:"originAddress,omitempty"`
	Status        auction.BidStatus    `bson:"status"`
}

func toBidDoc(b *auction.Bid) (*bidDoc, error) {
	amount, err := toDecimal128(b.Amount)
	if err != nil {
		return nil, err
	}
	return &bidDoc{
		Id:            b.Id,
		AuctionId:     b.AuctionId,
		BidderId:      b.BidderId,
		Amount:        amount,
		BidTime:       b.BidTime,
		OriginAddress: b.OriginAddress,
		Status:        b.Status,
	}, nil
}

func (d *bidDoc) toBid() (*auction.Bid, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	return &auction.Bid{
		Id:            d.Id,
		AuctionId:     d.AuctionId,
		BidderId:      d.BidderId,
		Amount:        amount,
		BidTime:       d.BidTime,
		OriginAddress: d.OriginAddress,
		Status:        d.Status,
	}, nil
}

// BidIndexes backs bid history and winner lookups
var BidIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "bidTime", Value: -1}}},
	{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "status", Value: 1}, {Key: "amount", Value: -1}}},
	{Keys: bson.D{{Key: "bidderId", Value: 1}, {Key: "bidTime", Value: -1}}},
}

// EnsureIndexes creates the indexes of both auction tables
func EnsureIndexes(ctx bCtx.Ctx, q query.Mongo) error {
	if err := q.EnsureIndexes(ctx, domain.TableAuctions, AuctionIndexes); err != nil {
		ctx.WithField("err", err).Error("EnsureIndexes auctions failed")
		return err
	}
	if err := q.EnsureIndexes(ctx, domain.TableBids, BidIndexes); err != nil {
		ctx.WithField("err", err).Error("EnsureIndexes bids failed")
		return err
	}
	return nil
}

type bidRepo struct {
	q query.Mongo
}

func NewBidRepo(q query.Mongo) auction.BidRepo {
	return &bidRepo{q}
}

func bidSelector(opts auction.BidFindAllOptions) bson.M {
	res := bson.M{}
	if opts.AuctionId != nil {
		res["auctionId"] = *opts.AuctionId
	}
	if opts.BidderId != nil {
		res["bidderId"] = *opts.BidderId
	}
	if opts.Status != nil {
		res["status"] = *opts.Status
	}
	return res
}

func (r *bidRepo) Insert(ctx bCtx.Ctx, b *auction.Bid) error {
	doc, err := toBidDoc(b)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": b.Id}).Error("toBidDoc failed")
		return err
	}
	if err := r.q.Insert(ctx, domain.TableBids, doc); err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": b.Id}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *bidRepo) FindAll(ctx bCtx.Ctx, optFns ...auction.BidFindAllOptionsFunc) ([]*auction.Bid, error) {
	opts, err := auction.GetBidFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("GetBidFindAllOptions failed")
		return nil, err
	}
	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	selector := bidSelector(opts)
	docs := []bidDoc{}
	if err := r.q.Search(ctx, domain.TableBids, offset, limit, []string{"-bidTime", "-amount"}, selector, &docs); err != nil {
		ctx.WithFields(log.Fields{"err": err, "selector": selector}).Error("q.Search failed")
		return nil, err
	}
	return docsToBids(ctx, docs)
}

func docsToBids(ctx bCtx.Ctx, docs []bidDoc) ([]*auction.Bid, error) {
	res := make([]*auction.Bid, 0, len(docs))
	for i := range docs {
		b, err := docs[i].toBid()
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "id": docs[i].Id}).Error("toBid failed")
			return nil, err
		}
		res = append(res, b)
	}
	return res, nil
}

func (r *bidRepo) Count(ctx bCtx.Ctx, optFns ...auction.BidFindAllOptionsFunc) (int, error) {
	opts, err := auction.GetBidFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("GetBidFindAllOptions failed")
		return 0, err
	}
	n, err := r.q.Count(ctx, domain.TableBids, bidSelector(opts))
	if err != nil {
		ctx.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return n, nil
}

func (r *bidRepo) FindWinning(ctx bCtx.Ctx, auctionId string) (*auction.Bid, error) {
	selector := bson.M{"auctionId": auctionId, "status": auction.BidStatusWinning}
	docs := []bidDoc{}
	if err := r.q.Search(ctx, domain.TableBids, 0, 1, []string{"-amount"}, selector, &docs); err != nil {
		ctx.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("q.Search failed")
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return docs[0].toBid()
}

func (r *bidRepo) UpdateStatus(ctx bCtx.Ctx, id string, status auction.BidStatus) error {
	err := r.q.Patch(ctx, domain.TableBids, bson.M{"id": id}, bson.M{"status": status})
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "status": status}).Error("q.Patch failed")
		return err
	}
	return nil
}

func (r *bidRepo) Remove(ctx bCtx.Ctx, id string) error {
	err := r.q.Remove(ctx, domain.TableBids, bson.M{"id": id})
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id}).Error("q.Remove failed")
		return err
	}
	return nil
}
