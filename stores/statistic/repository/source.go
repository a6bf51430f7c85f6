package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/statistic"
	"github.com/x-xyz/goauction/service/query"
)

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type mongoSource struct {
	q query.Mongo
}

// New returns a Source that aggregates directly in mongo
func New(q query.Mongo) statistic.Source {
	return &mongoSource{q}
}

func (s *mongoSource) group(ctx bCtx.Ctx, table domain.Table, pipeline bson.A) (map[string]int64, error) {
	rows := []groupCount{}
	if err := s.q.Aggregate(ctx, table, pipeline, &rows); err != nil {
		ctx.WithFields(log.Fields{"err": err, "table": table}).Error("q.Aggregate failed")
		return nil, err
	}

	res := make(map[string]int64, len(rows))
	for _, r := range rows {
		res[r.Key] = r.Count
	}
	return res, nil
}

func (s *mongoSource) CountActiveByCategory(ctx bCtx.Ctx) (map[string]int64, error) {
	return s.group(ctx, domain.TableAuctions, bson.A{
		bson.M{"$match": bson.M{"status": auction.StatusActive}},
		bson.M{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
	})
}

func (s *mongoSource) CountBidsOfActive(ctx bCtx.Ctx) (map[string]int64, error) {
	type idDoc struct {
		Id string `bson:"id"`
	}
	docs := []idDoc{}
	if err := s.q.Search(ctx, domain.TableAuctions, 0, 0, nil, bson.M{"status": auction.StatusActive}, &docs); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	if len(docs) == 0 {
		return map[string]int64{}, nil
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.Id)
	}
	return s.group(ctx, domain.TableBids, bson.A{
		bson.M{"$match": bson.M{"auctionId": bson.M{"$in": ids}}},
		bson.M{"$group": bson.M{"_id": "$auctionId", "count": bson.M{"$sum": 1}}},
	})
}

type repoSource struct {
	auctions auction.Repo
	bids     auction.BidRepo
}

// NewRepoSource derives counters through the auction repositories, for
// stores without an aggregation pipeline.
func NewRepoSource(auctions auction.Repo, bids auction.BidRepo) statistic.Source {
	return &repoSource{auctions, bids}
}

func (s *repoSource) CountActiveByCategory(ctx bCtx.Ctx) (map[string]int64, error) {
	as, err := s.auctions.FindAll(ctx, auction.WithStatus(auction.StatusActive))
	if err != nil {
		ctx.WithField("err", err).Error("auctions.FindAll failed")
		return nil, err
	}
	res := map[string]int64{}
	for _, a := range as {
		res[a.Category]++
	}
	return res, nil
}

func (s *repoSource) CountBidsOfActive(ctx bCtx.Ctx) (map[string]int64, error) {
	as, err := s.auctions.FindAll(ctx, auction.WithStatus(auction.StatusActive))
	if err != nil {
		ctx.WithField("err", err).Error("auctions.FindAll failed")
		return nil, err
	}
	res := map[string]int64{}
	for _, a := range as {
		n, err := s.bids.Count(ctx, auction.BidWithAuctionId(a.Id))
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "auctionId": a.Id}).Error("bids.Count failed")
			return nil, err
		}
		if n > 0 {
			res[a.Id] = int64(n)
		}
	}
	return res, nil
}
