package query

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
)

const (
	queryMaxTime  = 20 * time.Second
	slowThreshold = 500 * time.Millisecond
	// concurrent transactions allowed per process
	txSlots = 10
)

var (
	timeNow = time.Now
	met     = metrics.New("mongo")
)

type impl struct {
	client     *mongoclient.Client
	checkIndex bool
	txSlots    chan struct{}
}

// New wraps client. With checkIndex every read is explained first and
// rejected with ErrCollScan when it would scan the collection, which is
// meant for tests and staging. Transactions are not available in that mode.
func New(client *mongoclient.Client, checkIndex bool) Mongo {
	return &impl{
		client:     client,
		checkIndex: checkIndex,
		txSlots:    make(chan struct{}, txSlots),
	}
}

func (im *impl) collection(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

// op describes one instrumented driver call
type op struct {
	c      ctx.Ctx
	table  domain.Table
	action string
	filter interface{}
	start  time.Time
	timer  metrics.Ender
}

func (im *impl) begin(c ctx.Ctx, table domain.Table, action string, filter interface{}) *op {
	return &op{
		c:      ctx.WithValues(c, map[string]interface{}{"table": table, "action": action}),
		table:  table,
		action: action,
		filter: filter,
		start:  timeNow(),
		timer:  met.BumpTime("time", "func", action, "table", string(table)),
	}
}

func (o *op) end() {
	o.timer.End()
	if elapsed := timeNow().Sub(o.start); elapsed >= slowThreshold {
		met.BumpSum("slowlog", 1, "table", string(o.table), "action", o.action)
		o.c.WithFields(log.Fields{
			"durationMs": elapsed.Milliseconds(),
			"filter":     o.filter,
		}).Warn("mongo slowlog")
	}
}

func (o *op) fail(err error) error {
	if _, ok := err.(topology.ConnectionError); ok {
		met.BumpSum("conn.err", 1)
	}
	o.c.WithFields(log.Fields{"err": err, "filter": o.filter}).Error("mongo " + o.action + " failed")
	return err
}

func (im *impl) Insert(c ctx.Ctx, table domain.Table, doc interface{}) error {
	o := im.begin(c, table, "insert", nil)
	defer o.end()

	if _, err := im.collection(table).InsertOne(o.c, doc); mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	} else if err != nil {
		return o.fail(err)
	}
	return nil
}

func (im *impl) FindOne(c ctx.Ctx, table domain.Table, filter, result interface{}) error {
	o := im.begin(c, table, "findone", filter)
	defer o.end()

	if err := im.explain(o, "find", bson.E{Key: "filter", Value: filter}); err != nil {
		return err
	}
	err := im.collection(table).FindOne(o.c, filter, options.FindOne().SetMaxTime(queryMaxTime)).Decode(result)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	} else if err != nil {
		return o.fail(err)
	}
	return nil
}

func (im *impl) Count(c ctx.Ctx, table domain.Table, filter interface{}) (int, error) {
	o := im.begin(c, table, "count", filter)
	defer o.end()

	if err := im.explain(o, "count", bson.E{Key: "query", Value: filter}); err != nil {
		return 0, err
	}
	n, err := im.collection(table).CountDocuments(o.c, filter, options.Count().SetMaxTime(queryMaxTime))
	if err != nil {
		return 0, o.fail(err)
	}
	return int(n), nil
}

// sortSpec turns "-bidTime" style names into a mongo sort document
func sortSpec(fields []string) bson.D {
	spec := bson.D{}
	for _, f := range fields {
		switch {
		case f == "":
		case strings.HasPrefix(f, "-"):
			spec = append(spec, bson.E{Key: f[1:], Value: -1})
		default:
			spec = append(spec, bson.E{Key: f, Value: 1})
		}
	}
	return spec
}

func (im *impl) Search(c ctx.Ctx, table domain.Table, offset, limit int, sortFields []string, filter, results interface{}) error {
	o := im.begin(c, table, "search", filter)
	defer o.end()

	if err := im.explain(o, "find", bson.E{Key: "filter", Value: filter}); err != nil {
		return err
	}
	opts := options.Find().SetMaxTime(queryMaxTime).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if spec := sortSpec(sortFields); len(spec) > 0 {
		opts.SetSort(spec)
	}
	cursor, err := im.collection(table).Find(o.c, filter, opts)
	if err != nil {
		return o.fail(err)
	}
	if err := cursor.All(o.c, results); err != nil {
		return o.fail(err)
	}
	return nil
}

func (im *impl) Patch(c ctx.Ctx, table domain.Table, filter, fields interface{}) error {
	return im.update(c, table, "patch", filter, bson.M{"$set": fields}, false)
}

func (im *impl) CustomPatch(c ctx.Ctx, table domain.Table, filter, update bson.M, upsert bool) error {
	return im.update(c, table, "custompatch", filter, update, upsert)
}

func (im *impl) update(c ctx.Ctx, table domain.Table, action string, filter, update interface{}, upsert bool) error {
	o := im.begin(c, table, action, filter)
	defer o.end()

	res, err := im.collection(table).UpdateOne(o.c, filter, update, options.Update().SetUpsert(upsert))
	if err != nil {
		return o.fail(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) Remove(c ctx.Ctx, table domain.Table, filter interface{}) error {
	o := im.begin(c, table, "remove", filter)
	defer o.end()

	res, err := im.collection(table).DeleteOne(o.c, filter)
	if err != nil {
		return o.fail(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) Aggregate(c ctx.Ctx, table domain.Table, pipeline interface{}, results interface{}) error {
	o := im.begin(c, table, "aggregate", pipeline)
	defer o.end()

	cursor, err := im.collection(table).Aggregate(o.c, pipeline)
	if err != nil {
		return o.fail(err)
	}
	if err := cursor.All(o.c, results); err != nil {
		return o.fail(err)
	}
	return nil
}

func (im *impl) EnsureIndexes(c ctx.Ctx, table domain.Table, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	o := im.begin(c, table, "ensureindexes", nil)
	defer o.end()

	names, err := im.collection(table).Indexes().CreateMany(o.c, models)
	if err != nil {
		return o.fail(err)
	}
	o.c.WithField("indexes", names).Info("indexes ensured")
	return nil
}

func (im *impl) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	// explain does not run inside a transaction
	if im.checkIndex {
		return ErrNoTransaction
	}

	defer met.BumpTime("time", "func", "transaction").End()

	select {
	case <-c.Done():
		return c.Err()
	case im.txSlots <- struct{}{}:
	}
	defer func() { <-im.txSlots }()

	session, err := im.client.StartSession()
	if err != nil {
		c.WithField("err", err).Error("StartSession failed")
		return err
	}
	defer session.EndSession(c)

	_, err = session.WithTransaction(c, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(ctx.Ctx{Context: sc, Logger: c.Logger})
	})
	return err
}

// explain rejects filters that would scan the whole collection. It only
// runs in index checking mode.
func (im *impl) explain(o *op, action string, filter bson.E) error {
	if !im.checkIndex {
		return nil
	}
	res := im.client.Database(im.client.DbName).RunCommand(o.c, bson.D{
		{Key: "explain", Value: bson.D{{Key: action, Value: string(o.table)}, filter}},
		{Key: "verbosity", Value: "queryPlanner"},
	})

	var plan bson.M
	if err := res.Decode(&plan); err != nil {
		o.c.WithField("err", err).Warn("explain decode failed")
		met.BumpSum("explain.err", 1)
		return nil
	}
	// plan layouts differ between server versions, so match on text
	if strings.Contains(fmt.Sprintf("%v", plan), "COLLSCAN") {
		o.c.WithField("filter", filter.Value).Warn("COLLSCAN")
		return ErrCollScan
	}
	return nil
}
