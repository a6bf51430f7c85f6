package query

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/domain"
)

var (
	mockCTX = ctx.Background()
)

const (
	mockTable = domain.Table("query_test")
	dbName    = "testdb"
)

type dummy struct {
	Dummy  string `bson:"dummy"`
	Update string `bson:"updatekey"`
	N      int    `bson:"n"`
}

type querySuite struct {
	suite.Suite
	im       *impl
	mongoURI string
}

// Needs a replica set for transactions, e.g. MONGO_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func TestQuerySuite(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	suite.Run(t, &querySuite{mongoURI: uri})
}

func TestTransactionRefusedInIndexCheckingMode(t *testing.T) {
	ran := false
	err := New(nil, true).RunWithTransaction(mockCTX, func(ctx.Ctx) error {
		ran = true
		return nil
	})
	assert.Equal(t, ErrNoTransaction, err)
	assert.False(t, ran)
}

func (q *querySuite) SetupTest() {
	q.im = New(mongoclient.MustConnectMongoClient(mongoclient.Config{
		URI:     q.mongoURI,
		DBName:  dbName,
		SetSafe: true,
	}), false).(*impl)
	q.Require().NoError(q.im.collection(mockTable).Drop(mockCTX))
}

func (q *querySuite) TestInsertAndFindOne() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "x", 1}))

	res := dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "a"}, &res))
	q.Equal(dummy{"a", "x", 1}, res)

	q.Equal(ErrNotFound, q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "b"}, &res))
}

func (q *querySuite) TestInsertShouldFailWithDuplicateKey() {
	q.Require().NoError(q.im.EnsureIndexes(mockCTX, mockTable, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dummy", Value: 1}}, Options: options.Index().SetUnique(true)},
	}))
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "x", 1}))
	q.Equal(ErrDuplicateKey, q.im.Insert(mockCTX, mockTable, dummy{"a", "y", 2}))
}

func (q *querySuite) TestSearchAndCount() {
	for i, k := range []string{"a", "b", "c"} {
		q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{k, "x", i}))
	}

	var res []dummy
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 0, 2, []string{"-n"}, bson.M{"updatekey": "x"}, &res))
	q.Equal([]dummy{{"c", "x", 2}, {"b", "x", 1}}, res)

	n, err := q.im.Count(mockCTX, mockTable, bson.M{"updatekey": "x"})
	q.NoError(err)
	q.Equal(3, n)
}

func (q *querySuite) TestPatchAndCustomPatch() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "x", 1}))

	q.NoError(q.im.Patch(mockCTX, mockTable, bson.M{"dummy": "a"}, bson.M{"updatekey": "y"}))
	q.Equal(ErrNotFound, q.im.Patch(mockCTX, mockTable, bson.M{"dummy": "z"}, bson.M{"updatekey": "y"}))

	q.NoError(q.im.CustomPatch(mockCTX, mockTable, bson.M{"dummy": "a", "n": 1}, bson.M{"$inc": bson.M{"n": 1}}, false))
	q.Equal(ErrNotFound, q.im.CustomPatch(mockCTX, mockTable, bson.M{"dummy": "a", "n": 1}, bson.M{"$inc": bson.M{"n": 1}}, false))

	res := dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "a"}, &res))
	q.Equal(dummy{"a", "y", 2}, res)
}

func (q *querySuite) TestAggregate() {
	for i, k := range []string{"a", "b", "c"} {
		q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{k, "x", i}))
	}

	var res []struct {
		Id    string `bson:"_id"`
		Total int    `bson:"total"`
	}
	q.Require().NoError(q.im.Aggregate(mockCTX, mockTable, []bson.M{
		{"$group": bson.M{"_id": "$updatekey", "total": bson.M{"$sum": "$n"}}},
	}, &res))
	q.Require().Len(res, 1)
	q.Equal(3, res[0].Total)
}

func (q *querySuite) TestRemove() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"a", "x", 1}))
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"b", "x", 2}))

	q.Require().NoError(q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "a"}))
	q.Equal(ErrNotFound, q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "a"}))
	n, err := q.im.Count(mockCTX, mockTable, bson.M{})
	q.Require().NoError(err)
	q.Equal(1, n)
}

func (q *querySuite) TestRunWithTransaction() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"seed", "x", 0}))

	err := q.im.RunWithTransaction(mockCTX, func(c ctx.Ctx) error {
		if err := q.im.Insert(c, mockTable, dummy{"a", "x", 1}); err != nil {
			return err
		}
		return ErrDuplicateKey
	})
	q.Equal(ErrDuplicateKey, err)

	n, err := q.im.Count(mockCTX, mockTable, bson.M{})
	q.NoError(err)
	q.Equal(1, n)
}
