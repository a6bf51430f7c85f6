// Package query is a thin instrumented layer over the mongo driver. Every
// call is timed, slow calls are logged, and driver sentinels are mapped to
// the package errors below.
package query

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCollScan is returned in index checking mode for unindexed queries
	ErrCollScan = errors.New("COLLSCAN is not allowed")
	// ErrNoTransaction is returned by RunWithTransaction in index checking mode
	ErrNoTransaction = errors.New("transactions unavailable in index checking mode")
)

type Mongo interface {
	// Insert returns ErrDuplicateKey when a unique index is violated
	Insert(c ctx.Ctx, table domain.Table, doc interface{}) error

	// FindOne returns ErrNotFound when nothing matches
	FindOne(c ctx.Ctx, table domain.Table, filter, result interface{}) error

	Count(c ctx.Ctx, table domain.Table, filter interface{}) (int, error)

	// Search decodes the matches into results. sortFields name a field per
	// key, prefixed with "-" for descending. limit 0 means no limit.
	Search(c ctx.Ctx, table domain.Table, offset, limit int, sortFields []string, filter, results interface{}) error

	// Patch $sets fields on the first match, ErrNotFound when nothing matches
	Patch(c ctx.Ctx, table domain.Table, filter, fields interface{}) error

	// CustomPatch applies a raw update document to the first match. Without
	// upsert it returns ErrNotFound when nothing matches.
	CustomPatch(c ctx.Ctx, table domain.Table, filter, update bson.M, upsert bool) error

	// Remove deletes the first match, ErrNotFound when nothing matches
	Remove(c ctx.Ctx, table domain.Table, filter interface{}) error

	// Aggregate runs pipeline and decodes every output document into results
	Aggregate(c ctx.Ctx, table domain.Table, pipeline interface{}, results interface{}) error

	EnsureIndexes(c ctx.Ctx, table domain.Table, models []mongo.IndexModel) error

	// RunWithTransaction runs fn in a session transaction. Calls made with
	// the ctx handed to fn join it. fn never runs outside a transaction, in
	// index checking mode ErrNoTransaction is returned instead.
	RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error
}
