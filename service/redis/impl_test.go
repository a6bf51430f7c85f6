package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/metrics"
)

var mockCtx = ctx.Background()

// fakeConn answers a handful of commands from memory
type fakeConn struct {
	store    map[string][]byte
	commands []string
	err      error
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Err() error { return c.err }

func (c *fakeConn) Send(string, ...interface{}) error { return nil }

func (c *fakeConn) Flush() error { return nil }

func (c *fakeConn) Receive() (interface{}, error) { return nil, nil }

func (c *fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	c.commands = append(c.commands, cmd)
	switch cmd {
	case "GET":
		v, ok := c.store[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "SET":
		c.store[args[0].(string)] = args[1].([]byte)
		return "OK", nil
	case "DEL":
		n := int64(0)
		for _, k := range args {
			if _, ok := c.store[k.(string)]; ok {
				delete(c.store, k.(string))
				n++
			}
		}
		return n, nil
	case "TTL":
		if _, ok := c.store[args[0].(string)]; !ok {
			return int64(-2), nil
		}
		return int64(-1), nil
	case "PUBLISH":
		return int64(2), nil
	case "PING":
		return "PONG", nil
	}
	return nil, errors.New("unsupported")
}

type fakePool struct {
	conn *fakeConn
}

func (p *fakePool) Get() redis.Conn { return p.conn }

type redisSuite struct {
	suite.Suite
	conn *fakeConn
	im   Service
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(redisSuite))
}

func (s *redisSuite) SetupTest() {
	s.conn = &fakeConn{store: map[string][]byte{}}
	s.im = New("test", metrics.NewNop(), &fakePool{s.conn})
}

func (s *redisSuite) TestGetSetDel() {
	_, err := s.im.Get(mockCtx, "k")
	s.Equal(ErrNotFound, err)

	s.Require().NoError(s.im.Set(mockCtx, "k", []byte("v"), time.Minute))
	v, err := s.im.Get(mockCtx, "k")
	s.NoError(err)
	s.Equal([]byte("v"), v)

	ttl, err := s.im.TTL(mockCtx, "k")
	s.NoError(err)
	s.Equal(-1, ttl)

	n, err := s.im.Del(mockCtx, "k", "missing")
	s.NoError(err)
	s.Equal(1, n)

	_, err = s.im.TTL(mockCtx, "k")
	s.Equal(ErrNotFound, err)
}

func (s *redisSuite) TestSetRejectsSubMillisecondExpire() {
	s.Error(s.im.Set(mockCtx, "k", []byte("v"), time.Microsecond))
	s.NoError(s.im.Set(mockCtx, "k", []byte("v"), Forever))
}

func (s *redisSuite) TestPublishAndPing() {
	n, err := s.im.Publish(mockCtx, "bids:a1", []byte(`{}`))
	s.NoError(err)
	s.Equal(2, n)
	s.NoError(s.im.Ping(mockCtx))
	s.Equal([]string{"PUBLISH", "PING"}, s.conn.commands)
}

func (s *redisSuite) TestBrokenConn() {
	s.conn.err = errors.New("dial tcp: refused")
	_, err := s.im.Get(mockCtx, "k")
	s.Error(err)
}
