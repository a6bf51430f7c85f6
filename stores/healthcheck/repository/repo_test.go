package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/service/redis/mocks"
)

var mockCtx = ctx.Background()

type redisProbeSuite struct {
	suite.Suite

	redis *mocks.Service
}

func TestRedisProbe(t *testing.T) {
	suite.Run(t, new(redisProbeSuite))
}

func (s *redisProbeSuite) SetupTest() {
	s.redis = new(mocks.Service)
}

func (s *redisProbeSuite) TearDownTest() {
	s.redis.AssertExpectations(s.T())
}

func (s *redisProbeSuite) TestHealthy() {
	s.redis.On("Ping", mock.Anything).Return(nil).Once()
	s.redis.On("Set", mock.Anything, "healthcheck:probe", mock.AnythingOfType("[]uint8"), 30*time.Second).Return(nil).Once()

	p := NewRedisProbe(s.redis)
	s.Equal("redis", p.Name())
	s.NoError(p.Ping(mockCtx))
}

func (s *redisProbeSuite) TestPingFailure() {
	cause := errors.New("connection refused")
	s.redis.On("Ping", mock.Anything).Return(cause).Once()

	err := NewRedisProbe(s.redis).Ping(mockCtx)
	s.ErrorIs(err, cause)
	s.Contains(err.Error(), "ping redis")
}

func (s *redisProbeSuite) TestReadOnlyReplica() {
	cause := errors.New("READONLY You can't write against a read only replica.")
	s.redis.On("Ping", mock.Anything).Return(nil).Once()
	s.redis.On("Set", mock.Anything, "healthcheck:probe", mock.Anything, 30*time.Second).Return(cause).Once()

	err := NewRedisProbe(s.redis).Ping(mockCtx)
	s.ErrorIs(err, cause)
	s.Contains(err.Error(), "write redis")
}
