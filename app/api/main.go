package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/mongoclient"
	"github.com/x-xyz/goauction/base/database/redisclient"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/base/lifecycle"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	bValidator "github.com/x-xyz/goauction/base/validator"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/healthcheck"
	"github.com/x-xyz/goauction/domain/notification"
	"github.com/x-xyz/goauction/domain/statistic"
	mmiddleware "github.com/x-xyz/goauction/middleware"
	"github.com/x-xyz/goauction/service/cache"
	"github.com/x-xyz/goauction/service/cache/provider"
	"github.com/x-xyz/goauction/service/cache/provider/compound"
	"github.com/x-xyz/goauction/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/goauction/service/cache/provider/redis"
	"github.com/x-xyz/goauction/service/query"
	"github.com/x-xyz/goauction/service/redis"
	auction_delivery "github.com/x-xyz/goauction/stores/auction/delivery/http"
	auction_repository "github.com/x-xyz/goauction/stores/auction/repository"
	"github.com/x-xyz/goauction/stores/auction/repository/memory"
	auction_usecase "github.com/x-xyz/goauction/stores/auction/usecase"
	hc_delivery "github.com/x-xyz/goauction/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/goauction/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/goauction/stores/healthcheck/usecase"
	notification_repository "github.com/x-xyz/goauction/stores/notification/repository"
	notification_usecase "github.com/x-xyz/goauction/stores/notification/usecase"
	statistic_delivery "github.com/x-xyz/goauction/stores/statistic/delivery/http"
	statistic_repository "github.com/x-xyz/goauction/stores/statistic/repository"
	statistic_usecase "github.com/x-xyz/goauction/stores/statistic/usecase"
)

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	viper.SetEnvPrefix("AUCTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := log.Setup(viper.GetString("log.level"), viper.GetBool("debug")); err != nil {
		panic(err)
	}
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("datadog_port", 8125)
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("notification.driver", "log")
	viper.SetDefault("notification.workers", 8)
	viper.SetDefault("notification.retry", 3)
	viper.SetDefault("notification.queueLength", 1024)
	viper.SetDefault("sweeper.interval", lifecycle.DefaultInterval)
	viper.SetDefault("auction.minDuration", time.Hour)
	viper.SetDefault("auction.maxDuration", 30*24*time.Hour)
	viper.SetDefault("auction.defaultBidIncrement", "1")
	viper.SetDefault("auction.inlineActivation", true)
	viper.SetDefault("cache.size", 16)
	viper.SetDefault("cache.activeAuctionsTtl", 10*time.Second)
	viper.SetDefault("cache.queryTtl", 5*time.Second)
	viper.SetDefault("health.timeout", 2*time.Second)
}

// stores bundles the persistence chosen by store.driver
type stores struct {
	auctions   auction.Repo
	bids       auction.BidRepo
	transactor auction.Transactor
	source     statistic.Source
	mongo      *mongoclient.Client
}

func initStores(context ctx.Ctx) stores {
	switch driver := viper.GetString("store.driver"); driver {
	case "mongo":
		context.Info("init mongo")
		mongoClient := mongoclient.MustConnectMongoClient(mongoclient.Config{
			URI:                viper.GetString("mongo.uri"),
			AuthDBName:         viper.GetString("mongo.authDBName"),
			DBName:             viper.GetString("mongo.dbName"),
			SSL:                viper.GetBool("mongo.enableSSL"),
			SetSafe:            true,
			PoolSizeMultiplier: 2,
		})
		checkIndex := viper.GetBool("mongo.checkIndex")
		q := query.New(mongoClient, checkIndex)
		if err := auction_repository.EnsureIndexes(context, q); err != nil {
			context.WithField("err", err).Panic("EnsureIndexes failed")
		}

		s := stores{
			auctions: auction_repository.NewAuctionRepo(q),
			bids:     auction_repository.NewBidRepo(q),
			source:   statistic_repository.New(q),
			mongo:    mongoClient,
		}
		// transactions need a replica set
		if viper.GetBool("mongo.transactions") {
			if checkIndex {
				context.Warn("mongo.transactions ignored with mongo.checkIndex, bids commit without a transaction")
			} else {
				s.transactor = q
			}
		}
		return s
	case "memory":
		context.Warn("in-memory store, data is lost on restart")
		m := memory.New()
		return stores{
			auctions:   m,
			bids:       m.Bids(),
			transactor: m,
			source:     statistic_repository.NewRepoSource(m, m.Bids()),
		}
	default:
		context.WithField("driver", driver).Panic("unknown store driver")
	}
	return stores{}
}

func initRedis(context ctx.Ctx) redis.Service {
	if viper.GetString("redis.uri") == "" {
		return nil
	}
	context.Info("init redis")
	name := viper.GetString("redis.name")
	pool := redisclient.MustConnectRedis(redisclient.Config{
		URI:            viper.GetString("redis.uri"),
		Password:       viper.GetString("redis.password"),
		DB:             viper.GetInt("redis.db"),
		PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
		Retry:          true,
	})
	return redis.New(name, metrics.New(name), pool)
}

// newCache keeps values in process and, with redis configured, shares them
// across instances behind the local layer.
func newCache(local provider.Provider, r redis.Service, pfx string, ttl time.Duration) cache.Service {
	p := local
	if r != nil {
		p = compound.NewCompound([]provider.Provider{local, redisCache.NewRedis(r)})
	}
	return cache.New(cache.ServiceConfig{
		Ttl:   ttl,
		Pfx:   pfx,
		Cache: p,
	})
}

func initSink(context ctx.Ctx, r redis.Service) notification.Sink {
	switch driver := viper.GetString("notification.driver"); driver {
	case "redis":
		if r == nil {
			context.Panic("notification.driver redis needs redis.uri")
		}
		return notification_repository.NewRedisSink(r, viper.GetString("notification.channel"))
	case "log":
		return notification_repository.NewLogSink()
	default:
		context.WithField("driver", driver).Panic("unknown notification driver")
	}
	return nil
}

func main() {
	defer log.Sync()

	if host := viper.GetString("datadog_host"); host != "" {
		metrics.Configure(host, viper.GetInt("datadog_port"))
	}

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(viper.GetString("admin.token"))
	e.Use(middL.AddContext())
	e.Use(middL.ResponseLogger())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	st := initStores(context)
	redisService := initRedis(context)

	registry := statistic_usecase.New(st.source)
	if err := registry.Rebuild(context); err != nil {
		context.WithField("err", err).Panic("registry.Rebuild failed")
	}

	dispatcher := notification_usecase.New(&notification_usecase.DispatcherCfg{
		Sink:        initSink(context, redisService),
		Workers:     viper.GetInt("notification.workers"),
		Attempts:    viper.GetInt("notification.retry"),
		QueueLength: viper.GetInt("notification.queueLength"),
	})

	local := primitive.NewPrimitive("auction", viper.GetInt("cache.size"))
	cfg := &auction_usecase.AuctionUseCaseCfg{
		AuctionRepo:         st.auctions,
		BidRepo:             st.bids,
		Transactor:          st.transactor,
		Registry:            registry,
		Notifier:            dispatcher,
		Cache:               newCache(local, redisService, "auction", viper.GetDuration("cache.activeAuctionsTtl")),
		Locks:               keylock.New(),
		MinDuration:         viper.GetDuration("auction.minDuration"),
		MaxDuration:         viper.GetDuration("auction.maxDuration"),
		DefaultBidIncrement: decimal.RequireFromString(viper.GetString("auction.defaultBidIncrement")),
		InlineActivation:    viper.GetBool("auction.inlineActivation"),
	}
	auctionUsecase := auction_usecase.New(cfg)
	auctionLifecycle := auction_usecase.NewLifecycle(cfg)

	sweepCtx, stopSweeper := ctx.WithCancel(context)
	sweeper := lifecycle.NewSweeper(auctionLifecycle, registry).
		SetInterval(viper.GetDuration("sweeper.interval")).
		SetRate(viper.GetInt("sweeper.ratePerSecond"))
	sweeper.Start(sweepCtx)

	probes := []healthcheck.Probe{}
	if st.mongo != nil {
		probes = append(probes, hc_repo.NewMongoProbe(st.mongo))
	}
	if redisService != nil {
		probes = append(probes, hc_repo.NewRedisProbe(redisService))
	}
	hc := hc_usecase.New(viper.GetDuration("health.timeout"), probes...)
	queryCache := newCache(local, redisService, "httpCacheMiddleware", viper.GetDuration("cache.queryTtl"))

	hc_delivery.New(e, hc)
	auction_delivery.New(e, auctionUsecase, middL, queryCache)
	statistic_delivery.New(e, auctionUsecase, middL)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")

	stopSweeper()
	sweeper.Wait()

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}

	dispatcher.Release()
	registry.Clear()
}
