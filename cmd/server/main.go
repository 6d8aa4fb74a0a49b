package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/football-ticketing/internal/config"
	"github.com/iliyamo/football-ticketing/internal/database"
	"github.com/iliyamo/football-ticketing/internal/handler"
	"github.com/iliyamo/football-ticketing/internal/middleware"
	"github.com/iliyamo/football-ticketing/internal/queue"
	"github.com/iliyamo/football-ticketing/internal/repository"
	"github.com/iliyamo/football-ticketing/internal/router"
	queue_publisher "github.com/iliyamo/football-ticketing/internal/service"
	"github.com/iliyamo/football-ticketing/internal/standings"
	"github.com/iliyamo/football-ticketing/internal/worker"
)

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := newLogger(cfg.LogLevel)
	if !cfg.SessionsEnabled() {
		log.Warn("JWT_SECRET not set; logins fail and protected endpoints answer 401")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("configure database")
	}
	defer db.Close()
	if err := database.Ping(context.Background(), db); err != nil {
		log.WithError(err).Warn("database unreachable at startup; /healthz reports 503 until it answers")
	} else if cfg.DBMigrate {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(mctx, db)
		cancel()
		if err != nil {
			log.WithError(err).Error("apply schema")
		}
	}

	// Redis is optional; without it the cache and rate limiter pass through.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var bg sync.WaitGroup
	runBG := func(fn func()) {
		bg.Add(1)
		go func() {
			defer bg.Done()
			fn()
		}()
	}

	var publisher queue.Publisher = queue.Nop{}
	if cfg.RabbitMQURL != "" {
		rp := queue_publisher.NewRabbitPublisher(cfg.RabbitMQURL, 256, log.WithField("component", "publisher"))
		publisher = rp
		runBG(func() { rp.Run(ctx) })

		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Log: log.WithField("component", "order-consumer")}
		runBG(func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("order consumer stopped")
			}
		})
	} else {
		log.Info("RABBITMQ_URL not set; order events are not published")
	}

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	orders := repository.NewOrderRepo(db)

	sweeper := worker.NewExpirySweeper(orders, publisher, cfg.OrderHoldWindow, cfg.OrderSweepInterval, log.WithField("component", "expiry"))
	runBG(func() { sweeper.Start(ctx) })

	football := standings.NewClient(cfg.FootballAPIBaseURL, cfg.FootballAPIKey, cfg.StandingsTimeout)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Session(cfg.JWTSecret))

	router.Register(e, router.Handlers{
		Health:     handler.Health(db),
		Auth:       handler.NewAuthHandler(cfg, users, log),
		Users:      handler.NewUserHandler(users, log),
		Categories: handler.NewCategoryHandler(repository.NewCategoryRepo(db), log),
		Events:     handler.NewEventHandler(repository.NewEventRepo(db), log),
		Tribunes:   handler.NewTribuneHandler(repository.NewTribuneRepo(db), log),
		Orders:     handler.NewOrderHandler(orders, publisher, log),
		Standings:  handler.NewStandingsHandler(football, log),
	}, router.Middlewares{
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	bg.Wait()
}
