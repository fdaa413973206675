package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"exchange_backend/internal/app/di"
	"exchange_backend/internal/app/router"
	markethandler "exchange_backend/internal/feature/market/transport/handler"
	marketusecase "exchange_backend/internal/feature/market/usecase"
	portfoliohandler "exchange_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "exchange_backend/internal/feature/portfolio/usecase"
	"exchange_backend/internal/platform/config"
	infradb "exchange_backend/internal/platform/db"
	infraredis "exchange_backend/internal/platform/redis"
	"exchange_backend/internal/platform/realtime"
	"exchange_backend/internal/platform/scheduler"
	"exchange_backend/internal/shared/ratelimiter"
)

const shutdownTimeout = 5 * time.Second

func main() {
	config.LoadDotEnv()
	appCfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	dbCfg := infradb.LoadConfigFromEnv()
	if dbCfg.Driver == infradb.DriverSQLite {
		// ローカルのSQLiteは常にテーブルを用意する
		dbCfg.Migrate = true
	}
	db, err := infradb.OpenDB(dbCfg, di.Models()...)
	if err != nil {
		log.Fatal(err)
	}

	// Redis
	redisCfg := infraredis.LoadConfigFromEnv()
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(redisCfg); err != nil {
		log.Println("[WARN] Redis unavailable. Portfolio is stored in the database.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 再描画トリガー
	hub := realtime.NewHub()
	go hub.Run(ctx)

	// Market
	source, err := di.NewEntitySource(appCfg.CharacterSource, rdb, db, redisCfg.Namespace)
	if err != nil {
		log.Fatal(err)
	}
	marketUC := marketusecase.NewMarketUsecase(source, marketusecase.LoadConfig(), marketusecase.DefaultRandom(), time.Now, hub)
	if err := marketUC.Load(ctx); err != nil {
		log.Println("[WARN] Market data unavailable. Retry with POST /market/reload:", err)
	}

	// Portfolio
	store := di.NewPortfolioStore(rdb, db, redisCfg.Namespace)
	ledger := portfoliousecase.NewLedger(store, marketUC, hub)
	if err := ledger.Load(ctx); err != nil {
		log.Println("[WARN] Saved portfolio could not be loaded, starting empty:", err)
	}

	// 定期ティック
	sched := scheduler.New()
	if err := sched.AddInterval(appCfg.SimulationInterval, marketUC); err != nil {
		log.Fatal(err)
	}
	sched.Start()
	defer sched.Stop()

	// Handler
	marketH := markethandler.NewMarketHandler(marketUC)
	portfolioH := portfoliohandler.NewPortfolioHandler(ledger, marketUC)

	var tradeLimit *ratelimiter.RateLimiter
	if appCfg.TradeRateLimit > 0 {
		tradeLimit = ratelimiter.NewRateLimiter(appCfg.TradeRateLimit, time.Minute)
	}

	// ルータ生成
	r := router.NewRouter(marketUC.Loaded, marketH, portfolioH, hub, tradeLimit)

	srv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Println("listening on", appCfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[ERROR] HTTP shutdown failed:", err)
	}
}
