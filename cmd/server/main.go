package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"psx_backend/internal/app/di"
	"psx_backend/internal/app/router"
	"psx_backend/internal/app/scheduler"
	authadapters "psx_backend/internal/feature/auth/adapters"
	authhandler "psx_backend/internal/feature/auth/transport/handler"
	authusecase "psx_backend/internal/feature/auth/usecase"
	marketadapters "psx_backend/internal/feature/marketdata/adapters"
	markethandler "psx_backend/internal/feature/marketdata/transport/handler"
	marketusecase "psx_backend/internal/feature/marketdata/usecase"
	portfolioadapters "psx_backend/internal/feature/portfolio/adapters"
	portfoliohandler "psx_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "psx_backend/internal/feature/portfolio/usecase"
	"psx_backend/internal/platform/cache"
	infradb "psx_backend/internal/platform/db"
	jwtmw "psx_backend/internal/platform/jwt"
	infraredis "psx_backend/internal/platform/redis"
	"psx_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	sessionRepo := di.NewSessionRepository(rdb)
	constituentRepo := marketadapters.NewConstituentRepository(db)
	watchRepo := marketadapters.NewMarketWatchRepository(db)
	txRepo := marketadapters.NewTransactionRepository(db)
	portfolioRepo := portfolioadapters.NewPortfolioRepository(db)

	// Redisキャッシュでラップ
	barRepo := cache.NewCachingBarRepository(rdb, cache.TimeUntilMarketClose(),
		marketadapters.NewBarRepository(db), "bars")

	// 外部API
	market := di.NewMarket()
	limiter := ratelimiter.NewRateLimiter(60, time.Minute)
	executor := marketusecase.NewConcurrentExecutor(4, limiter)

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv("JWT_SECRET"), time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtGen)
	barsUC := marketusecase.NewBarsUsecase(barRepo)
	watchUC := marketusecase.NewMarketWatchUsecase(watchRepo)
	consUC := marketusecase.NewConstituentsUsecase(constituentRepo)
	syncUC := marketusecase.NewSyncUsecase(market, barRepo, watchRepo, constituentRepo, executor, nil, logger)
	partialUC := marketusecase.NewPartialSyncUsecase(market, barRepo, logger)
	txUC := marketusecase.NewTransactionsUsecase(market, txRepo, logger)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(portfolioRepo)

	// Handler
	h := router.Handlers{
		Auth:         authhandler.NewAuthHandler(authUC),
		Bars:         markethandler.NewBarsHandler(barsUC),
		MarketWatch:  markethandler.NewMarketWatchHandler(watchUC),
		Constituents: markethandler.NewConstituentsHandler(consUC),
		Transactions: markethandler.NewTransactionsHandler(txUC),
		Sync:         markethandler.NewSyncHandler(syncUC, partialUC, txUC),
		Portfolios:   portfoliohandler.NewPortfolioHandler(portfolioUC),
	}

	// ルータ生成
	r := router.NewRouter(h)

	// 夜間同期スケジューラ
	sched := scheduler.NewScheduler(syncUC, txUC, logger)
	sched.Start()
	defer sched.Stop()

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
