package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"soul-feed/internal/chain"
	"soul-feed/internal/config"
	"soul-feed/internal/db"
	apihttp "soul-feed/internal/http"
	"soul-feed/internal/llm"
	"soul-feed/internal/repository"
	"soul-feed/internal/scrape"
	"soul-feed/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	postRepo := repository.NewPgPostRepository(pool)
	universeRepo := repository.NewPgUniverseRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	chainClient := chain.NewHTTPClient(cfg.IndexerBaseURL, cfg.IndexerAPIKey)

	var (
		loreCache    service.LoreCache
		sessionStore service.SessionStore
		tickLocker   service.TickLocker
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loreCache = service.NewRedisLoreCache(redisClient)
			sessionStore = service.NewRedisSessionStore(redisClient)
			tickLocker = service.NewRedisTickLocker(redisClient, 10*time.Minute)
		}
		cancel()
	}
	if loreCache == nil {
		loreCache = service.NewMemoryLoreCache()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMins)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMins)*time.Minute,
		sessionStore,
	)

	authSvc := service.NewAuthService(logger, chainClient, userRepo, jwtSvc)
	universeSvc := service.NewUniverseService(logger, universeRepo, loreCache, scrape.NewScraper())
	soulSvc := service.NewSoulService(llmClient)
	postSvc := service.NewPostService(llmClient, cfg.FlagshipContract)
	replySel := service.NewReplySelector(postRepo)
	claimSvc := service.NewClaimService(logger, chainClient, userRepo, profileRepo, postRepo, soulSvc, postSvc, universeSvc, llmClient, cfg.FlagshipContract)
	schedulerSvc := service.NewSchedulerService(logger, profileRepo, postRepo, postSvc, replySel, universeSvc, tickLocker, cfg.FlagshipContract, service.SchedulerConfig{
		OriginalQuota:       cfg.DailyOriginalQuota,
		ReplyQuota:          cfg.DailyReplyQuota,
		PostProbability:     cfg.PostProbability,
		DayTicks:            cfg.SimulatedDayTicks,
		InterCharacterDelay: time.Duration(cfg.InterCharacterDelay) * time.Millisecond,
	})

	router := apihttp.NewRouter(
		logger,
		apihttp.NewAuthHandler(logger, authSvc, jwtSvc),
		apihttp.NewClaimHandler(logger, claimSvc),
		apihttp.NewFeedHandler(logger, profileRepo, postRepo),
		apihttp.NewUniverseHandler(logger, universeSvc),
		apihttp.NewSchedulerHandler(logger, schedulerSvc),
		apihttp.JWTAuthMiddleware(jwtSvc),
		cfg.CronSecret,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
