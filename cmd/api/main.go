package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"nutricare/internal/config"
	"nutricare/internal/db"
	"nutricare/internal/email"
	apihttp "nutricare/internal/http"
	"nutricare/internal/repository"
	"nutricare/internal/service"

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

	if err := db.RunMigrations(ctx, cfg); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	diseaseRepo := repository.NewPgDiseaseRepository(pool)
	mealRepo := repository.NewPgMealRepository(pool)
	feedbackRepo := repository.NewPgFeedbackRepository(pool)
	faqRepo := repository.NewPgFAQRepository(pool)
	settingsRepo := repository.NewPgSettingsRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter     service.OTPRateLimiter
		challengeStore service.ChallengeStore
		tokenStore     service.RefreshTokenStore
		redisClient    *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			challengeStore = service.NewRedisChallengeStore(redisClient)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	otpSvc := service.NewOTPService(logger, challengeStore, emailSender, otpLimiter)
	authSvc := service.NewAuthService(logger, accountRepo, userRepo, otpSvc, jwtSvc.Store(), cfg.AdminEmail)
	catalogSvc := service.NewCatalogService(logger, diseaseRepo, mealRepo)
	feedbackSvc := service.NewFeedbackService(logger, feedbackRepo, faqRepo, userRepo, diseaseRepo, mealRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	userHandler := apihttp.NewUserHandler(logger, authSvc, settingsRepo)
	catalogHandler := apihttp.NewCatalogHandler(logger, catalogSvc)
	feedbackHandler := apihttp.NewFeedbackHandler(logger, feedbackSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, userHandler, catalogHandler, feedbackHandler)

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
