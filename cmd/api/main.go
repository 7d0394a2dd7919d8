package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mercado-api/internal/ai"
	"mercado-api/internal/catalog"
	"mercado-api/internal/config"
	"mercado-api/internal/db"
	"mercado-api/internal/email"
	apihttp "mercado-api/internal/http"
	"mercado-api/internal/logger"
	"mercado-api/internal/repository"
	"mercado-api/internal/service"
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

	zlog, err := logger.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		zlog.Fatal("db migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	catalogDB, err := catalog.NewDB(cfg.CatalogDatabaseURL, cfg.Debug)
	if err != nil {
		zlog.Fatal("catalog db connect", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	banRepo := repository.NewPgBanRepository(pool)
	productRepo := catalog.NewGormRepository(catalogDB)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			zlog.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpStore    service.OTPStore
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			zlog.Warn("redis ping failed", zap.Error(err))
			redisClient = nil
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLHours)*time.Hour,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
		tokenStore,
	)
	tokenVersions := service.NewTokenVersions(userRepo, redisClient)

	authSvc := service.NewAuthService(zlog, userRepo, banRepo)
	otpSvc := service.NewOTPService(zlog, otpStore, otpLimiter, emailSender)
	modSvc := service.NewModerationService(zlog, userRepo, banRepo, tokenVersions)
	aiClient := ai.NewHTTPClient(cfg.AIBaseURL)

	authHandler := apihttp.NewAuthHandler(zlog, authSvc, otpSvc, jwtSvc)
	adminHandler := apihttp.NewAdminHandler(zlog, modSvc)
	productHandler := apihttp.NewProductHandler(zlog, productRepo)
	aiHandler := apihttp.NewAIHandler(zlog, aiClient)

	router := apihttp.NewRouter(zlog, authHandler, adminHandler, productHandler, aiHandler, jwtSvc, tokenVersions)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	zlog.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server error", zap.Error(err))
	}
}
