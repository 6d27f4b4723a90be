package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/providers"
	"store-bot.backend/internal/infrastructure/jobs"
	"store-bot.backend/internal/infrastructure/providers/cardgateway"
	"store-bot.backend/internal/infrastructure/providers/cryptopay"
	"store-bot.backend/internal/infrastructure/providers/tokenpay"
	"store-bot.backend/internal/infrastructure/repositories"
	"store-bot.backend/internal/infrastructure/telegram"
	"store-bot.backend/internal/interfaces/http/handlers"
	"store-bot.backend/internal/usecases"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/metrics"
	"store-bot.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Repositories
	intentRepo := repositories.NewIntentRepository(db)
	productRepo := repositories.NewProductRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Outbound messaging + provider adapters
	bot := telegram.NewClient(cfg.Telegram)
	adapters := []providers.Adapter{
		cardgateway.NewClient(cfg.CardGateway),
		tokenpay.NewAdapter(bot, cfg.TokenPay),
		cryptopay.NewClient(cfg.CryptoPay),
	}

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	sessionStore := redis.NewSessionStore(cfg.Telegram.SessionTTL)

	// Usecases
	notifier := usecases.NewNotifier(bot, cfg.Telegram.OperatorID)
	checkoutUsecase := usecases.NewCheckoutUsecase(adapters, intentRepo, productRepo, notifier, paymentMetrics)
	catalogUsecase := usecases.NewCatalogUsecase(productRepo, userRepo, sessionStore)
	adminUsecase := usecases.NewAdminUsecase(productRepo, sessionStore, cfg.Telegram.AdminIDs)

	webhookHandler := handlers.NewWebhookHandler(catalogUsecase, checkoutUsecase, adminUsecase, bot)

	// Background reconcile sweep
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweepJob := jobs.NewReconcileSweepJob(checkoutUsecase, paymentMetrics, cfg.Reconcile.Interval)
	go sweepJob.Start(sweepCtx)
	defer sweepJob.Stop()

	r := gin.New()
	registerRoutes(r, routeDeps{
		webhookHandler: webhookHandler,
		webhookSecret:  cfg.Telegram.WebhookSecret,
		metricsReg:     registry,
	})

	logger.Info(context.Background(), "Starting bot server", zap.String("port", cfg.Server.Port))
	return runServer(r, cfg.Server.Port)
}
