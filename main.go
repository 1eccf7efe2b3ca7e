package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/controllers"
	"github.com/Saroj9823Dangol/event-management-sub001/events"
	"github.com/Saroj9823Dangol/event-management-sub001/logger"
	"github.com/Saroj9823Dangol/event-management-sub001/middleware"
	aws_pkg "github.com/Saroj9823Dangol/event-management-sub001/pkg/aws"
	"github.com/Saroj9823Dangol/event-management-sub001/repository"
	"github.com/Saroj9823Dangol/event-management-sub001/routes"
	"github.com/Saroj9823Dangol/event-management-sub001/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "booking-service"

func main() {
	log, err := logger.New(getEnv("APP_ENV", "development"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}
	if err := loadSecrets(context.Background(), cfg); err != nil {
		log.Warn("Secrets Manager override failed, using environment", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Redis ---
	var (
		redisClient *redis.Client
		receipts    services.ReceiptStore
		idem        services.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err = repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Redis connection failed", zap.Error(err))
		}
		repo := repository.NewReceiptRepository(redisClient, cfg.ReceiptTTL)
		receipts = repo
		idem = repo
		log.Info("Connected to Redis")
	} else {
		log.Warn("REDIS_URL not set, order receipts and idempotency keys are disabled")
	}

	// --- AWS setup ---
	var metrics services.MetricsRecorder
	var metricsClient *aws_pkg.MetricsClient
	var publisher services.BookingEventPublisher
	var producer *events.Producer

	if cfg.CloudWatchEnabled || cfg.EventsBackend == "sns" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		if cfg.CloudWatchEnabled {
			metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
			metrics = metricsClient
		}
		if cfg.EventsBackend == "sns" {
			publisher = aws_pkg.NewBookingEventTopic(aws_pkg.NewSNSClient(awsCfg), cfg.BookingSNSTopicARN)
		}
	}
	if cfg.EventsBackend == "kafka" {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		publisher = producer
	}
	log.Info("Booking events backend", zap.String("backend", cfg.EventsBackend))

	// --- Dependency injection ---
	gateway := clients.NewGatewayClient(cfg.APIGatewayURL, cfg.RequestTimeout, clients.ForwardingCredentials{ServiceToken: cfg.APIToken})
	catalogService := services.NewCatalogService(gateway, log)
	promoService := services.NewPromoService(gateway, metrics, log)
	orderService := services.NewOrderService(gateway, idem, publisher, metrics, cfg.ReceiptTTL, log)
	sessionManager := services.NewSessionManager(catalogService, promoService, orderService, receipts, metrics, cfg.SessionTTL, log)
	bookingController := controllers.NewBookingController(sessionManager, cfg.BookingURLBase, log)

	promoLimiter := middleware.PerMinute(cfg.PromoRatePerMinute)
	go promoLimiter.Run(ctx)
	go sessionManager.Run(ctx)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	if metricsClient != nil {
		r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	}
	r.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterBookingRoutes(r, bookingController, promoLimiter)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName, "sessions": sessionManager.Len()})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Booking Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if producer != nil {
		producer.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}

	log.Info("Booking Service stopped gracefully")
}
