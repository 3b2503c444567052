package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/events"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/handler"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/seed"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/auth"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/config"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/logger"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/tls"
)

type repositories struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	users    repository.UserRepository
}

func main() {
	gin.SetMode(ginMode(os.Getenv(gin.EnvGinMode)))

	// Config 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Logger 초기화
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open storage", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled {
		publisher = events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, zlog)
		zlog.Info("Kafka publisher enabled",
			zap.String("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	// Service, Handler 초기화
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	productService := service.NewProductService(repos.products, publisher, service.CatalogOptions{
		DefaultLimit: cfg.DefaultPageLimit,
		MaxLimit:     cfg.MaxPageLimit,
	}, zlog)
	cartService := service.NewCartService(repos.carts, repos.products, publisher, cfg.CartMaxRetries, zlog)
	authService := service.NewAuthService(repos.users, tokens, zlog)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			zlog.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
	}
	if cfg.SeedProducts {
		if _, err := seed.Products(ctx, productService, zlog); err != nil {
			zlog.Fatal("Failed to seed catalog", zap.Error(err))
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		ProductService: productService,
		CartService:    cartService,
		AuthService:    authService,
		Tokens:         tokens,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	tlsSource, err := tls.Load(ctx, cfg.TLS, zlog)
	if err != nil {
		zlog.Fatal("Failed to load TLS config", zap.Error(err))
	}
	if tlsSource != nil {
		defer tlsSource.Close()
		srv.TLSConfig = tlsSource.ServerConfig()
		go tlsSource.Watch(ctx, 30*time.Second)
	}

	go func() {
		zlog.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.Bool("local_mode", cfg.LocalMode),
			zap.Bool("tls", tlsSource != nil))

		var err error
		if tlsSource != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()

	zlog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exited")
}

// openRepositories picks in-memory storage in local mode and DynamoDB otherwise.
func openRepositories(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*repositories, error) {
	if cfg.LocalMode {
		zlog.Info("Running in local mode with in-memory storage")
		products := repository.NewMemoryProductRepository()
		return &repositories{
			products: products,
			carts:    repository.NewMemoryCartRepository(products),
			users:    repository.NewMemoryUserRepository(),
		}, nil
	}

	// DynamoDB 클라이언트 초기화
	client, err := repository.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CreateTables {
		if err := repository.EnsureTables(ctx, client, cfg, zlog); err != nil {
			return nil, err
		}
	}

	return &repositories{
		products: repository.NewDynamoProductRepository(client, cfg.ProductTableName),
		carts:    repository.NewDynamoCartRepository(client, cfg.CartTableName, cfg.ProductTableName),
		users:    repository.NewDynamoUserRepository(client, cfg.UserTableName),
	}, nil
}

// ginMode defaults to release unless GIN_MODE asks otherwise.
func ginMode(env string) string {
	if env == "" {
		return gin.ReleaseMode
	}
	return env
}
