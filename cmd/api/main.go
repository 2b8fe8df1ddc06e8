package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"region-storefront/internal/config"
	"region-storefront/internal/database"
	"region-storefront/internal/docstore"
	"region-storefront/internal/logger"
	"region-storefront/internal/server"
	"region-storefront/internal/service"

	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 30 seconds to finish in-flight requests.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

// openStore connects the configured document store backend. The returned
// health func is nil for backends without a pool to report on.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (docstore.Store, func(context.Context) map[string]string, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(db, log); err != nil {
			db.Close()
			return nil, nil, err
		}
		return docstore.NewPostgresStore(db), func(ctx context.Context) map[string]string {
			return database.Health(ctx, db)
		}, nil

	case config.DriverMongo:
		var store docstore.Store
		err := database.WithRetry(ctx, log, "mongo", func(ctx context.Context) error {
			var err error
			store, err = docstore.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	case config.DriverMemory:
		log.Warn("Using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func main() {
	envFile := flag.String("env-file", ".env", "path to a dotenv file with configuration")
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	cfg := config.Load(*envFile)

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	if cfg.JWT.Secret == "" && !cfg.Server.IsDevelopment() {
		log.Fatal("JWT_SECRET must be set outside development")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, health, err := openStore(startupCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}

	if *migrateOnly {
		if cfg.Store.Driver != config.DriverPostgres {
			log.Info("Store driver has no migrations", zap.String("store", cfg.Store.Driver))
		} else {
			log.Info("Database migrations completed successfully")
		}
		_ = store.Close()
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		// Everything Redis backs degrades gracefully, so keep going.
		log.Warn("Redis is unreachable; cache, rate limiting and logout revocation are degraded",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
	}

	if cfg.Store.CacheTTL > 0 && cfg.Store.Driver != config.DriverMemory {
		store = docstore.NewCachedStore(store, redisClient, cfg.Store.CacheTTL, log)
	}

	var prober service.ImageProber
	if cfg.Admin.VerifyImages {
		prober = service.NewHTTPImageProber(nil)
	}

	srv := server.NewServer(cfg, log, server.Dependencies{
		Store:       store,
		Redis:       redisClient,
		ImageProber: prober,
		Health:      health,
	})
	srv.Warmup(startupCtx)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
