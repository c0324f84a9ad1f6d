package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bookingcore/internal/adapter/handler"
	"bookingcore/internal/adapter/storage"
	"bookingcore/internal/core/engine"
	"bookingcore/internal/core/service"
	"bookingcore/internal/port"
	"bookingcore/internal/seed"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultMySQLDSN   = "root:root@tcp(localhost:3306)/booking?parseTime=true"
	defaultSQLitePath = "booking.db"
	defaultRedisAddr  = "localhost:6379"
)

type schemaStore interface {
	port.EntityStore
	InitSchema(ctx context.Context) error
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Entity store
	var store port.EntityStore
	switch driver := envOr("DB_DRIVER", "mysql"); driver {
	case "mysql":
		db, err := sql.Open("mysql", envOr("MYSQL_DSN", defaultMySQLDSN))
		if err != nil {
			logger.Fatal("open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("ping mysql", zap.Error(err))
		}
		defer db.Close()
		store = mustInitSchema(ctx, logger, storage.NewMySQLAdapter(db))
		logger.Info("connected to mysql")
	case "sqlite":
		path := envOr("SQLITE_PATH", defaultSQLitePath)
		db, err := storage.OpenSQLite(path)
		if err != nil {
			logger.Fatal("open sqlite", zap.Error(err))
		}
		defer db.Close()
		store = mustInitSchema(ctx, logger, storage.NewSQLiteAdapter(db))
		logger.Info("opened sqlite store", zap.String("path", path))
	case "memory":
		store = storage.NewMemoryAdapter()
		logger.Info("using in-memory store")
	default:
		logger.Fatal("unknown DB_DRIVER", zap.String("driver", driver))
	}

	// Stock mirror (optional)
	var cache port.CacheRepository
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", defaultRedisAddr),
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, running without stock mirror", zap.Error(err))
		rdb.Close()
	} else {
		cache = storage.NewRedisAdapter(rdb)
		defer rdb.Close()
		logger.Info("connected to redis")
	}

	// Seed initial data
	if dir := os.Getenv("SEED_DIR"); dir != "" {
		if err := seed.New(store, logger).Run(ctx, dir); err != nil {
			logger.Fatal("seed data", zap.Error(err))
		}
	}

	// Mirror current stock into redis
	if cache != nil {
		if err := warmStockMirror(ctx, store, cache); err != nil {
			logger.Warn("stock mirror warm-up failed", zap.Error(err))
		}
	}

	maxBookings := engine.DefaultMaxBookings
	if v := os.Getenv("MAX_BOOKINGS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Fatal("parse MAX_BOOKINGS", zap.Error(err))
		}
		maxBookings = n
	}

	bookingService := service.NewBookingService(store, cache, engine.New(maxBookings), logger)
	httpHandler := handler.NewHTTPHandler(bookingService, cache, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/bookings/book", httpHandler.Book)
	mux.HandleFunc("/api/bookings/cancel", httpHandler.Cancel)

	httpServer := &http.Server{
		Addr:    envOr("HTTP_ADDR", defaultHTTPAddr),
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")
}

func mustInitSchema(ctx context.Context, logger *zap.Logger, s schemaStore) port.EntityStore {
	if err := s.InitSchema(ctx); err != nil {
		logger.Fatal("init schema", zap.Error(err))
	}
	return s
}

func warmStockMirror(ctx context.Context, store port.EntityStore, cache port.CacheRepository) error {
	return store.WithinTx(ctx, func(tx port.EntityTx) error {
		items, err := tx.ListItems(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := cache.SetStock(ctx, it.ID, it.RemainingCount); err != nil {
				return err
			}
		}
		return nil
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
