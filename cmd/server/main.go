package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/rl1809/stock-pos/internal/adapter/handler"
	"github.com/rl1809/stock-pos/internal/adapter/rpc"
	"github.com/rl1809/stock-pos/internal/adapter/storage"
	"github.com/rl1809/stock-pos/internal/config"
	"github.com/rl1809/stock-pos/internal/core/ledger"
	"github.com/rl1809/stock-pos/internal/logging"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup("inventory", cfg.LogLevel, cfg.IsProduction())
	decimal.MarshalJSONWithoutQuotes = true
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQLConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	log.Info().Msg("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("connected to redis")

	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	if cfg.AutoMigrate {
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate schema")
		}
		log.Info().Msg("schema migrated")
	}

	ledgerService := ledger.NewService(mysqlAdapter, redisAdapter, cfg.QueueSize)

	// Sync stock to Redis
	n, err := ledgerService.WarmCache(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to warm stock cache")
	}
	log.Info().Int("items", n).Msg("stock cache warmed")

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ledger.WorkerLoop(id, ledgerService.GetSaleQueue(), mysqlAdapter, redisAdapter, cfg.PersistTimeout)
		}(i)
	}
	log.Info().Int("workers", cfg.WorkerCount).Msg("started workers")

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.AuthInterceptor(cfg.JWTSecret)))
	rpc.RegisterInventoryServer(grpcServer, handler.NewGRPCHandler(ledgerService))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(ledgerService, cfg.JWTSecret).Routes(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server did not drain, closing connections")
		httpServer.Close()
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	grpcStopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(grpcStopped)
	}()
	select {
	case <-grpcStopped:
		log.Info().Msg("gRPC server stopped")
	case <-shutdownCtx.Done():
		log.Error().Msg("gRPC server did not drain, stopping")
		grpcServer.Stop()
	}

	// Close sale queue and wait for workers. Handlers still running after a
	// forced stop get ErrClosed instead of a send on a closed queue.
	ledgerService.Close()
	wg.Wait()
	log.Info().Msg("workers stopped")

	rdb.Close()
	db.Close()
	log.Info().Msg("connections closed")
}
