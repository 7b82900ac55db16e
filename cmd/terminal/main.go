package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/stock-pos/internal/adapter/handler"
	"github.com/rl1809/stock-pos/internal/adapter/remote"
	"github.com/rl1809/stock-pos/internal/config"
	"github.com/rl1809/stock-pos/internal/core/service"
	"github.com/rl1809/stock-pos/internal/logging"
	"github.com/rl1809/stock-pos/internal/port"
)

type inventoryClient interface {
	port.InventoryService
	port.IdentityProvider
}

func main() {
	cfg, err := config.LoadTerminalConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup("terminal", cfg.LogLevel, cfg.IsProduction())
	decimal.MarshalJSONWithoutQuotes = true
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var client inventoryClient
	switch cfg.Transport {
	case "grpc":
		conn, err := grpc.NewClient(cfg.InventoryGRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to dial inventory service")
		}
		defer conn.Close()
		client = remote.NewGRPCClient(conn, cfg.APIToken)
		log.Info().Str("addr", cfg.InventoryGRPCAddr).Msg("using gRPC inventory transport")
	default:
		client = remote.NewHTTPClient(cfg.InventoryURL, cfg.APIToken, &http.Client{Timeout: cfg.RequestTimeout})
		log.Info().Str("url", cfg.InventoryURL).Msg("using HTTP inventory transport")
	}

	session := service.NewSession(client, client, cfg.FetchConcurrency)

	activateCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := session.Activate(activateCtx); err != nil {
		// The catalog can be reloaded later through /api/session/refresh.
		log.Error().Err(err).Msg("initial catalog load failed")
	}
	cancel()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewTerminalHandler(session).Routes(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("terminal listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("terminal stopped")
}
