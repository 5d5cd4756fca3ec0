// Command tribe-server runs the tribe benefit HTTP service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/api"
	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/config"
	"tribe-backend/pkg/database"
	"tribe-backend/pkg/events"
	"tribe-backend/pkg/handlers"
	"tribe-backend/pkg/logging"
	"tribe-backend/pkg/middleware"
	"tribe-backend/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tribe-server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GetCached()
	logging.Setup("tribe-server", cfg.Environment, cfg.Debug)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 存储在进程启动时打开，退出时关闭
	openCtx, cancelOpen := context.WithTimeout(ctx, 30*time.Second)
	pool, err := database.Open(openCtx, database.ConfigFrom(cfg))
	cancelOpen()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pool.Close(closeCtx); err != nil {
			slog.Warn("store close failed", "error", err)
		}
	}()
	if err := pool.EnsureSchema(ctx); err != nil {
		return err
	}

	rpc, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	var factory *common.Address
	if cfg.FactoryAddress != "" {
		addr := common.HexToAddress(cfg.FactoryAddress)
		factory = &addr
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	deps := api.Deps{
		Pool:      pool,
		Chain:     handlers.NewChainBackend(rpc, factory),
		Publisher: publisher,
		JWT:       utils.NewJWTService(cfg.JWTSecret),
	}
	if cfg.MetricsEnabled {
		deps.Metrics = middleware.NewObservability(middleware.ObservabilityConfig{
			ServiceName: "tribe-server",
			Enabled:     true,
		})
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", listener.Addr().String(),
			"store", pool.Type(), "kafka", len(cfg.KafkaBrokers) > 0, "owner_auth", cfg.RequireOwnerAuth)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
