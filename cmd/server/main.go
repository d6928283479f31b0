package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gomoku-backend/internal/config"
	"gomoku-backend/internal/hub"
	"gomoku-backend/internal/logger"
	"gomoku-backend/internal/server"
	"gomoku-backend/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := initConfig()
	logger.Init(conf.LogLevel)

	if conf.Telemetry.Enabled {
		shutdown, err := telemetry.InitOtel(ctx, conf.Telemetry.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("error shutting down telemetry", "error", err)
			}
		}()
	}

	h := hub.NewHub(hub.Options{
		TurnTimeout: conf.TurnTimeout,
		MatchTTL:    conf.MatchTTL,
	})
	go h.Run(ctx)

	srv := server.NewServer(h, conf.StaticDir)

	httpServer := &http.Server{
		Addr:    ":" + conf.HTTPPort,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "port", conf.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	slog.Info("server exiting")
}

func initConfig() *config.Config {
	baseDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return config.MustLoad(filepath.Join(baseDir, "config.yml"))
}
