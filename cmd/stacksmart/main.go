package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stacksmart/deal-stacking-service/internal/api"
	"github.com/stacksmart/deal-stacking-service/internal/api/middleware"
	"github.com/stacksmart/deal-stacking-service/internal/stacking"
	"github.com/stacksmart/deal-stacking-service/pkg/db"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := db.LoadPostgresConfig()
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()

	engine := stacking.NewEngine(engineConfigFromEnv(), logger)

	handler := api.NewRouter(conn, engine, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Mount("/", handler)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting stacksmart service", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

func engineConfigFromEnv() stacking.Config {
	cfg := stacking.DefaultConfig()
	if v, err := strconv.Atoi(os.Getenv("STACK_MAX_SIZE")); err == nil && v > 0 {
		cfg.MaxStackSize = v
	}
	if v, err := strconv.Atoi(os.Getenv("STACK_MAX_ELIGIBLE")); err == nil && v > 0 {
		cfg.MaxEligibleDeals = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("STACK_MIN_CONFIDENCE"), 64); err == nil && v > 0 {
		cfg.MinConfidence = v
	}
	return cfg
}
