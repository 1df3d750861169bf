package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cross_bot/client"
	"cross_bot/config"
	sqlite "cross_bot/db"
	"cross_bot/engine"
	"cross_bot/ledger"
	"cross_bot/logger"
	"cross_bot/metrics"
	"cross_bot/precision"
	"cross_bot/server"
)

func main() {
	// Set up logging
	// Define a flag for log level
	logLevel := flag.String("log", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.InitLogger(logLevel, cfg.LogFile)

	// Initialize the journal database
	if err := sqlite.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Create Binance client
	cl, err := client.NewBinanceClient(cfg.BinanceAPIKey, cfg.BinanceAPISecret, cfg.RecvWindowMillis)
	if err != nil {
		log.Fatalf("Failed to create Binance client: %v", err)
	}

	resolver := precision.NewResolver(cl)
	balances := ledger.New(cl)

	// The ledger must hold a real snapshot before any signal can be sized
	if err := balances.Refresh(); err != nil {
		log.Fatalf("Failed to get account balances: %v", err)
	}

	eng := engine.NewRotationEngine(cl, balances, resolver, &sqlite.SQLiteDB, engine.Settings{
		StopLimitPercent: cfg.StopLimitPercent,
		QtyFactor:        cfg.QtyFactor,
		FeeRate:          cfg.FeeRate,
		MaxRetries:       cfg.MaxRetries,
	})

	go metrics.MonitorPerformance("data/metrics.csv")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(eng).Router(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Webhook server failed: %v", err)
		}
	}()
	logger.Infof("Started local server on port %s.", cfg.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	log.Println("Trading bot stopped")
}
