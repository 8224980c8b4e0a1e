package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altyn/internal/config"
	"altyn/internal/db"
	"altyn/internal/handlers"
	"altyn/internal/services"
	"altyn/internal/store"
	"altyn/internal/websocket"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if cfg.AppEnv == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	treasury := store.NewTreasuryStore(database)
	transactions := store.NewTransactionStore(database)
	receipts := store.NewReceiptStore(database)
	dividends := store.NewDividendStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	rateStore := store.NewRateStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	ledger := services.NewLedgerService(txRunner, wallets, treasury, transactions, receipts, dividends, users, admin, audit, hub)
	rates := services.NewRateService(rateStore)
	if err := rates.Refresh(context.Background()); err != nil {
		logrus.WithError(err).Warn("initial rate load failed, serving USD only")
	}
	scheduler, err := rates.StartRefresher(cfg.RateRefreshEach)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start rate refresher")
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logrus.WithError(err).Warn("rate refresher shutdown error")
		}
	}()

	handler := handlers.New(database, txRunner, cfg, users, wallets, treasury, transactions, receipts, dividends, admin, audit, rateStore, ledger, rates, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("altyn ledger API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("shutdown error")
	}
}
