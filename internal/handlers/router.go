package handlers

import (
	"net/http"

	"altyn/internal/config"
	"altyn/internal/db"
	"altyn/internal/middleware"
	"altyn/internal/store"
	"altyn/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	reconcileDB  store.Selecter
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	wallets      WalletStore
	treasury     TreasuryStore
	transactions TransactionStore
	receipts     ReceiptStore
	dividends    DividendStore
	admin        AdminStore
	audit        AuditStore
	rateStore    RateStore
	ledger       LedgerService
	rates        RateService
	hub          *websocket.Hub
}

func New(reconcileDB store.Selecter, txRunner db.TxRunner, cfg config.Config, users UserStore, wallets WalletStore, treasury TreasuryStore, transactions TransactionStore, receipts ReceiptStore, dividends DividendStore, admin AdminStore, audit AuditStore, rateStore RateStore, ledger LedgerService, rates RateService, hub *websocket.Hub) *Handler {
	return &Handler{
		reconcileDB:  reconcileDB,
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		wallets:      wallets,
		treasury:     treasury,
		transactions: transactions,
		receipts:     receipts,
		dividends:    dividends,
		admin:        admin,
		audit:        audit,
		rateStore:    rateStore,
		ledger:       ledger,
		rates:        rates,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet", h.GetWallet)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet/portfolio", h.GetPortfolio)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet/transactions", h.ListTransactions)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet/holders", h.ListTokenHolders)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/transfers", h.Transfer)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/settlements/pay", h.Pay)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/settlements/receipts/{id}", h.GetReceipt)
	router.Get("/rates", h.GetRates)
	router.Get("/ws/balances", h.WSBalances)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.admin, "CanEmit")).Post("/emit", h.Emit)
		r.With(middleware.RequireAdmin(h.admin, "CanDistribute")).Post("/dividends/distribute", h.DistributeDividends)
		r.With(middleware.RequireAdmin(h.admin, "")).Get("/dividends", h.ListDividendPayouts)
		r.With(middleware.RequireAdmin(h.admin, "")).Get("/treasury", h.TreasuryStats)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Get("/transactions", h.AdminListTransactions)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Get("/reconcile", h.Reconcile)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/rates", h.SetRate)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
