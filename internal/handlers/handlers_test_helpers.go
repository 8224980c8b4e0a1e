package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"altyn/internal/auth"
	"altyn/internal/config"
	"altyn/internal/middleware"
	"altyn/internal/models"
	"altyn/internal/services"
	"altyn/internal/store"
	"altyn/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubReconcileDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubReconcileDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn    func(ctx context.Context, email string) (map[string]any, error)
	getByUsernameFn func(ctx context.Context, username string) (map[string]any, error)
	getByIDFn       func(ctx context.Context, userID string) (map[string]any, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (map[string]any, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (map[string]any, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (map[string]any, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubWalletStore struct {
	getFn          func(ctx context.Context, userID string) (models.Wallet, error)
	ensureFn       func(ctx context.Context, tx store.Execer, userID string) error
	tokenHoldersFn func(ctx context.Context, limit int) ([]store.TokenHolder, error)
	sumCoinFn      func(ctx context.Context) (int64, error)
}

func (s stubWalletStore) Get(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getFn == nil {
		return models.Wallet{UserID: userID}, nil
	}
	return s.getFn(ctx, userID)
}

func (s stubWalletStore) Ensure(ctx context.Context, tx store.Execer, userID string) error {
	if s.ensureFn == nil {
		return nil
	}
	return s.ensureFn(ctx, tx, userID)
}

func (s stubWalletStore) TokenHolders(ctx context.Context, limit int) ([]store.TokenHolder, error) {
	if s.tokenHoldersFn == nil {
		return nil, nil
	}
	return s.tokenHoldersFn(ctx, limit)
}

func (s stubWalletStore) SumCoinMinor(ctx context.Context) (int64, error) {
	if s.sumCoinFn == nil {
		return 0, nil
	}
	return s.sumCoinFn(ctx)
}

type stubTreasuryStore struct {
	getFn func(ctx context.Context) (models.TreasuryStats, error)
}

func (s stubTreasuryStore) Get(ctx context.Context) (models.TreasuryStats, error) {
	if s.getFn == nil {
		return models.TreasuryStats{}, nil
	}
	return s.getFn(ctx)
}

type stubTransactionStore struct {
	listByUserFn func(ctx context.Context, userID, txType string, limit, offset int) ([]map[string]any, error)
	listAllFn    func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]map[string]any, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, txType, limit, offset)
}

func (s stubTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubReceiptStore struct {
	getByIDFn func(ctx context.Context, receiptID string) (models.Receipt, error)
}

func (s stubReceiptStore) GetByID(ctx context.Context, receiptID string) (models.Receipt, error) {
	if s.getByIDFn == nil {
		return models.Receipt{}, nil
	}
	return s.getByIDFn(ctx, receiptID)
}

type stubDividendStore struct {
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubDividendStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubRateStore struct {
	setRateFn func(ctx context.Context, tx store.Tx, currency, rate, actorID string) (string, error)
}

func (s stubRateStore) SetRate(ctx context.Context, tx store.Tx, currency, rate, actorID string) (string, error) {
	if s.setRateFn == nil {
		return "rate-1", nil
	}
	return s.setRateFn(ctx, tx, currency, rate, actorID)
}

type stubLedgerService struct {
	transferFn      func(ctx context.Context, req services.TransferRequest) (models.Transaction, error)
	payFn           func(ctx context.Context, req services.PayRequest) (services.Settlement, error)
	emitFn          func(ctx context.Context, req services.EmissionRequest) (models.Transaction, error)
	distributeFn    func(ctx context.Context, adminUserID string) (models.DividendPayout, error)
	treasuryStatsFn func(ctx context.Context, adminUserID string) (services.TreasuryOverview, error)
}

func (s stubLedgerService) Transfer(ctx context.Context, req services.TransferRequest) (models.Transaction, error) {
	if s.transferFn == nil {
		return models.Transaction{}, nil
	}
	return s.transferFn(ctx, req)
}

func (s stubLedgerService) Pay(ctx context.Context, req services.PayRequest) (services.Settlement, error) {
	if s.payFn == nil {
		return services.Settlement{}, nil
	}
	return s.payFn(ctx, req)
}

func (s stubLedgerService) Emit(ctx context.Context, req services.EmissionRequest) (models.Transaction, error) {
	if s.emitFn == nil {
		return models.Transaction{}, nil
	}
	return s.emitFn(ctx, req)
}

func (s stubLedgerService) Distribute(ctx context.Context, adminUserID string) (models.DividendPayout, error) {
	if s.distributeFn == nil {
		return models.DividendPayout{}, nil
	}
	return s.distributeFn(ctx, adminUserID)
}

func (s stubLedgerService) TreasuryStats(ctx context.Context, adminUserID string) (services.TreasuryOverview, error) {
	if s.treasuryStatsFn == nil {
		return services.TreasuryOverview{}, nil
	}
	return s.treasuryStatsFn(ctx, adminUserID)
}

type stubRateService struct {
	ratesFn      func() map[string]string
	convertFn    func(amountMinor int64, currency string) (int64, error)
	currenciesFn func() []string
	refreshFn    func(ctx context.Context) error
}

func (s stubRateService) Rates() map[string]string {
	if s.ratesFn == nil {
		return map[string]string{"USD": "1.000000"}
	}
	return s.ratesFn()
}

func (s stubRateService) Convert(amountMinor int64, currency string) (int64, error) {
	if s.convertFn == nil {
		return amountMinor, nil
	}
	return s.convertFn(amountMinor, currency)
}

func (s stubRateService) Currencies() []string {
	if s.currenciesFn == nil {
		return []string{"USD"}
	}
	return s.currenciesFn()
}

func (s stubRateService) Refresh(ctx context.Context) error {
	if s.refreshFn == nil {
		return nil
	}
	return s.refreshFn(ctx)
}

func newTestHandler(reconcileDB store.Selecter, txRunner fakeTxRunner, users stubUserStore, wallets stubWalletStore, treasury stubTreasuryStore, transactions stubTransactionStore, receipts stubReceiptStore, dividends stubDividendStore, admin stubAdminStore, audit stubAuditStore, rateStore stubRateStore, ledger stubLedgerService, rates stubRateService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(reconcileDB, txRunner, cfg, users, wallets, treasury, transactions, receipts, dividends, admin, audit, rateStore, ledger, rates, websocket.NewHub())
}

func authedRequest(t *testing.T, method, target string, body io.Reader, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serveAuthed(t *testing.T, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
