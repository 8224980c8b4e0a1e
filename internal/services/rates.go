package services

import (
	"context"
	"sync"
	"time"

	"altyn/internal/money"
	"altyn/internal/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RateService serves display-currency conversion rates for COIN. USD is fixed
// at 1.0 by the peg; other rates come from the rates table and are refreshed
// out of the settlement critical path.
type RateService struct {
	rateStore RateLister

	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

type RateLister interface {
	ListActive(ctx context.Context) ([]store.RateRow, error)
}

func NewRateService(rateStore RateLister) *RateService {
	return &RateService{
		rateStore: rateStore,
		rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
		},
	}
}

func (s *RateService) Refresh(ctx context.Context) error {
	rows, err := s.rateStore.ListActive(ctx)
	if err != nil {
		return err
	}
	rates := map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
	}
	for _, row := range rows {
		if row.Currency == "USD" {
			continue
		}
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil || rate.LessThanOrEqual(decimal.Zero) {
			logrus.WithField("currency", row.Currency).Warn("skipping malformed exchange rate")
			continue
		}
		rates[row.Currency] = rate
	}
	s.mu.Lock()
	s.rates = rates
	s.mu.Unlock()
	return nil
}

func (s *RateService) Rates() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.rates))
	for currency, rate := range s.rates {
		out[currency] = rate.StringFixed(6)
	}
	return out
}

// Convert values a COIN amount in the given display currency, half-up to the
// minor unit.
func (s *RateService) Convert(amountMinor int64, currency string) (int64, error) {
	s.mu.RLock()
	rate, ok := s.rates[currency]
	s.mu.RUnlock()
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return money.ConvertMinor(amountMinor, rate), nil
}

func (s *RateService) Currencies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rates))
	for currency := range s.rates {
		out = append(out, currency)
	}
	return out
}

// StartRefresher reloads rates on an interval. The returned scheduler should
// be shut down with the server.
func (s *RateService) StartRefresher(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Refresh(ctx); err != nil {
				logrus.WithError(err).Warn("exchange rate refresh failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}
