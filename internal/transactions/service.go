// Package transactions provides the transaction list shown to the user.
package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/model"
)

// SourceMock selects the built-in demo list instead of a CSV file.
const SourceMock = "mock"

// DefaultRefreshDelay is how long Refresh pretends to load.
const DefaultRefreshDelay = time.Second

// ErrNotFound is returned by Find for an unknown reference.
var ErrNotFound = errors.New("transaction not found")

// Option configures a Service.
type Option func(*Service)

// WithRefreshDelay overrides DefaultRefreshDelay.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Service) { s.refreshDelay = d }
}

// WithClock replaces time.Now for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used by Refresh.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service holds the transaction list in memory.
type Service struct {
	refreshDelay time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu          sync.RWMutex
	txs         []model.Transaction
	lastUpdated time.Time
}

// NewService creates a Service over txs.
func NewService(txs []model.Transaction, opts ...Option) *Service {
	s := &Service{
		refreshDelay: DefaultRefreshDelay,
		now:          time.Now,
		logger:       slog.Default(),
		txs:          slices.Clone(txs),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastUpdated = s.now()
	return s
}

// Load returns a Service over the demo list when source is empty or
// SourceMock, and over the validated CSV file at source otherwise.
func Load(source string, opts ...Option) (*Service, error) {
	if source == "" || source == SourceMock {
		return NewService(Defaults(), opts...), nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}

	if verrs := Validate(txs); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("validating %s: %w", filepath.Base(source), errors.Join(errs...))
	}
	return NewService(txs, opts...), nil
}

// All returns a copy of the list in display order.
func (s *Service) All() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

// Find returns the transaction with the given reference.
func (s *Service) Find(refID string) (model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.RefID == refID {
			return tx, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, refID)
}

// Total sums every amount in the base currency.
func (s *Service) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, tx := range s.txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// LastUpdated is when the list was created or last refreshed.
func (s *Service) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Refresh waits for the refresh delay, then reverses the list and stamps
// LastUpdated. A cancelled ctx leaves the list untouched.
func (s *Service) Refresh(ctx context.Context) error {
	if s.refreshDelay > 0 {
		timer := time.NewTimer(s.refreshDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slices.Reverse(s.txs)
	s.lastUpdated = s.now()
	s.logger.Info("transactions refreshed", slog.Int("count", len(s.txs)))
	return nil
}

// Save writes the list to path as CSV, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating transactions dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	defer f.Close()

	if err := WriteTransactions(f, s.All()); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}
