// Package selection holds the user's display currency and the rate table
// that backs it.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/metrics"
	"github.com/reactbank/reactbank/internal/rates"
)

// ErrSuperseded is returned by Select when a later selection replaced it
// before its fetch finished. The store is left as the later selection set it.
var ErrSuperseded = errors.New("currency selection superseded")

// State is derived from a Snapshot.
type State int

const (
	BaseSelected State = iota
	Fetching
	ConvertedSelected
	FetchFailed
)

func (s State) String() string {
	switch s {
	case BaseSelected:
		return "base_selected"
	case Fetching:
		return "fetching"
	case ConvertedSelected:
		return "converted_selected"
	case FetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the store. Table is shared and must
// not be modified.
type Snapshot struct {
	Selected        currency.Code `json:"selected"`
	Pending         currency.Code `json:"pending,omitempty"`
	Table           rates.Table   `json:"-"`
	IsFetchingRates bool          `json:"is_fetching_rates"`
	RateError       string        `json:"rate_error,omitempty"`
	LastFetched     currency.Code `json:"last_fetched,omitempty"`
	FetchedAt       time.Time     `json:"fetched_at,omitzero"`
}

// State reports which state the snapshot is in.
func (s Snapshot) State() State {
	switch {
	case s.IsFetchingRates:
		return Fetching
	case s.RateError != "":
		return FetchFailed
	case s.Selected.IsBase():
		return BaseSelected
	default:
		return ConvertedSelected
	}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for selection events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records selection outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces time.Now for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use. Each accepted selection bumps a
// generation counter and only the newest generation may commit a fetch result.
type Store struct {
	fetcher rates.Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.Mutex
	gen         uint64
	cancel      context.CancelFunc
	selected    currency.Code
	pending     currency.Code
	fetching    bool
	table       rates.Table
	rateErr     string
	lastFetched currency.Code
	fetchedAt   time.Time
}

// New creates a Store with the base currency selected.
func New(fetcher rates.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:  fetcher,
		logger:   slog.Default(),
		now:      time.Now,
		selected: currency.Base,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select makes code the display currency. Selecting the current code (the
// pending one while a fetch is in flight) does nothing. Selecting the
// committed code while another fetch is in flight abandons that fetch
// without fetching again. Selecting the base
// currency clears the table. Any other code fetches a fresh table; on failure
// the error message is stored and the previous selection kept.
func (s *Store) Select(ctx context.Context, code currency.Code) error {
	if _, ok := currency.Lookup(code); !ok {
		return fmt.Errorf("%w: %q", currency.ErrUnknownCurrency, code)
	}

	s.mu.Lock()
	current := s.selected
	if s.fetching {
		current = s.pending
	}
	if code == current {
		s.mu.Unlock()
		s.metrics.Selection(code.String(), metrics.ResultNoop)
		return nil
	}

	s.gen++
	gen := s.gen
	s.stopLocked()

	if code == s.selected {
		// Back to the committed selection: the pending fetch is dropped and
		// the stored table still applies.
		s.rateErr = ""
		s.mu.Unlock()
		s.metrics.Selection(code.String(), metrics.ResultOK)
		s.logger.Debug("pending rate fetch abandoned", slog.String("currency", code.String()))
		return nil
	}

	if code.IsBase() {
		s.selected = code
		s.table = nil
		s.rateErr = ""
		s.mu.Unlock()
		s.metrics.Selection(code.String(), metrics.ResultOK)
		s.logger.Debug("currency selected", slog.String("currency", code.String()))
		return nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.fetching = true
	s.pending = code
	s.rateErr = ""
	s.mu.Unlock()

	table, err := s.fetcher.Fetch(fetchCtx, currency.Base)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.metrics.Selection(code.String(), metrics.ResultSuperseded)
		s.logger.Debug("discarding superseded rate fetch",
			slog.String("currency", code.String()),
			slog.Uint64("generation", gen))
		return ErrSuperseded
	}

	s.cancel = nil
	s.fetching = false
	s.pending = ""

	if err != nil {
		s.metrics.Selection(code.String(), metrics.ResultError)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.rateErr = errorMessage(err)
		s.logger.Error("currency selection failed",
			slog.String("currency", code.String()),
			slog.Any("error", err))
		return err
	}

	s.table = table
	s.selected = code
	s.lastFetched = code
	s.fetchedAt = s.now()
	s.metrics.Selection(code.String(), metrics.ResultOK)
	s.logger.Info("currency selected",
		slog.String("currency", code.String()),
		slog.Int("rates", len(table)))
	return nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Selected:        s.selected,
		Pending:         s.pending,
		Table:           s.table,
		IsFetchingRates: s.fetching,
		RateError:       s.rateErr,
		LastFetched:     s.lastFetched,
		FetchedAt:       s.fetchedAt,
	}
}

// Reset returns the store to the base currency and abandons any fetch in
// flight.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopLocked()
	s.selected = currency.Base
	s.table = nil
	s.rateErr = ""
	s.lastFetched = ""
	s.fetchedAt = time.Time{}
}

func (s *Store) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.fetching = false
	s.pending = ""
}

func errorMessage(err error) string {
	var fetchErr *rates.RateFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message
	}
	return rates.FetchErrorMessage
}
