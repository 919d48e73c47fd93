// Package app wires the reactbank components together from config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/auth"
	"github.com/reactbank/reactbank/internal/chart"
	"github.com/reactbank/reactbank/internal/config"
	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/metrics"
	"github.com/reactbank/reactbank/internal/model"
	"github.com/reactbank/reactbank/internal/money"
	"github.com/reactbank/reactbank/internal/rates"
	"github.com/reactbank/reactbank/internal/receipt"
	"github.com/reactbank/reactbank/internal/selection"
	"github.com/reactbank/reactbank/internal/transactions"
)

// Options carries the process-level collaborators that config cannot.
type Options struct {
	Root       string // directory that relative config paths resolve against
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	HTTPClient *http.Client
	Prompt     auth.Prompt
	Now        func() time.Time
}

// App holds one session's worth of state.
type App struct {
	Config   *config.Config
	Root     string
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Rates        *rates.Source
	Store        *selection.Store
	Transactions *transactions.Service
	Converter    money.Converter
	Formatter    money.Formatter
	Receipts     *receipt.Service
	Builder      *receipt.Builder
	Gate         *auth.Gate

	now func() time.Time
}

// New builds an App from a validated config.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := metrics.New(reg)

	src := rates.NewSource(rates.Config{
		PrimaryURL:  cfg.Rates.PrimaryURL,
		FallbackURL: cfg.Rates.FallbackURL,
		Timeout:     cfg.Rates.Timeout,
		Client:      opts.HTTPClient,
		Logger:      logger,
		Metrics:     m,
	})

	source := cfg.Transactions.Source
	if source != transactions.SourceMock {
		source = config.Resolve(opts.Root, source)
	}
	txs, err := transactions.Load(
		source,
		transactions.WithRefreshDelay(cfg.Transactions.RefreshDelay),
		transactions.WithClock(now),
		transactions.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	formatter, err := money.NewFormatter(cfg.Display.Locale)
	if err != nil {
		return nil, fmt.Errorf("parsing display locale: %w", err)
	}
	converter := money.Converter{Logger: logger, Metrics: m}

	builder, err := receipt.NewBuilder(converter, formatter)
	if err != nil {
		return nil, err
	}

	store := selection.New(src,
		selection.WithLogger(logger),
		selection.WithMetrics(m),
		selection.WithClock(now))

	gate := auth.NewGate(auth.NewPasscodeAuthenticator(cfg.Auth.PasscodeHash, opts.Prompt), logger)
	gate.OnLogout(store.Reset)

	return &App{
		Config:       cfg,
		Root:         opts.Root,
		Logger:       logger,
		Registry:     reg,
		Metrics:      m,
		Rates:        src,
		Store:        store,
		Transactions: txs,
		Converter:    converter,
		Formatter:    formatter,
		Receipts: receipt.NewService(receipt.Config{
			Dir:     config.Resolve(opts.Root, cfg.Receipts.Dir),
			LogRoot: opts.Root,
			Format:  cfg.Receipts.Format,
			Logger:  logger,
			Now:     now,
		}),
		Builder: builder,
		Gate:    gate,
		now:     now,
	}, nil
}

// SelectInitial applies the configured start-up currency.
func (a *App) SelectInitial(ctx context.Context) error {
	return a.Store.Select(ctx, a.Config.InitialCurrency())
}

// Convert converts a base amount into the selected currency.
func (a *App) Convert(amount decimal.Decimal) (decimal.Decimal, currency.Code) {
	snap := a.Store.Snapshot()
	return a.Converter.Amount(amount, snap.Table, snap.Selected), snap.Selected
}

// TransactionView is one list row ready to display.
type TransactionView struct {
	RefID         string          `json:"ref_id"`
	Date          string          `json:"date"`
	TransferDate  time.Time       `json:"transfer_date"`
	RecipientName string          `json:"recipient_name"`
	TransferName  string          `json:"transfer_name"`
	Direction     model.Direction `json:"direction"`
	Amount        money.Display   `json:"amount"`
	Converted     *money.Display  `json:"converted,omitempty"`
}

// List renders every transaction. Amount is always in the base currency;
// Converted is set when another currency is selected.
func (a *App) List() []TransactionView {
	snap := a.Store.Snapshot()
	return a.list(snap.Selected, snap.Table)
}

func (a *App) list(code currency.Code, table rates.Table) []TransactionView {
	txs := a.Transactions.All()

	out := make([]TransactionView, len(txs))
	for i, tx := range txs {
		v := TransactionView{
			RefID:         tx.RefID,
			Date:          money.FormatDate(tx.TransferDate),
			TransferDate:  tx.TransferDate,
			RecipientName: tx.RecipientName,
			TransferName:  tx.TransferName,
			Direction:     tx.Direction(),
			Amount:        a.Formatter.Currency(tx.Amount, currency.Base),
		}
		if !code.IsBase() {
			d := a.Formatter.Currency(a.Converter.Amount(tx.Amount, table, code), code)
			v.Converted = &d
		}
		out[i] = v
	}
	return out
}

// Summary is the balance header.
type Summary struct {
	Currency        currency.Code `json:"currency"`
	Total           money.Display `json:"total"`
	Count           int           `json:"count"`
	LastUpdated     time.Time     `json:"last_updated"`
	IsFetchingRates bool          `json:"is_fetching_rates"`
	RateError       string        `json:"rate_error,omitempty"`
}

// Summary converts the base total into the selected currency.
func (a *App) Summary() Summary {
	snap := a.Store.Snapshot()
	sum := a.summary(snap.Selected, snap.Table)
	sum.IsFetchingRates = snap.IsFetchingRates
	sum.RateError = snap.RateError
	return sum
}

func (a *App) summary(code currency.Code, table rates.Table) Summary {
	total := a.Converter.Amount(a.Transactions.Total(), table, code)
	return Summary{
		Currency:    code,
		Total:       a.Formatter.Currency(total, code),
		Count:       len(a.Transactions.All()),
		LastUpdated: a.Transactions.LastUpdated(),
	}
}

// ViewIn renders the summary and list in code without changing the
// selection. The selected currency reuses its stored table; any other
// non-base code fetches rates for this call only.
func (a *App) ViewIn(ctx context.Context, code currency.Code) (Summary, []TransactionView, error) {
	if _, ok := currency.Lookup(code); !ok {
		return Summary{}, nil, fmt.Errorf("%w: %q", currency.ErrUnknownCurrency, code)
	}

	snap := a.Store.Snapshot()
	var table rates.Table
	switch {
	case code.IsBase():
	case code == snap.Selected:
		table = snap.Table
	default:
		var err error
		if table, err = a.Rates.Fetch(ctx, currency.Base); err != nil {
			return Summary{}, nil, err
		}
	}
	return a.summary(code, table), a.list(code, table), nil
}

// Receipt builds the receipt for refID in the selected currency.
func (a *App) Receipt(refID string) (receipt.Receipt, error) {
	tx, err := a.Transactions.Find(refID)
	if err != nil {
		return receipt.Receipt{}, err
	}
	snap := a.Store.Snapshot()
	return a.Builder.Build(tx, snap.Selected, snap.Table, a.now()), nil
}

// BalanceSeries is the running balance in the selected currency.
func (a *App) BalanceSeries() ([]chart.Point, currency.Code) {
	snap := a.Store.Snapshot()
	conv := func(d decimal.Decimal) decimal.Decimal {
		return a.Converter.Amount(d, snap.Table, snap.Selected)
	}
	return chart.RunningBalance(a.Transactions.All(), conv), snap.Selected
}
