package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/metrics"
	"github.com/reactbank/reactbank/internal/rates"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, base currency.Code) (rates.Table, error) {
	args := m.Called(ctx, base)
	table, _ := args.Get(0).(rates.Table)
	return table, args.Error(1)
}

func eurTable() rates.Table {
	return rates.Table{"eur": decimal.RequireFromString("0.20"), "gbp": decimal.RequireFromString("0.17")}
}

func TestNewStartsAtBase(t *testing.T) {
	s := New(&mockFetcher{})
	snap := s.Snapshot()
	assert.Equal(t, currency.Base, snap.Selected)
	assert.Nil(t, snap.Table)
	assert.Equal(t, BaseSelected, snap.State())
}

func TestSelect_ConvertedThenNoopThenBase(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(eurTable(), nil)

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(fetcher, WithClock(func() time.Time { return fixed }), WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, s.Select(ctx, currency.EUR))
	snap := s.Snapshot()
	assert.Equal(t, ConvertedSelected, snap.State())
	assert.Equal(t, currency.EUR, snap.Selected)
	assert.Equal(t, currency.EUR, snap.LastFetched)
	assert.Equal(t, fixed, snap.FetchedAt)
	assert.Equal(t, eurTable(), snap.Table)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)

	// Selecting the current code is a no-op.
	require.NoError(t, s.Select(ctx, currency.EUR))
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)

	require.NoError(t, s.Select(ctx, currency.MYR))
	snap = s.Snapshot()
	assert.Equal(t, BaseSelected, snap.State())
	assert.Nil(t, snap.Table)
	assert.Empty(t, snap.RateError)

	// Every non-base selection re-fetches.
	require.NoError(t, s.Select(ctx, currency.GBP))
	fetcher.AssertNumberOfCalls(t, "Fetch", 2)
	assert.Equal(t, currency.GBP, s.Snapshot().Selected)

	assert.InDelta(t, 1, testutil.ToFloat64(m.CurrencySelectionsTotal.WithLabelValues("EUR", metrics.ResultNoop)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CurrencySelectionsTotal.WithLabelValues("EUR", metrics.ResultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CurrencySelectionsTotal.WithLabelValues("GBP", metrics.ResultOK)), 0)
}

func TestSelect_BaseWhenAlreadyBaseDoesNothing(t *testing.T) {
	fetcher := &mockFetcher{}
	s := New(fetcher)
	require.NoError(t, s.Select(context.Background(), currency.Base))
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestSelect_FetchFailureKeepsSelection(t *testing.T) {
	fetcher := &mockFetcher{}
	fetchErr := &rates.RateFetchError{Message: rates.FetchErrorMessage, Err: errors.New("dial tcp: refused")}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(nil, fetchErr)

	s := New(fetcher)
	err := s.Select(context.Background(), currency.EUR)
	require.ErrorIs(t, err, rates.ErrRateFetch)

	snap := s.Snapshot()
	assert.Equal(t, FetchFailed, snap.State())
	assert.Equal(t, "Unable to fetch exchange rates. Please check your connection.", snap.RateError)
	assert.Equal(t, currency.MYR, snap.Selected)
	assert.Nil(t, snap.Table)
	assert.False(t, snap.IsFetchingRates)
}

func TestSelect_FailureAfterConversionKeepsOldTable(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(eurTable(), nil).Once()
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(nil, errors.New("boom")).Once()

	s := New(fetcher)
	require.NoError(t, s.Select(context.Background(), currency.EUR))
	require.Error(t, s.Select(context.Background(), currency.GBP))

	snap := s.Snapshot()
	assert.Equal(t, currency.EUR, snap.Selected)
	assert.Equal(t, eurTable(), snap.Table)
	assert.Equal(t, rates.FetchErrorMessage, snap.RateError)

	// A retry is allowed because GBP is not the current selection.
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(eurTable(), nil).Once()
	require.NoError(t, s.Select(context.Background(), currency.GBP))
	assert.Empty(t, s.Snapshot().RateError)
	assert.Equal(t, currency.GBP, s.Snapshot().Selected)
}

func TestSelect_BaseClearsError(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(eurTable(), nil).Once()
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(nil, errors.New("boom")).Once()

	s := New(fetcher)
	ctx := context.Background()
	require.NoError(t, s.Select(ctx, currency.EUR))
	require.Error(t, s.Select(ctx, currency.JPY))
	require.NotEmpty(t, s.Snapshot().RateError)

	require.NoError(t, s.Select(ctx, currency.MYR))
	snap := s.Snapshot()
	assert.Empty(t, snap.RateError)
	assert.Nil(t, snap.Table)
	assert.Equal(t, BaseSelected, snap.State())
}

func TestSelect_UnknownCurrency(t *testing.T) {
	s := New(&mockFetcher{})
	err := s.Select(context.Background(), currency.Code("XYZ"))
	require.ErrorIs(t, err, currency.ErrUnknownCurrency)
}

func TestSelect_CallerCancelledStoresNoMessage(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(fetcher)
	err := s.Select(ctx, currency.EUR)
	require.ErrorIs(t, err, context.Canceled)
	snap := s.Snapshot()
	assert.Empty(t, snap.RateError)
	assert.Equal(t, BaseSelected, snap.State())
}

// gatedFetcher hands every call to the test and blocks until the test replies.
type gatedFetcher struct {
	calls chan *gatedCall
}

type gatedCall struct {
	ctx   context.Context
	reply chan gatedReply
}

type gatedReply struct {
	table rates.Table
	err   error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *gatedCall)}
}

func (g *gatedFetcher) Fetch(ctx context.Context, _ currency.Code) (rates.Table, error) {
	call := &gatedCall{ctx: ctx, reply: make(chan gatedReply, 1)}
	g.calls <- call
	r := <-call.reply
	return r.table, r.err
}

func (g *gatedFetcher) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Select")
		return nil
	}
}

func TestSelect_StaleResponseIsDiscarded(t *testing.T) {
	fetcher := newGatedFetcher()
	s := New(fetcher)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- s.Select(ctx, currency.EUR) }()
	eurCall := fetcher.next(t)

	snap := s.Snapshot()
	assert.Equal(t, Fetching, snap.State())
	assert.Equal(t, currency.EUR, snap.Pending)
	assert.Equal(t, currency.MYR, snap.Selected)

	// EUR is pending, so selecting it again is a no-op.
	require.NoError(t, s.Select(ctx, currency.EUR))

	second := make(chan error, 1)
	go func() { second <- s.Select(ctx, currency.GBP) }()
	gbpCall := fetcher.next(t)

	assert.ErrorIs(t, eurCall.ctx.Err(), context.Canceled)

	gbpTable := rates.Table{"gbp": decimal.RequireFromString("0.17")}
	gbpCall.reply <- gatedReply{table: gbpTable}
	require.NoError(t, waitErr(t, second))

	eurCall.reply <- gatedReply{table: eurTable()}
	require.ErrorIs(t, waitErr(t, first), ErrSuperseded)

	snap = s.Snapshot()
	assert.Equal(t, currency.GBP, snap.Selected)
	assert.Equal(t, gbpTable, snap.Table)
	assert.Equal(t, ConvertedSelected, snap.State())
}

func TestSelect_BaseSupersedesInFlightFetch(t *testing.T) {
	fetcher := newGatedFetcher()
	s := New(fetcher)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Select(ctx, currency.SGD) }()
	call := fetcher.next(t)

	require.NoError(t, s.Select(ctx, currency.MYR))
	assert.Equal(t, BaseSelected, s.Snapshot().State())

	call.reply <- gatedReply{err: context.Canceled}
	require.ErrorIs(t, waitErr(t, done), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, currency.MYR, snap.Selected)
	assert.Nil(t, snap.Table)
	assert.Empty(t, snap.RateError)
}

func TestSelect_CommittedCurrencyAbandonsPendingFetch(t *testing.T) {
	fetcher := newGatedFetcher()
	s := New(fetcher)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- s.Select(ctx, currency.EUR) }()
	fetcher.next(t).reply <- gatedReply{table: eurTable()}
	require.NoError(t, waitErr(t, first))

	pending := make(chan error, 1)
	go func() { pending <- s.Select(ctx, currency.GBP) }()
	gbpCall := fetcher.next(t)
	assert.Equal(t, Fetching, s.Snapshot().State())

	// The fetcher is unbuffered, so a second fetch would block here.
	require.NoError(t, s.Select(ctx, currency.EUR))
	assert.ErrorIs(t, gbpCall.ctx.Err(), context.Canceled)

	snap := s.Snapshot()
	assert.Equal(t, ConvertedSelected, snap.State())
	assert.Equal(t, currency.EUR, snap.Selected)
	assert.Empty(t, snap.Pending)
	assert.Equal(t, eurTable(), snap.Table)

	gbpCall.reply <- gatedReply{err: context.Canceled}
	require.ErrorIs(t, waitErr(t, pending), ErrSuperseded)
	assert.Equal(t, currency.EUR, s.Snapshot().Selected)
}

func TestReset(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, currency.MYR).Return(eurTable(), nil)

	s := New(fetcher)
	require.NoError(t, s.Select(context.Background(), currency.EUR))
	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, currency.Base, snap.Selected)
	assert.Nil(t, snap.Table)
	assert.Empty(t, snap.LastFetched)
	assert.True(t, snap.FetchedAt.IsZero())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "base_selected", BaseSelected.String())
	assert.Equal(t, "fetching", Fetching.String())
	assert.Equal(t, "converted_selected", ConvertedSelected.String())
	assert.Equal(t, "fetch_failed", FetchFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
