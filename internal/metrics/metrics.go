package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Label values for RateFetchTotal and CurrencySelectionsTotal.
const (
	EndpointPrimary  = "primary"
	EndpointFallback = "fallback"

	ResultOK         = "ok"
	ResultError      = "error"
	ResultSuperseded = "superseded"
	ResultNoop       = "noop"
)

// Metrics holds the collectors for the currency core. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Rate endpoint attempts by endpoint and result.
	RateFetchTotal    *prometheus.CounterVec
	RateFetchDuration *prometheus.HistogramVec

	// Conversions that fell back to the base amount because the table had no rate.
	MissingRateTotal *prometheus.CounterVec

	// Currency selections by target and outcome (ok, error, superseded, noop).
	CurrencySelectionsTotal *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RateFetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactbank_rate_fetch_total",
				Help: "Exchange rate endpoint requests",
			},
			[]string{"endpoint", "result"},
		),
		RateFetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reactbank_rate_fetch_duration_seconds",
				Help:    "Exchange rate endpoint latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		MissingRateTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactbank_missing_rate_total",
				Help: "Conversions shown in base currency because the rate table had no entry",
			},
			[]string{"currency"},
		),
		CurrencySelectionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactbank_currency_selections_total",
				Help: "Currency selection requests",
			},
			[]string{"currency", "result"},
		),
	}
}

// ObserveFetch records one endpoint attempt.
func (m *Metrics) ObserveFetch(endpoint string, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.RateFetchTotal.WithLabelValues(endpoint, result).Inc()
	m.RateFetchDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// MissingRate records a conversion without a rate for currency.
func (m *Metrics) MissingRate(currency string) {
	if m == nil {
		return
	}
	m.MissingRateTotal.WithLabelValues(currency).Inc()
}

// Selection records a currency selection outcome.
func (m *Metrics) Selection(currency, result string) {
	if m == nil {
		return
	}
	m.CurrencySelectionsTotal.WithLabelValues(currency, result).Inc()
}

// WriteText writes every metric family gathered from g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
