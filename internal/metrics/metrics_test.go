package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFetch(EndpointPrimary, errors.New("boom"), time.Millisecond)
	m.ObserveFetch(EndpointFallback, nil, time.Millisecond)
	m.ObserveFetch(EndpointFallback, nil, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.RateFetchTotal.WithLabelValues(EndpointPrimary, ResultError)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.RateFetchTotal.WithLabelValues(EndpointFallback, ResultOK)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.RateFetchTotal.WithLabelValues(EndpointPrimary, ResultOK)), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(EndpointPrimary, nil, time.Second)
		m.MissingRate("eur")
		m.Selection("EUR", ResultOK)
	})
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.MissingRate("JPY")
	m.Selection("EUR", ResultOK)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, `reactbank_missing_rate_total{currency="JPY"} 1`)
	assert.Contains(t, out, `reactbank_currency_selections_total{currency="EUR",result="ok"} 1`)
}
