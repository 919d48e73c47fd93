package rates

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/metrics"
)

const (
	DefaultPrimaryURL  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest"
	DefaultFallbackURL = "https://latest.currency-api.pages.dev"
	DefaultTimeout     = 15 * time.Second

	maxBodyBytes = 4 << 20
)

// Fetcher produces a fresh rate table for a base currency.
type Fetcher interface {
	Fetch(ctx context.Context, base currency.Code) (Table, error)
}

// Config configures a Source. Zero fields take the defaults above.
type Config struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
	Client      *http.Client
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Source fetches rate tables from a primary endpoint with a single fallback.
type Source struct {
	primaryURL  string
	fallbackURL string
	client      *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewSource creates a Source.
func NewSource(cfg Config) *Source {
	s := &Source{
		primaryURL:  DefaultPrimaryURL,
		fallbackURL: DefaultFallbackURL,
		client:      cfg.Client,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if cfg.PrimaryURL != "" {
		s.primaryURL = cfg.PrimaryURL
	}
	if cfg.FallbackURL != "" {
		s.fallbackURL = cfg.FallbackURL
	}
	if s.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.client = &http.Client{Timeout: timeout}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Fetch downloads the rate table for base. Every call hits the network; the
// fallback endpoint is tried once when the primary fails. All failures,
// including a malformed document, are reported as *RateFetchError. A cancelled
// ctx returns ctx.Err() instead.
func (s *Source) Fetch(ctx context.Context, base currency.Code) (Table, error) {
	key := base.Key()

	body, err := s.get(ctx, metrics.EndpointPrimary, endpointURL(s.primaryURL, key))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Primary rate endpoint failed, trying fallback",
			slog.String("base", key),
			slog.Any("error", err))

		body, err = s.get(ctx, metrics.EndpointFallback, endpointURL(s.fallbackURL, key))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Error("Fallback rate endpoint failed",
				slog.String("base", key),
				slog.Any("error", err))
			return nil, newFetchError(err)
		}
	}

	table, err := parseTable(body, key)
	if err != nil {
		s.logger.Error("Malformed rate document", slog.String("base", key), slog.Any("error", err))
		return nil, newFetchError(err)
	}

	s.logger.Debug("Rate table fetched", slog.String("base", key), slog.Int("rates", len(table)))
	return table, nil
}

func (s *Source) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	start := time.Now()
	body, err := s.doGet(ctx, url)
	s.metrics.ObserveFetch(endpoint, err, time.Since(start))
	return body, err
}

func (s *Source) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("requesting %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// endpointURL builds <root>/v1/currencies/<base>.json.
func endpointURL(root, base string) string {
	return strings.TrimRight(root, "/") + "/v1/currencies/" + base + ".json"
}
