package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/ratelimit"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const rateKey = "marketdata"

// ClientOption configures Client.
type ClientOption func(*Client)

// Client fetches daily candles from a Yahoo-chart-compatible REST API.
// It implements domain/service.CandleSource.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	rpm     float64
	burst   float64
	log     *applogger.Logger
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		limiter: ratelimit.New(),
		rpm:     60,
		burst:   10,
		log:     applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAPIKey sets the provider API key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *xhttp.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-minute budget and burst size.
func WithRateLimit(rpm, burst int) ClientOption {
	return func(c *Client) {
		if rpm > 0 {
			c.rpm = float64(rpm)
		}
		if burst > 0 {
			c.burst = float64(burst)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// chartResponse mirrors the provider's chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily returns up to `days` calendar days of daily bars, oldest
// first. An empty primary window falls back to short ranges, which covers
// freshly listed instruments.
func (c *Client) FetchDaily(ctx context.Context, inst models.Instrument, days int) ([]models.Bar, error) {
	ticker, err := ProviderTicker(inst)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 365
	}

	bars, err := c.fetchRange(ctx, ticker, fmt.Sprintf("%dd", days))
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		for _, fallback := range []string{"5d", "1d"} {
			bars, err = c.fetchRange(ctx, ticker, fallback)
			if err != nil {
				return nil, err
			}
			if len(bars) > 0 {
				break
			}
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("provider returned no data for ticker %s", ticker)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (c *Client) fetchRange(ctx context.Context, ticker, rng string) ([]models.Bar, error) {
	if err := c.limiter.Wait(ctx, rateKey, c.burst, c.rpm/60); err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["X-Api-Key"] = c.apiKey
	}

	var payload chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker),
		Headers: headers,
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {"1d"},
			"events":   {"div,split"},
		},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("fetch %s range=%s: %w", ticker, rng, err)
	}

	if e := payload.Chart.Error; e != nil {
		return nil, fmt.Errorf("provider error for %s: %s (%s)", ticker, e.Description, e.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// provider marks halted sessions with nulls; skip them
		if !hasIndex(quote.Close, i) || quote.Close[i] == nil {
			continue
		}
		bar := models.Bar{
			Date:  util.TruncateToDay(time.Unix(ts, 0).UTC()),
			Close: *quote.Close[i],
		}
		if hasIndex(quote.Open, i) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if hasIndex(quote.High, i) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if hasIndex(quote.Low, i) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if hasIndex(quote.Volume, i) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	c.log.Debug("fetched candles",
		applogger.String("ticker", ticker),
		applogger.String("range", rng),
		applogger.Int("bars", len(bars)),
	)
	return dedupeByDate(bars), nil
}

func hasIndex[T any](xs []T, i int) bool {
	return i < len(xs)
}

// dedupeByDate keeps the last bar per calendar date.
func dedupeByDate(bars []models.Bar) []models.Bar {
	if len(bars) < 2 {
		return bars
	}
	byDate := make(map[string]models.Bar, len(bars))
	order := make([]string, 0, len(bars))
	for _, b := range bars {
		key := util.FormatDate(b.Date)
		if _, ok := byDate[key]; !ok {
			order = append(order, key)
		}
		byDate[key] = b
	}
	out := make([]models.Bar, 0, len(order))
	for _, key := range order {
		out = append(out, byDate[key])
	}
	return out
}
