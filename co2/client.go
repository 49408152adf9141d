package co2

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// DefaultURL is the NOAA Global Monitoring Laboratory monthly mean CO2
// record measured at Mauna Loa Observatory.
const DefaultURL = "https://gml.noaa.gov/webdata/ccgg/trends/co2/co2_mm_mlo.txt"

// Client downloads the monthly mean CO2 record.
type Client struct {
	url    string
	httpc  *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the data file URL. Used to point at mirrors or test
// servers.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger attaches a logger for fetch progress.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the NOAA record with a 30 second request
// timeout by default.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		httpc:  &http.Client{Timeout: 30 * time.Second},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchMonthly downloads and parses the monthly mean record.
func (c *Client) FetchMonthly(ctx context.Context) (*timeseries.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building co2 request: %w", err)
	}

	c.logger.Debug().Str("url", c.url).Msg("fetching co2 record")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching co2 record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching co2 record: status %d, body: %s", resp.StatusCode, string(body))
	}

	series, err := ParseMonthly(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("observations", series.Len()).
		Time("start", series.Start()).
		Time("end", series.End()).
		Msg("loaded co2 record")
	return series, nil
}
